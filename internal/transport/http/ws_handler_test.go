package http

import (
	"context"
	stdhttp "net/http"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// wsOutbound mirrors proto.Outbound with a concrete payload type so
// tests can decode activeUsers events.
type wsOutbound struct {
	Type  string   `json:"type"`
	Event string   `json:"event"`
	Data  []string `json:"data"`
}

func (e *testEnv) wsURL(userID string) string {
	url := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/ws"
	if userID != "" {
		url += "?userId=" + userID
	}
	return url
}

func (e *testEnv) dial(t *testing.T, userID string) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, e.wsURL(userID), nil)
	if err != nil {
		t.Fatalf("dial as %q: %v", userID, err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	return conn
}

// readActiveUsers reads frames until an activeUsers event arrives.
func readActiveUsers(t *testing.T, conn *websocket.Conn) []string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		var out wsOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read ws frame: %v", err)
		}
		if out.Type == "event" && out.Event == "activeUsers" {
			return out.Data
		}
	}
}

// waitForSnapshot reads activeUsers events until one matches want.
func waitForSnapshot(t *testing.T, conn *websocket.Conn, want []string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	var last []string
	for time.Now().Before(deadline) {
		last = readActiveUsers(t, conn)
		if sameSet(last, want) {
			return
		}
	}
	t.Fatalf("never saw snapshot %v, last was %v", want, last)
}

func sameSet(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	g := append([]string(nil), got...)
	w := append([]string(nil), want...)
	sort.Strings(g)
	sort.Strings(w)
	for i := range g {
		if g[i] != w[i] {
			return false
		}
	}
	return true
}

func waitForCounter(t *testing.T, env *testEnv, want int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if env.counter.Value() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("counter stuck at %d, want %d", env.counter.Value(), want)
}

func TestWSRejectsMissingIdentity(t *testing.T) {
	env := newTestEnv(t, "")

	for _, path := range []string{"/ws", "/ws?userId=", "/ws?userId=admin_", "/ws?userId=%20%20"} {
		resp, err := env.ts.Client().Get(env.ts.URL + path)
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != stdhttp.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", path, resp.StatusCode)
		}
	}
}

func TestWSInitialSnapshot(t *testing.T) {
	env := newTestEnv(t, "")

	conn := env.dial(t, "u1")
	if got := readActiveUsers(t, conn); !sameSet(got, []string{"u1"}) {
		t.Fatalf("initial snapshot = %v, want [u1]", got)
	}
}

func TestWSPresenceBroadcast(t *testing.T) {
	env := newTestEnv(t, "")

	user := env.dial(t, "u1")
	waitForSnapshot(t, user, []string{"u1"})

	admin := env.dial(t, "admin_a1")
	waitForSnapshot(t, admin, []string{"u1", "admin_a1"})
	waitForSnapshot(t, user, []string{"u1", "admin_a1"})

	// Dashboard admins are not chat users.
	waitForCounter(t, env, 1)

	admin.Close(websocket.StatusNormalClosure, "")
	waitForSnapshot(t, user, []string{"u1"})
	waitForCounter(t, env, 1)
}

func TestWSDisconnectUpdatesCounter(t *testing.T) {
	env := newTestEnv(t, "")

	u1 := env.dial(t, "u1")
	u2 := env.dial(t, "u2")
	waitForSnapshot(t, u1, []string{"u1", "u2"})
	waitForCounter(t, env, 2)

	u2.Close(websocket.StatusNormalClosure, "")
	waitForSnapshot(t, u1, []string{"u1"})
	waitForCounter(t, env, 1)
}

func TestWSPingPong(t *testing.T) {
	env := newTestEnv(t, "")

	conn := env.dial(t, "u1")
	readActiveUsers(t, conn) // drain the initial snapshot

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := wsjson.Write(ctx, conn, map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	var out wsOutbound
	if err := wsjson.Read(ctx, conn, &out); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if out.Type != "pong" {
		t.Fatalf("response type = %q, want pong", out.Type)
	}
}
