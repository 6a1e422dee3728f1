package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-admin/internal/presence"
	"github.com/vovakirdan/wirechat-admin/internal/proto"
)

// WSHandler upgrades HTTP connections into presence push channels.
// Both chat clients and dashboard admins connect here; the role is
// resolved from the userId query parameter at accept time.
type WSHandler struct {
	registry presence.Registry
	log      *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(registry presence.Registry, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{registry: registry, log: logger}
}

// wsChannel adapts one websocket connection to presence.Channel. The
// buffer holds a single snapshot; a newer one replaces an unconsumed
// one, since only the latest presence set matters to a client.
type wsChannel struct {
	events  chan []string
	faulted atomic.Bool
}

func newWSChannel() *wsChannel {
	return &wsChannel{events: make(chan []string, 1)}
}

// Deliver implements presence.Channel.
func (c *wsChannel) Deliver(snapshot []string) bool {
	if c.faulted.Load() {
		return false
	}
	for {
		select {
		case c.events <- snapshot:
			return true
		default:
			// evict the stale pending snapshot
			select {
			case <-c.events:
			default:
			}
		}
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	identity, err := presence.ParseIdentity(r.URL.Query().Get("userId"))
	if err != nil {
		// Connections without a resolvable identity are rejected
		// instead of silently left unregistered.
		h.log.Warn().Str("remote", r.RemoteAddr).Msg("ws connection without identity rejected")
		stdhttp.Error(w, "userId query parameter is required", stdhttp.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	connID := uuid.NewString()
	ch := newWSChannel()

	// Registration broadcasts the post-register snapshot, which this
	// connection receives as its initial activeUsers event.
	h.registry.Register(identity, ch)
	defer h.registry.Unregister(identity, ch)

	h.log.Debug().Str("conn_id", connID).Str("identity", identity.String()).Msg("ws connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, connID)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, ch, connID)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", connID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, connID string) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		switch inbound.Type {
		case proto.InboundTypePing:
			if err := wsjson.Write(ctx, conn, proto.Outbound{Type: proto.OutboundTypePong}); err != nil {
				return err
			}
		default:
			h.log.Debug().Str("conn_id", connID).Str("type", inbound.Type).Msg("unknown ws inbound")
			if err := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: &proto.Error{Code: "invalid_message", Msg: "unknown message type"},
			}); err != nil {
				return err
			}
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, ch *wsChannel, connID string) error {
	for {
		select {
		case snapshot := <-ch.events:
			if err := wsjson.Write(ctx, conn, proto.ActiveUsers(snapshot)); err != nil {
				// A failed send is an implicit disconnect: mark the
				// handle faulted so the hub retires it.
				ch.faulted.Store(true)
				h.log.Warn().Err(err).Str("conn_id", connID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
