package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/vovakirdan/wirechat-admin/internal/store"
)

func newTestStore(t *testing.T, seed string) *SQLiteStore {
	t.Helper()

	s, err := NewWithSetup(":memory:", func(db *sql.DB) error {
		if seed == "" {
			return nil
		}
		_, err := db.Exec(seed)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestCounts(t *testing.T) {
	s := newTestStore(t, `
		INSERT INTO users (username, full_name, profile_picture_url, password_hash)
		VALUES ('u1', 'User One', '', 'h'), ('u2', 'User Two', '', 'h');
		INSERT INTO conversations (title) VALUES ('general');
		INSERT INTO messages (conversation_id, sender_id, body)
		VALUES (1, 1, 'hi'), (1, 2, 'hello'), (1, 1, 'again');
	`)

	ctx := context.Background()

	users, err := s.CountUsers(ctx)
	if err != nil || users != 2 {
		t.Fatalf("CountUsers = %d, %v; want 2", users, err)
	}
	conversations, err := s.CountConversations(ctx)
	if err != nil || conversations != 1 {
		t.Fatalf("CountConversations = %d, %v; want 1", conversations, err)
	}
	messages, err := s.CountMessages(ctx)
	if err != nil || messages != 3 {
		t.Fatalf("CountMessages = %d, %v; want 3", messages, err)
	}
}

func TestSignupsByDay(t *testing.T) {
	s := newTestStore(t, `
		INSERT INTO users (username, full_name, profile_picture_url, password_hash, created_at) VALUES
		('a', '', '', 'h', '2031-01-02 09:00:00'),
		('b', '', '', 'h', '2031-01-02 18:30:00'),
		('c', '', '', 'h', '2031-01-05 11:00:00'),
		('old', '', '', 'h', '2030-12-20 11:00:00');
	`)

	since := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	counts, err := s.SignupsByDay(context.Background(), since)
	if err != nil {
		t.Fatalf("SignupsByDay failed: %v", err)
	}

	want := []store.SignupCount{
		{Day: "2031-01-02", Count: 2},
		{Day: "2031-01-05", Count: 1},
	}
	if len(counts) != len(want) {
		t.Fatalf("expected %d buckets, got %d: %+v", len(want), len(counts), counts)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("bucket %d: got %+v, want %+v", i, counts[i], want[i])
		}
	}
}

func TestTopSenders(t *testing.T) {
	seed := `
		INSERT INTO users (username, full_name, profile_picture_url, password_hash) VALUES
		('u1', 'User One', 'https://cdn/u1.png', 'h'),
		('u2', 'User Two', 'https://cdn/u2.png', 'h'),
		('quiet', 'Quiet User', '', 'h');
		INSERT INTO conversations (title) VALUES ('general');
	`
	s := newTestStore(t, seed)
	ctx := context.Background()

	// u1 sends 10, u2 sends 3, sender 99 has no user row.
	for i := 0; i < 10; i++ {
		if err := s.SaveMessage(ctx, &store.Message{ConversationID: 1, SenderID: 1, Body: "m"}); err != nil {
			t.Fatalf("save message: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := s.SaveMessage(ctx, &store.Message{ConversationID: 1, SenderID: 2, Body: "m"}); err != nil {
			t.Fatalf("save message: %v", err)
		}
	}
	for i := 0; i < 7; i++ {
		if err := s.SaveMessage(ctx, &store.Message{ConversationID: 1, SenderID: 99, Body: "orphan"}); err != nil {
			t.Fatalf("save message: %v", err)
		}
	}

	senders, err := s.TopSenders(ctx, 5)
	if err != nil {
		t.Fatalf("TopSenders failed: %v", err)
	}

	// Orphaned sender 99 is dropped by the join; quiet user has no messages.
	if len(senders) != 2 {
		t.Fatalf("expected 2 leaderboard rows, got %d: %+v", len(senders), senders)
	}
	if senders[0].UserID != 1 || senders[0].MessageCount != 10 || senders[0].FullName != "User One" {
		t.Fatalf("unexpected first row: %+v", senders[0])
	}
	if senders[1].UserID != 2 || senders[1].MessageCount != 3 {
		t.Fatalf("unexpected second row: %+v", senders[1])
	}
	if senders[0].ProfilePictureURL != "https://cdn/u1.png" {
		t.Fatalf("expected profile enrichment, got %+v", senders[0])
	}
}

func TestTopSendersLimit(t *testing.T) {
	seed := `
		INSERT INTO users (username, full_name, profile_picture_url, password_hash) VALUES
		('u1', '', '', 'h'), ('u2', '', '', 'h'), ('u3', '', '', 'h');
		INSERT INTO conversations (title) VALUES ('general');
		INSERT INTO messages (conversation_id, sender_id, body) VALUES
		(1, 1, 'a'), (1, 1, 'b'), (1, 2, 'c'), (1, 3, 'd');
	`
	s := newTestStore(t, seed)

	senders, err := s.TopSenders(context.Background(), 2)
	if err != nil {
		t.Fatalf("TopSenders failed: %v", err)
	}
	if len(senders) != 2 {
		t.Fatalf("expected limit to cap rows at 2, got %d", len(senders))
	}
	if senders[0].UserID != 1 || senders[0].MessageCount != 2 {
		t.Fatalf("unexpected first row: %+v", senders[0])
	}
}

func TestActivityLogSearchAndRecent(t *testing.T) {
	s := newTestStore(t, "")
	ctx := context.Background()

	entries := []store.ActivityLog{
		{AdminName: "root", Action: "Updated user", TargetName: "alice"},
		{AdminName: "root", Action: "Deleted conversation", TargetName: "general"},
		{AdminName: "moderator", Action: "Banned user", TargetName: "bob"},
	}
	for i := range entries {
		if err := s.AppendLog(ctx, &entries[i]); err != nil {
			t.Fatalf("append log: %v", err)
		}
	}

	// Newest first; same-second inserts fall back to id order.
	all, err := s.ListLogs(ctx, "")
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].TargetName != "bob" || all[2].TargetName != "alice" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	// Case-insensitive substring across all three fields.
	tests := []struct {
		search string
		want   int
	}{
		{"UPDATED", 1},
		{"user", 2},   // matches two actions
		{"MODER", 1},  // admin name
		{"alice", 1},  // target name
		{"nothing", 0},
	}
	for _, tt := range tests {
		got, err := s.ListLogs(ctx, tt.search)
		if err != nil {
			t.Fatalf("ListLogs(%q) failed: %v", tt.search, err)
		}
		if len(got) != tt.want {
			t.Errorf("ListLogs(%q) = %d entries, want %d", tt.search, len(got), tt.want)
		}
	}

	recent, err := s.RecentLogs(ctx, 2)
	if err != nil {
		t.Fatalf("RecentLogs failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent entries, got %d", len(recent))
	}
	if recent[0].TargetName != "bob" || recent[1].TargetName != "general" {
		t.Fatalf("unexpected recent order: %+v", recent)
	}
}

func TestAdminRoundTrip(t *testing.T) {
	s := newTestStore(t, "")
	ctx := context.Background()

	created, err := s.CreateAdmin(ctx, "root", "Root Admin", "hash")
	if err != nil {
		t.Fatalf("CreateAdmin failed: %v", err)
	}
	if created.ID == 0 || created.Username != "root" {
		t.Fatalf("unexpected admin: %+v", created)
	}

	fetched, err := s.GetAdminByUsername(ctx, "root")
	if err != nil {
		t.Fatalf("GetAdminByUsername failed: %v", err)
	}
	if fetched.ID != created.ID || fetched.FullName != "Root Admin" {
		t.Fatalf("unexpected admin: %+v", fetched)
	}

	if _, err := s.GetAdminByUsername(ctx, "ghost"); err == nil {
		t.Fatal("expected error for unknown admin")
	}
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t, "")
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "alice", "Alice A", "https://cdn/alice.png", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byID, err := s.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Username != "alice" || byID.ProfilePictureURL != "https://cdn/alice.png" {
		t.Fatalf("unexpected user: %+v", byID)
	}

	byName, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if byName.ID != created.ID {
		t.Fatalf("unexpected user: %+v", byName)
	}
}
