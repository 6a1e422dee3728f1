package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/wirechat-admin/internal/store"
)

// sqliteTimeLayout matches the format SQLite uses for CURRENT_TIMESTAMP,
// so bound time values compare correctly against stored ones.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema or seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new chat user.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, fullName, pictureURL, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (username, full_name, profile_picture_url, password_hash)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, username, fullName, pictureURL, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, username, full_name, profile_picture_url, password_hash, created_at
		FROM users
		WHERE id = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.FullName,
		&user.ProfilePictureURL,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `
		SELECT id, username, full_name, profile_picture_url, password_hash, created_at
		FROM users
		WHERE username = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.FullName,
		&user.ProfilePictureURL,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// CountUsers returns the total number of users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	return s.countAll(ctx, "users")
}

// SignupsByDay returns per-day signup counts since the given time, ascending by day.
func (s *SQLiteStore) SignupsByDay(ctx context.Context, since time.Time) ([]store.SignupCount, error) {
	query := `
		SELECT date(created_at) AS day, COUNT(*) AS cnt
		FROM users
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := s.db.QueryContext(ctx, query, since.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("query signups: %w", err)
	}
	defer rows.Close()

	var counts []store.SignupCount
	for rows.Next() {
		var sc store.SignupCount
		if err := rows.Scan(&sc.Day, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan signup row: %w", err)
		}
		counts = append(counts, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signup rows: %w", err)
	}

	return counts, nil
}

// ==== AdminStore implementation ====

// CreateAdmin creates a new administrator account.
func (s *SQLiteStore) CreateAdmin(ctx context.Context, username, fullName, passwordHash string) (*store.Admin, error) {
	query := `
		INSERT INTO admins (username, full_name, password_hash)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, username, fullName, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert admin: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	var admin store.Admin
	err = s.db.QueryRowContext(ctx, `
		SELECT id, username, full_name, password_hash, created_at
		FROM admins
		WHERE id = ?
	`, id).Scan(&admin.ID, &admin.Username, &admin.FullName, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query admin: %w", err)
	}

	return &admin, nil
}

// GetAdminByUsername retrieves an administrator by username.
func (s *SQLiteStore) GetAdminByUsername(ctx context.Context, username string) (*store.Admin, error) {
	query := `
		SELECT id, username, full_name, password_hash, created_at
		FROM admins
		WHERE username = ?
	`
	var admin store.Admin
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&admin.ID,
		&admin.Username,
		&admin.FullName,
		&admin.PasswordHash,
		&admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("query admin: %w", err)
	}

	return &admin, nil
}

// ==== ConversationStore implementation ====

// CreateConversation creates a new conversation.
func (s *SQLiteStore) CreateConversation(ctx context.Context, title string) (*store.Conversation, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO conversations (title) VALUES (?)`, title)
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	var conv store.Conversation
	err = s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at FROM conversations WHERE id = ?
	`, id).Scan(&conv.ID, &conv.Title, &conv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}

	return &conv, nil
}

// CountConversations returns the total number of conversations.
func (s *SQLiteStore) CountConversations(ctx context.Context) (int64, error) {
	return s.countAll(ctx, "conversations")
}

// ==== MessageStore implementation ====

// SaveMessage persists a message and fills in its ID.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (conversation_id, sender_id, body)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.ConversationID, msg.SenderID, msg.Body)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	msg.ID = id

	return nil
}

// CountMessages returns the total number of messages.
func (s *SQLiteStore) CountMessages(ctx context.Context) (int64, error) {
	return s.countAll(ctx, "messages")
}

// TopSenders returns at most limit users ordered by descending message count.
// The inner join drops messages whose sender has no user row.
func (s *SQLiteStore) TopSenders(ctx context.Context, limit int) ([]store.SenderCount, error) {
	query := `
		SELECT u.id, u.full_name, u.profile_picture_url, COUNT(m.id) AS message_count
		FROM messages m
		INNER JOIN users u ON u.id = m.sender_id
		GROUP BY m.sender_id
		ORDER BY message_count DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query top senders: %w", err)
	}
	defer rows.Close()

	var senders []store.SenderCount
	for rows.Next() {
		var sc store.SenderCount
		if err := rows.Scan(&sc.UserID, &sc.FullName, &sc.ProfilePictureURL, &sc.MessageCount); err != nil {
			return nil, fmt.Errorf("scan sender row: %w", err)
		}
		senders = append(senders, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sender rows: %w", err)
	}

	return senders, nil
}

// ==== ActivityLogStore implementation ====

// AppendLog records an administrative action.
func (s *SQLiteStore) AppendLog(ctx context.Context, entry *store.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (admin_name, action, target_name)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, entry.AdminName, entry.Action, entry.TargetName)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	entry.ID = id

	return nil
}

// ListLogs returns log entries newest first, optionally filtered by a
// case-insensitive substring over admin name, action and target name.
func (s *SQLiteStore) ListLogs(ctx context.Context, search string) ([]*store.ActivityLog, error) {
	query := `
		SELECT id, admin_name, action, target_name, created_at
		FROM activity_logs
	`
	args := []any{}
	if search != "" {
		// SQLite LIKE is case-insensitive for ASCII by default.
		query += `
		WHERE admin_name LIKE '%' || ? || '%'
		   OR action LIKE '%' || ? || '%'
		   OR target_name LIKE '%' || ? || '%'
		`
		args = append(args, search, search, search)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return s.queryLogs(ctx, query, args...)
}

// RecentLogs returns the limit newest log entries.
func (s *SQLiteStore) RecentLogs(ctx context.Context, limit int) ([]*store.ActivityLog, error) {
	query := `
		SELECT id, admin_name, action, target_name, created_at
		FROM activity_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	return s.queryLogs(ctx, query, limit)
}

func (s *SQLiteStore) queryLogs(ctx context.Context, query string, args ...any) ([]*store.ActivityLog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*store.ActivityLog, 0)
	for rows.Next() {
		var entry store.ActivityLog
		if err := rows.Scan(&entry.ID, &entry.AdminName, &entry.Action, &entry.TargetName, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity log row: %w", err)
		}
		logs = append(logs, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity log rows: %w", err)
	}

	return logs, nil
}

func (s *SQLiteStore) countAll(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
