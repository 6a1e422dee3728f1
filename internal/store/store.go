package store

import (
	"context"
	"time"
)

// User represents a chat application user.
type User struct {
	ID                int64
	Username          string
	FullName          string
	ProfilePictureURL string
	PasswordHash      string
	CreatedAt         time.Time
}

// Admin represents a dashboard administrator account.
type Admin struct {
	ID           int64
	Username     string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}

// Conversation represents a chat conversation between users.
type Conversation struct {
	ID        int64
	Title     string
	CreatedAt time.Time
}

// Message represents a persisted chat message.
type Message struct {
	ID             int64
	ConversationID int64
	SenderID       int64
	Body           string
	CreatedAt      time.Time
}

// ActivityLog records an administrative action for the audit trail.
type ActivityLog struct {
	ID         int64
	AdminName  string
	Action     string
	TargetName string
	CreatedAt  time.Time
}

// SignupCount is the number of users created on a single calendar day.
// Day is formatted as "2006-01-02" in UTC.
type SignupCount struct {
	Day   string
	Count int
}

// SenderCount is one leaderboard row: a user joined against their
// message count. Senders without a user row are excluded by the join.
type SenderCount struct {
	UserID            int64
	FullName          string
	ProfilePictureURL string
	MessageCount      int64
}

// UserStore handles chat user persistence.
type UserStore interface {
	// CreateUser creates a new chat user.
	CreateUser(ctx context.Context, username, fullName, pictureURL, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// CountUsers returns the total number of users.
	CountUsers(ctx context.Context) (int64, error)

	// SignupsByDay returns per-day signup counts for users created at or
	// after since, ascending by day. Days without signups are absent.
	SignupsByDay(ctx context.Context, since time.Time) ([]SignupCount, error)
}

// AdminStore handles administrator account persistence.
type AdminStore interface {
	// CreateAdmin creates a new administrator account.
	CreateAdmin(ctx context.Context, username, fullName, passwordHash string) (*Admin, error)

	// GetAdminByUsername retrieves an administrator by username.
	GetAdminByUsername(ctx context.Context, username string) (*Admin, error)
}

// ConversationStore handles conversation persistence.
type ConversationStore interface {
	// CreateConversation creates a new conversation.
	CreateConversation(ctx context.Context, title string) (*Conversation, error)

	// CountConversations returns the total number of conversations.
	CountConversations(ctx context.Context) (int64, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and fills in its ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// CountMessages returns the total number of messages.
	CountMessages(ctx context.Context) (int64, error)

	// TopSenders returns at most limit users ordered by descending
	// message count. Messages whose sender has no user row do not
	// produce an entry.
	TopSenders(ctx context.Context, limit int) ([]SenderCount, error)
}

// ActivityLogStore handles the administrative audit trail.
type ActivityLogStore interface {
	// AppendLog records an administrative action.
	AppendLog(ctx context.Context, entry *ActivityLog) error

	// ListLogs returns log entries newest first. A non-empty search
	// filters by case-insensitive substring match over admin name,
	// action and target name.
	ListLogs(ctx context.Context, search string) ([]*ActivityLog, error)

	// RecentLogs returns the limit newest log entries.
	RecentLogs(ctx context.Context, limit int) ([]*ActivityLog, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	AdminStore
	ConversationStore
	MessageStore
	ActivityLogStore

	// Close closes the underlying database connection.
	Close() error
}
