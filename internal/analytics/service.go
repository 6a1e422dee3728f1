package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-admin/internal/presence"
	"github.com/vovakirdan/wirechat-admin/internal/store"
)

// ErrUnavailable wraps storage failures: aggregation queries are
// all-or-nothing and callers translate this into a service-unavailable
// response without leaking storage detail.
var ErrUnavailable = errors.New("analytics unavailable")

// Storage is the read-side slice of the store the service depends on.
type Storage interface {
	CountUsers(ctx context.Context) (int64, error)
	CountConversations(ctx context.Context) (int64, error)
	CountMessages(ctx context.Context) (int64, error)
	SignupsByDay(ctx context.Context, since time.Time) ([]store.SignupCount, error)
	TopSenders(ctx context.Context, limit int) ([]store.SenderCount, error)
}

// Summary holds the dashboard's headline counts.
type Summary struct {
	TotalUsers         int64
	TotalConversations int64
	TotalMessages      int64
	OnlineUserCount    int
}

// DayCount is one bucket of the signup time series.
type DayCount struct {
	Day   time.Time
	Label string // short weekday name, e.g. "Mon"
	Count int
}

// Service issues read-only summary queries against persisted storage
// and the live presence registry. It holds no state of its own; every
// result is recomputed per call.
type Service struct {
	storage  Storage
	registry presence.Registry
	timeout  time.Duration
	log      *zerolog.Logger

	now func() time.Time
}

// New constructs the analytics service. queryTimeout bounds every
// storage-backed query; zero disables the bound.
func New(storage Storage, registry presence.Registry, queryTimeout time.Duration, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		storage:  storage,
		registry: registry,
		timeout:  queryTimeout,
		log:      logger,
		now:      time.Now,
	}
}

// SummaryCounts returns the headline totals. The online count is the
// number of distinct identities in the registry, admins included; the
// role-filtered figure is the presence counter's job, not this query's.
func (s *Service) SummaryCounts(ctx context.Context) (Summary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	users, err := s.storage.CountUsers(ctx)
	if err != nil {
		return Summary{}, s.unavailable("count users", err)
	}
	conversations, err := s.storage.CountConversations(ctx)
	if err != nil {
		return Summary{}, s.unavailable("count conversations", err)
	}
	messages, err := s.storage.CountMessages(ctx)
	if err != nil {
		return Summary{}, s.unavailable("count messages", err)
	}

	return Summary{
		TotalUsers:         users,
		TotalConversations: conversations,
		TotalMessages:      messages,
		OnlineUserCount:    s.registry.Size(),
	}, nil
}

// NewUsersByDay returns signup counts for the last windowDays calendar
// days inclusive of today, oldest first. The series is dense: every day
// appears, zero-filled when nothing was created. Days are bucketed in UTC.
func (s *Service) NewUsersByDay(ctx context.Context, windowDays int) ([]DayCount, error) {
	if windowDays <= 0 {
		windowDays = 7
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	today := startOfDay(s.now().UTC())
	since := today.AddDate(0, 0, -(windowDays - 1))

	counts, err := s.storage.SignupsByDay(ctx, since)
	if err != nil {
		return nil, s.unavailable("signups by day", err)
	}

	byDay := make(map[string]int, len(counts))
	for _, c := range counts {
		byDay[c.Day] = c.Count
	}

	series := make([]DayCount, 0, windowDays)
	for i := windowDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		series = append(series, DayCount{
			Day:   day,
			Label: day.Format("Mon"),
			Count: byDay[day.Format("2006-01-02")],
		})
	}

	return series, nil
}

// TopSenders returns the message-count leaderboard, at most limit
// entries in descending order. Senders whose user record is gone are
// absent: the count joins against current profiles, it does not invent
// placeholder ones.
func (s *Service) TopSenders(ctx context.Context, limit int) ([]store.SenderCount, error) {
	if limit <= 0 {
		limit = 5
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	senders, err := s.storage.TopSenders(ctx, limit)
	if err != nil {
		return nil, s.unavailable("top senders", err)
	}

	return senders, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) unavailable(op string, err error) error {
	s.log.Error().Err(err).Str("query", op).Msg("analytics query failed")
	return fmt.Errorf("%s: %w", op, ErrUnavailable)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
