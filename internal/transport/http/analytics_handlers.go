package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/wirechat-admin/internal/analytics"
	"github.com/vovakirdan/wirechat-admin/internal/presence"
	"github.com/vovakirdan/wirechat-admin/internal/store"
)

const (
	chartWindowDays  = 7
	leaderboardLimit = 5
)

// AnalyticsHandlers provides HTTP handlers for dashboard analytics.
type AnalyticsHandlers struct {
	svc     *analytics.Service
	counter *presence.Counter
	log     *zerolog.Logger
}

// NewAnalyticsHandlers creates a new analytics handlers instance.
func NewAnalyticsHandlers(svc *analytics.Service, counter *presence.Counter, logger *zerolog.Logger) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		svc:     svc,
		counter: counter,
		log:     logger,
	}
}

// StatsResponse represents the summary statistics payload.
type StatsResponse struct {
	TotalUsers         int64 `json:"totalUsers"`
	TotalConversations int64 `json:"totalConversations"`
	TotalMessages      int64 `json:"totalMessages"`
	OnlineUserCount    int   `json:"onlineUserCount"`
}

// ChartEntry is one bar of the new-users chart. The "New Users" key is
// what the dashboard's chart component binds to.
type ChartEntry struct {
	Date     string `json:"date"`
	NewUsers int    `json:"New Users"`
}

// ActiveUserResponse is one leaderboard row.
type ActiveUserResponse struct {
	UserID            int64  `json:"userId"`
	FullName          string `json:"fullName"`
	ProfilePictureURL string `json:"profilePictureUrl"`
	MessageCount      int64  `json:"messageCount"`
}

// DashboardResponse is the combined payload of all dashboard queries.
type DashboardResponse struct {
	Stats           StatsResponse        `json:"stats"`
	NewUsersChart   []ChartEntry         `json:"newUsersChart"`
	MostActiveUsers []ActiveUserResponse `json:"mostActiveUsers"`
	OnlineChatUsers int                  `json:"onlineChatUsers"`
}

// Stats handles the summary statistics query.
// GET /api/analytics/stats
func (h *AnalyticsHandlers) Stats(c *gin.Context) {
	summary, err := h.svc.SummaryCounts(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to fetch summary counts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, statsResponse(summary))
}

// NewUsersChart handles the signup time-series query.
// GET /api/analytics/new-users-chart
func (h *AnalyticsHandlers) NewUsersChart(c *gin.Context) {
	series, err := h.svc.NewUsersByDay(c.Request.Context(), chartWindowDays)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to fetch signup series")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, chartResponse(series))
}

// MostActiveUsers handles the sender leaderboard query.
// GET /api/analytics/most-active-users
func (h *AnalyticsHandlers) MostActiveUsers(c *gin.Context) {
	senders, err := h.svc.TopSenders(c.Request.Context(), leaderboardLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to fetch top senders")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, leaderboardResponse(senders))
}

// Dashboard combines all three analytics queries. They are independent
// and read-only, so they run concurrently; if any one fails the whole
// request fails rather than returning a partial payload.
// GET /api/analytics/dashboard
func (h *AnalyticsHandlers) Dashboard(c *gin.Context) {
	var (
		summary analytics.Summary
		series  []analytics.DayCount
		senders []store.SenderCount
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		summary, err = h.svc.SummaryCounts(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		series, err = h.svc.NewUsersByDay(ctx, chartWindowDays)
		return err
	})
	g.Go(func() error {
		var err error
		senders, err = h.svc.TopSenders(ctx, leaderboardLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		h.log.Error().Err(err).Msg("failed to compose dashboard")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Stats:           statsResponse(summary),
		NewUsersChart:   chartResponse(series),
		MostActiveUsers: leaderboardResponse(senders),
		OnlineChatUsers: h.counter.Value(),
	})
}

func statsResponse(summary analytics.Summary) StatsResponse {
	return StatsResponse{
		TotalUsers:         summary.TotalUsers,
		TotalConversations: summary.TotalConversations,
		TotalMessages:      summary.TotalMessages,
		OnlineUserCount:    summary.OnlineUserCount,
	}
}

func chartResponse(series []analytics.DayCount) []ChartEntry {
	entries := make([]ChartEntry, 0, len(series))
	for _, day := range series {
		entries = append(entries, ChartEntry{
			Date:     day.Label,
			NewUsers: day.Count,
		})
	}
	return entries
}

func leaderboardResponse(senders []store.SenderCount) []ActiveUserResponse {
	response := make([]ActiveUserResponse, 0, len(senders))
	for _, s := range senders {
		response = append(response, ActiveUserResponse{
			UserID:            s.UserID,
			FullName:          s.FullName,
			ProfilePictureURL: s.ProfilePictureURL,
			MessageCount:      s.MessageCount,
		})
	}
	return response
}
