package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-admin/internal/store"
)

const recentLogsLimit = 5

// LogHandlers provides HTTP handlers for the activity-log audit trail.
type LogHandlers struct {
	store store.ActivityLogStore
	log   *zerolog.Logger
}

// NewLogHandlers creates a new log handlers instance.
func NewLogHandlers(st store.ActivityLogStore, logger *zerolog.Logger) *LogHandlers {
	return &LogHandlers{
		store: st,
		log:   logger,
	}
}

// LogResponse represents an activity log entry in API responses.
type LogResponse struct {
	ID         int64  `json:"id"`
	AdminName  string `json:"adminName"`
	Action     string `json:"action"`
	TargetName string `json:"targetName"`
	Timestamp  string `json:"timestamp"`
}

// List handles listing activity logs, newest first, with an optional
// case-insensitive search over admin name, action and target name.
// GET /api/logs?search=<text>
func (h *LogHandlers) List(c *gin.Context) {
	search := c.Query("search")

	logs, err := h.store.ListLogs(c.Request.Context(), search)
	if err != nil {
		h.log.Error().Err(err).Str("search", search).Msg("failed to list activity logs")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, logResponses(logs))
}

// Recent handles listing the newest activity logs.
// GET /api/logs/recent
func (h *LogHandlers) Recent(c *gin.Context) {
	logs, err := h.store.RecentLogs(c.Request.Context(), recentLogsLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list recent activity logs")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, logResponses(logs))
}

func logResponses(logs []*store.ActivityLog) []LogResponse {
	response := make([]LogResponse, 0, len(logs))
	for _, entry := range logs {
		response = append(response, LogResponse{
			ID:         entry.ID,
			AdminName:  entry.AdminName,
			Action:     entry.Action,
			TargetName: entry.TargetName,
			Timestamp:  entry.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return response
}
