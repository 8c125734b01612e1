package api

import (
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ifwatch/agent/internal/collector"
	"github.com/ifwatch/agent/internal/config"
	"github.com/ifwatch/agent/internal/healthcore"
	"github.com/ifwatch/agent/internal/storage"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	config    *config.Config
	collector *collector.Collector
	startTime time.Time
}

// NewHandler creates a new Handler with the given configuration.
func NewHandler(cfg *config.Config) *Handler {
	return &Handler{
		config:    cfg,
		startTime: time.Now(),
	}
}

// SetCollector sets the collector for the handler.
func (h *Handler) SetCollector(c *collector.Collector) {
	h.collector = c
}

// StatusResponse represents the response for the status endpoint.
type StatusResponse struct {
	Status         string  `json:"status"`
	Uptime         string  `json:"uptime"`
	UptimeSecs     float64 `json:"uptime_secs"`
	InterfaceCount int     `json:"interface_count"`
	Version        string  `json:"version"`
}

// GetStatus returns the current system status.
func (h *Handler) GetStatus(c *gin.Context) {
	uptime := time.Since(h.startTime)

	response := StatusResponse{
		Status:         "ok",
		Uptime:         uptime.Round(time.Second).String(),
		UptimeSecs:     uptime.Seconds(),
		InterfaceCount: len(h.config.Agent.Interfaces),
		Version:        "0.1.0",
	}

	c.JSON(http.StatusOK, response)
}

// InterfaceResponse represents a tracked interface in API responses.
type InterfaceResponse struct {
	Name     string                        `json:"name"`
	Snapshot *healthcore.InterfaceSnapshot `json:"snapshot,omitempty"`
	Stats    *storage.Stats                `json:"stats,omitempty"`
}

// GetInterfaces returns the list of all tracked interfaces.
func (h *Handler) GetInterfaces(c *gin.Context) {
	names := h.config.Agent.Interfaces
	responses := make([]InterfaceResponse, len(names))

	var allStats map[string]*storage.Stats
	if h.collector != nil {
		allStats = h.collector.GetAllStats()
	}

	for i, name := range names {
		responses[i] = InterfaceResponse{Name: name}
		if allStats != nil {
			responses[i].Stats = allStats[name]
		}
	}

	c.JSON(http.StatusOK, responses)
}

// GetInterface returns details for a specific interface.
func (h *Handler) GetInterface(c *gin.Context) {
	name := c.Param("name")

	for _, ifaceName := range h.config.Agent.Interfaces {
		if ifaceName == name {
			response := InterfaceResponse{Name: name}
			if h.collector != nil {
				response.Stats = h.collector.GetStats(name)
			}
			c.JSON(http.StatusOK, response)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{
		"error":   "Not Found",
		"message": "Interface not found: " + name,
	})
}

// HistoryQuery represents query parameters for historical data.
type HistoryQuery struct {
	From       string `form:"from"`
	To         string `form:"to"`
	Resolution string `form:"resolution"`
}

// DataPoint represents a single data point in history.
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Score     *float64  `json:"score"`  // nil for NaN values
	Status    *float64  `json:"status"` // nil for no data
}

// HistoryResponse contains historical data points for an interface.
type HistoryResponse struct {
	Interface  string      `json:"interface"`
	From       time.Time   `json:"from"`
	To         time.Time   `json:"to"`
	Resolution string      `json:"resolution"`
	DataPoints []DataPoint `json:"data_points"`
}

// GetInterfaceHistory returns historical score/status data for an interface.
func (h *Handler) GetInterfaceHistory(c *gin.Context) {
	name := c.Param("name")

	found := false
	for _, ifaceName := range h.config.Agent.Interfaces {
		if ifaceName == name {
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Interface not found: " + name,
		})
		return
	}

	var query HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid query parameters: " + err.Error(),
		})
		return
	}

	to := time.Now()
	from := to.Add(-1 * time.Hour)
	resolution := "raw"

	if query.From != "" {
		if parsed, err := time.Parse(time.RFC3339, query.From); err == nil {
			from = parsed
		}
	}
	if query.To != "" {
		if parsed, err := time.Parse(time.RFC3339, query.To); err == nil {
			to = parsed
		}
	}
	if query.Resolution != "" {
		resolution = query.Resolution
	}

	var dataPoints []DataPoint
	if h.collector != nil {
		points, err := h.collector.FetchHistory(name, from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to fetch history: " + err.Error(),
			})
			return
		}

		dataPoints = make([]DataPoint, len(points))
		for i, p := range points {
			dp := DataPoint{Timestamp: p.Timestamp}
			if !math.IsNaN(p.Score) {
				score := p.Score
				dp.Score = &score
			}
			if !math.IsNaN(p.Status) {
				status := p.Status
				dp.Status = &status
			}
			dataPoints[i] = dp
		}
	}

	c.JSON(http.StatusOK, HistoryResponse{
		Interface:  name,
		From:       from,
		To:         to,
		Resolution: resolution,
		DataPoints: dataPoints,
	})
}

// TransitionsResponse wraps the most recent transitions an interface fired.
type TransitionsResponse struct {
	Transitions []healthcore.TransitionEvent `json:"transitions"`
}

// GetTransitions returns the most recent transitions observed this run.
func (h *Handler) GetTransitions(c *gin.Context) {
	var transitions []healthcore.TransitionEvent
	if h.collector != nil {
		transitions = h.collector.RecentTransitions()
	}
	c.JSON(http.StatusOK, TransitionsResponse{Transitions: transitions})
}

// SummaryResponse wraps the ranked end-of-run summary.
type SummaryResponse struct {
	Ranked []healthcore.RankedSummaryItem `json:"ranked"`
}

// GetSummary returns interfaces ranked by average score.
func (h *Handler) GetSummary(c *gin.Context) {
	var ranked []healthcore.RankedSummaryItem
	if h.collector != nil {
		ranked = h.collector.Summary()
	}
	c.JSON(http.StatusOK, SummaryResponse{Ranked: ranked})
}

// GetConfig returns the current configuration (read-only).
func (h *Handler) GetConfig(c *gin.Context) {
	response := gin.H{
		"server": gin.H{
			"address":    h.config.Server.Address,
			"enable_tui": h.config.Server.EnableTUI,
		},
		"agent": gin.H{
			"interfaces": h.config.Agent.Interfaces,
			"interval":   h.config.Agent.Interval.String(),
		},
		"score": h.config.Score,
		"fsm":   h.config.Fsm,
		"storage": gin.H{
			"data_dir":    h.config.Storage.DataDir,
			"retention":   h.config.Storage.Retention,
			"aggregation": h.config.Storage.Aggregation,
			"xff":         h.config.Storage.XFF,
		},
		"interface_count": len(h.config.Agent.Interfaces),
	}

	c.JSON(http.StatusOK, response)
}
