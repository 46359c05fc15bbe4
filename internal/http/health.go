package http

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Time     string            `json:"time"`
	Version  string            `json:"version,omitempty"`
	Checks   map[string]string `json:"checks"`
	Features []string          `json:"features,omitempty"`
}

// Pinger reports database reachability. Implemented by database.Database.
type Pinger interface {
	Ping() error
}

// HealthController reports dependency status and the optional features
// this instance runs with.
type HealthController struct {
	db       Pinger
	version  string
	features []string
}

func NewHealthController(db Pinger, version string, features ...string) *HealthController {
	sorted := append([]string(nil), features...)
	sort.Strings(sorted)
	return &HealthController{
		db:       db,
		version:  version,
		features: sorted,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	response := HealthResponse{
		Status:   "healthy",
		Time:     time.Now().UTC().Format(time.RFC3339),
		Version:  h.version,
		Checks:   map[string]string{"database": h.databaseCheck()},
		Features: h.features,
	}

	statusCode := http.StatusOK
	if response.Checks["database"] != "ok" && h.db != nil {
		response.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, response)
}

func (h *HealthController) databaseCheck() string {
	if h.db == nil {
		return "not configured"
	}
	if err := h.db.Ping(); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
