package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const activityPageSize = 25

type ActivityController struct {
	pages
	auditor ActivityLog
}

func NewActivityController(auditor ActivityLog, p pages) *ActivityController {
	return &ActivityController{
		pages:   p,
		auditor: auditor,
	}
}

// ActivityPage renders the user's own audit trail.
// GET /activity
func (ac *ActivityController) ActivityPage(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * activityPageSize

	events, total, err := ac.auditor.GetEvents(identity(c).UserID, activityPageSize, offset)
	if err != nil {
		ac.internalError(c, err, "load activity")
		return
	}

	totalPages := (int(total) + activityPageSize - 1) / activityPageSize
	if totalPages < 1 {
		totalPages = 1
	}

	ac.render(c, http.StatusOK, "activity", gin.H{
		"Title":       "Activity",
		"Events":      events,
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"TotalEvents": total,
	})
}
