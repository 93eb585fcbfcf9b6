package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/entities"
)

// ActivityResponse is a page of the caller's audit events.
type ActivityResponse struct {
	Events []entities.AuditEvent `json:"events"`
	Total  int64                 `json:"total"`
}

type ActivityController struct {
	audit Auditor
}

func NewActivityController(audit Auditor) *ActivityController {
	return &ActivityController{audit: audit}
}

// List handles GET /activity/?limit=&offset=
func (ac *ActivityController) List(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}

	events, total, err := ac.audit.GetEvents(caller.UserID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list activity")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}
	c.JSON(http.StatusOK, ActivityResponse{Events: events, Total: total})
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}

// auditDeletes wraps a delete handler so that a successful delete is
// recorded against the caller.
func auditDeletes(audit Auditor, entityType string, next gin.HandlerFunc) gin.HandlerFunc {
	if audit == nil {
		return next
	}
	return func(c *gin.Context) {
		next(c)
		if c.Writer.Status() != http.StatusNoContent {
			return
		}
		caller, _ := auth.GetIdentity(c)
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			return
		}
		audit.LogDelete(caller.UserID, entityType, uint(id), c.ClientIP())
	}
}
