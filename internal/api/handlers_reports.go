package api

import (
	"net/http"

	"github.com/alexanderramin/tempo/internal/identity"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/gin-gonic/gin"
)

// tagFilter returns nil unless the tagId query parameter is present.
func tagFilter(c *gin.Context) *string {
	if v, present := c.GetQuery("tagId"); present {
		return &v
	}
	return nil
}

func (h *handlers) history(c *gin.Context) {
	days := service.ClampDays(c.Query("days"))
	res, err := h.queries.History(c.Request.Context(), identity.UserID(c), days, tagFilter(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, newHistoryView(res))
}

func (h *handlers) upcoming(c *gin.Context) {
	sessions, err := h.queries.Upcoming(c.Request.Context(), identity.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, newSessionViews(sessions))
}

func (h *handlers) analytics(c *gin.Context) {
	days := service.ClampDays(c.Query("days"))
	res, err := h.queries.Analytics(c.Request.Context(), identity.UserID(c), days, tagFilter(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, newAnalyticsView(res))
}
