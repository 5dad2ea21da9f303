package api

import (
	"net/http"

	"github.com/alexanderramin/tempo/internal/identity"
	"github.com/gin-gonic/gin"
)

func (h *handlers) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, err)
		return
	}
	sess, err := h.sessions.Create(c.Request.Context(), identity.UserID(c), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, newSessionView(sess))
}

// listSessions keeps the list under "sessions" rather than "data".
func (h *handlers) listSessions(c *gin.Context) {
	sessions, err := h.sessions.List(c.Request.Context(), identity.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "sessions": newSessionViews(sessions)})
}

func (h *handlers) scheduledSessions(c *gin.Context) {
	sessions, err := h.sessions.Scheduled(c.Request.Context(), identity.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, newSessionViews(sessions))
}

func (h *handlers) getSession(c *gin.Context) {
	sess, err := h.sessions.Get(c.Request.Context(), identity.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, newSessionView(sess))
}

func (h *handlers) rescheduleSession(c *gin.Context) {
	var req rescheduleRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, err)
		return
	}
	sess, err := h.sessions.Reschedule(c.Request.Context(), identity.UserID(c), c.Param("id"), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, newSessionView(sess))
}

func (h *handlers) deleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), identity.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

func (h *handlers) startSession(c *gin.Context) {
	sess, err := h.sessions.Start(c.Request.Context(), identity.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"id":       sess.ID,
		"status":   string(sess.Status),
		"start_at": wireTime(sess.StartAt),
	})
}

func (h *handlers) stopSession(c *gin.Context) {
	sess, err := h.sessions.Stop(c.Request.Context(), identity.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"session": newSessionView(sess)})
}

func (h *handlers) startBreak(c *gin.Context) {
	var req startBreakRequest
	if err := bindJSON(c, &req, true); err != nil {
		fail(c, err)
		return
	}
	brk, err := h.sessions.StartBreak(c.Request.Context(), identity.UserID(c), c.Param("id"), req.Type)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"break": newBreakView(brk)})
}

func (h *handlers) stopBreak(c *gin.Context) {
	res, err := h.sessions.StopBreak(c.Request.Context(), identity.UserID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"break": newBreakView(res.Break), "break_time": res.BreakTime})
}
