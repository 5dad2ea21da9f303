package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/identity"
	"github.com/gin-gonic/gin"
)

const maxSettingsBytes = 64 << 10

func (h *handlers) me(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), identity.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, newUserView(user))
}

func (h *handlers) updateSettings(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSettingsBytes+1))
	if err != nil {
		fail(c, fmt.Errorf("%w: reading body: %v", domain.ErrValidation, err))
		return
	}
	if len(raw) > maxSettingsBytes {
		fail(c, fmt.Errorf("%w: settings must be at most %d bytes", domain.ErrValidation, maxSettingsBytes))
		return
	}
	user, err := h.users.UpdateSettings(c.Request.Context(), identity.UserID(c), raw)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, newUserView(user))
}

// logout always answers 204; requests without a login are a no-op.
func (h *handlers) logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), c.Writer, c.Request); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

func (h *handlers) listTags(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context(), identity.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, newTagViews(tags))
}

func (h *handlers) createTag(c *gin.Context) {
	var req createTagRequest
	if err := bindJSON(c, &req, false); err != nil {
		fail(c, err)
		return
	}
	tag, err := h.tags.Create(c.Request.Context(), identity.UserID(c), req.Name, req.Color)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, newTagView(tag))
}

func (h *handlers) deleteTag(c *gin.Context) {
	if err := h.tags.Delete(c.Request.Context(), identity.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}
