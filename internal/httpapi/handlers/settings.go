package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gopherchat/gopherchat/internal/common"
	"github.com/gopherchat/gopherchat/internal/session"
)

func (h *Handler) ToggleTheme(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}
	theme, err := ctrl.ToggleTheme(c.Request.Context())
	if err != nil {
		h.settingsError(c, err)
		return
	}
	common.OK(c, gin.H{"theme": theme})
}

func (h *Handler) ToggleMock(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}
	useMock, err := ctrl.ToggleMockAPI(c.Request.Context())
	if err != nil {
		h.settingsError(c, err)
		return
	}
	common.OK(c, gin.H{"use_mock_api": useMock})
}

func (h *Handler) ToggleSidebar(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}
	collapsed, err := ctrl.ToggleSidebar(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50009, "failed to save app state")
		return
	}
	common.OK(c, gin.H{"sidebar_collapsed": collapsed})
}

// Upgrade runs the fake payment flow and flips the plan on confirmation.
func (h *Handler) Upgrade(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}

	if err := h.Payments.Charge(c.Request.Context()); err != nil {
		common.Fail(c, http.StatusBadGateway, 50230, "payment processing interrupted")
		return
	}

	user, err := ctrl.UpgradeToPro(c.Request.Context())
	if err != nil {
		h.settingsError(c, err)
		return
	}
	common.OK(c, gin.H{"user": publicUser(user)})
}

func (h *Handler) settingsError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrNotAuthenticated) {
		common.Fail(c, http.StatusUnauthorized, 40104, "no active user")
		return
	}
	common.Fail(c, http.StatusInternalServerError, 50010, "failed to save settings")
}
