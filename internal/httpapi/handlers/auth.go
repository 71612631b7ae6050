package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gopherchat/gopherchat/internal/auth"
	"github.com/gopherchat/gopherchat/internal/common"
	"github.com/gopherchat/gopherchat/internal/models"
	"github.com/gopherchat/gopherchat/internal/session"
)

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	ctrl := session.NewController(h.Store, h.Convo, h.HasAPIKey)
	user, err := ctrl.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmailTaken):
			common.Fail(c, http.StatusConflict, 10010, err.Error())
		case errors.Is(err, session.ErrMissingFields), errors.Is(err, session.ErrPasswordTooShort):
			common.Fail(c, http.StatusBadRequest, 10011, err.Error())
		default:
			common.Fail(c, http.StatusInternalServerError, 50001, "failed to register")
		}
		return
	}
	h.establishSession(c, ctrl, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	ctrl := session.NewController(h.Store, h.Convo, h.HasAPIKey)
	user, err := ctrl.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrMissingFields):
			common.Fail(c, http.StatusBadRequest, 10011, err.Error())
		case errors.Is(err, session.ErrInvalidCredentials):
			common.Fail(c, http.StatusUnauthorized, 10020, err.Error())
		default:
			common.Fail(c, http.StatusInternalServerError, 50001, "failed to log in")
		}
		return
	}
	h.establishSession(c, ctrl, user)
}

func (h *Handler) establishSession(c *gin.Context, ctrl *session.Controller, user *models.User) {
	sid, err := common.NewULID()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "internal error")
		return
	}
	token, err := auth.SignJWT(user.ID, sid, h.Cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to sign token")
		return
	}
	h.Sessions.Put(sid, ctrl)

	common.OK(c, gin.H{
		"token": token,
		"user":  publicUser(user),
	})
}

func (h *Handler) Me(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}
	user := ctrl.CurrentUser()
	if user == nil {
		common.Fail(c, http.StatusUnauthorized, 40104, "no active user")
		return
	}

	accounts := make([]gin.H, 0)
	for _, u := range ctrl.Users(c.Request.Context()) {
		accounts = append(accounts, gin.H{"id": u.ID, "email": u.Email, "plan": u.Plan})
	}

	common.OK(c, gin.H{
		"user":              publicUser(user),
		"accounts":          accounts,
		"sidebar_collapsed": ctrl.SidebarCollapsed(),
	})
}

func (h *Handler) Logout(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}
	if err := ctrl.Logout(c.Request.Context()); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to log out")
		return
	}
	h.Sessions.Remove(sessionIDFrom(c))
	common.OK(c, nil)
}

type switchAccountReq struct {
	UserID string `json:"user_id" binding:"required"`
}

func (h *Handler) SwitchAccount(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}
	var req switchAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	user, err := ctrl.SwitchAccount(c.Request.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, session.ErrUnknownUser) {
			common.Fail(c, http.StatusNotFound, 40401, "user not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50005, "failed to switch account")
		return
	}
	common.OK(c, gin.H{"user": publicUser(user)})
}
