package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gopherchat/gopherchat/internal/common"
	"github.com/gopherchat/gopherchat/internal/session"
)

func (h *Handler) ListChats(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}
	groups := session.GroupChatsByRecency(ctrl.Chats(), time.Now())
	common.OK(c, gin.H{
		"groups":          groups,
		"current_chat_id": ctrl.CurrentChatID(),
		"temporary":       ctrl.Temporary(),
	})
}

type newChatReq struct {
	Temporary bool `json:"temporary"`
}

func (h *Handler) NewChat(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}
	var req newChatReq
	_ = c.ShouldBindJSON(&req) // allow empty {}

	ctrl.NewChat(req.Temporary)
	common.OK(c, gin.H{"temporary": ctrl.Temporary()})
}

type selectChatReq struct {
	ChatID string `json:"chat_id" binding:"required"`
}

func (h *Handler) SelectChat(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}
	var req selectChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	chat, err := ctrl.SelectChat(req.ChatID)
	if err != nil {
		if errors.Is(err, session.ErrUnknownChat) {
			common.Fail(c, http.StatusNotFound, 40402, "chat not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50006, "failed to select chat")
		return
	}
	common.OK(c, gin.H{"chat": chat})
}

func (h *Handler) DeleteChat(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}
	chatID := c.Param("chat_id")
	if chatID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "chat_id required")
		return
	}

	if err := ctrl.DeleteChat(c.Request.Context(), chatID); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			common.Fail(c, http.StatusUnauthorized, 40104, "no active user")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50007, "failed to delete chat")
		return
	}
	common.OK(c, nil)
}

func (h *Handler) Transcript(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}
	common.OK(c, gin.H{
		"chat_id":   ctrl.CurrentChatID(),
		"messages":  ctrl.Transcript(),
		"loading":   ctrl.Pending(),
		"temporary": ctrl.Temporary(),
	})
}

type sendMessageReq struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	transcript, err := ctrl.SendMessage(c.Request.Context(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotAuthenticated):
			common.Fail(c, http.StatusUnauthorized, 40104, "no active user")
		case errors.Is(err, session.ErrReplyPending):
			common.Fail(c, http.StatusConflict, 42901, err.Error())
		default:
			common.Fail(c, http.StatusInternalServerError, 50008, "failed to send message")
		}
		return
	}

	common.OK(c, gin.H{
		"chat_id":  ctrl.CurrentChatID(),
		"messages": transcript,
	})
}

func (h *Handler) ToggleTemporary(c *gin.Context) {
	ctrl, ok := h.controllerFrom(c)
	if !ok {
		return
	}
	common.OK(c, gin.H{"temporary": ctrl.ToggleTemporary()})
}
