package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gopherchat/gopherchat/internal/common"
	"github.com/gopherchat/gopherchat/internal/config"
	"github.com/gopherchat/gopherchat/internal/convo"
	"github.com/gopherchat/gopherchat/internal/httpapi/middleware"
	"github.com/gopherchat/gopherchat/internal/models"
	"github.com/gopherchat/gopherchat/internal/payment"
	"github.com/gopherchat/gopherchat/internal/session"
	"github.com/gopherchat/gopherchat/internal/storage"
)

type Handler struct {
	Cfg       config.Config
	Store     *storage.Store
	Convo     *convo.Service
	Payments  *payment.Processor
	Sessions  *session.Manager
	HasAPIKey bool
}

func NewHandler(cfg config.Config, store *storage.Store, svc *convo.Service) *Handler {
	return &Handler{
		Cfg:       cfg,
		Store:     store,
		Convo:     svc,
		Payments:  payment.NewProcessor(cfg.PaymentDelay),
		Sessions:  session.NewManager(),
		HasAPIKey: cfg.GeminiAPIKey != "",
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"message": "pong"})
}

// controllerFrom resolves the calling session's controller; on failure it has
// already written the response.
func (h *Handler) controllerFrom(c *gin.Context) (*session.Controller, bool) {
	v, ok := c.Get(middleware.SessionIDKey)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return nil, false
	}
	sid, _ := v.(string)
	ctrl, ok := h.Sessions.Get(sid)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40103, "session expired")
		return nil, false
	}
	return ctrl, true
}

func sessionIDFrom(c *gin.Context) string {
	v, ok := c.Get(middleware.SessionIDKey)
	if !ok {
		return ""
	}
	sid, _ := v.(string)
	return sid
}

// publicUser is the user shape sent to clients; the credential encoding never
// leaves the server.
func publicUser(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"plan":       u.Plan,
		"created_at": u.CreatedAt,
		"settings":   u.Settings,
	}
}
