package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gopherchat/gopherchat/internal/common"
	"github.com/gopherchat/gopherchat/internal/config"
	"github.com/gopherchat/gopherchat/internal/convo"
	"github.com/gopherchat/gopherchat/internal/httpapi/handlers"
	"github.com/gopherchat/gopherchat/internal/httpapi/middleware"
	"github.com/gopherchat/gopherchat/internal/storage"
)

func NewRouter(cfg config.Config, store *storage.Store, svc *convo.Service) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())

	h := handlers.NewHandler(cfg, store, svc)

	r.GET("/ping", h.Ping)

	// auth
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/me", h.Me)
	authGroup.POST("/logout", h.Logout)
	authGroup.POST("/session/switch", h.SwitchAccount)

	// chats (JWT required)
	authGroup.GET("/chats", h.ListChats)
	authGroup.POST("/chats", h.NewChat)
	authGroup.POST("/chats/select", h.SelectChat)
	authGroup.DELETE("/chats/:chat_id", h.DeleteChat)
	authGroup.GET("/chat/messages", h.Transcript)
	authGroup.POST("/chat/messages", h.SendMessage)
	authGroup.POST("/chat/temporary", h.ToggleTemporary)

	// preferences and billing
	authGroup.POST("/settings/theme", h.ToggleTheme)
	authGroup.POST("/settings/mock", h.ToggleMock)
	authGroup.POST("/app/sidebar", h.ToggleSidebar)
	authGroup.POST("/billing/upgrade", h.Upgrade)

	return r
}
