package notification

import (
	"go-expense/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Notifikasi selalu milik user yang login, tidak perlu cek RBAC tambahan.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("", handler.GetAll)
		notifications.GET("/unread-count", handler.UnreadCount)
		notifications.POST("/:id/read", handler.MarkRead)
		notifications.POST("/read-all", handler.MarkAllRead)
	}
}
