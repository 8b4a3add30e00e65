package expense

import (
	"go-expense/internal/middleware"
	"go-expense/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	expenses := r.Group("/expenses")
	expenses.Use(middleware.AuthMiddleware())
	{
		expenses.GET("", middleware.RBACAuthorize(rbacService, "expense", "read"), handler.GetAll)
		expenses.GET("/:id", middleware.RBACAuthorize(rbacService, "expense", "read"), handler.GetById)
		expenses.POST("", middleware.RBACAuthorize(rbacService, "expense", "create"), handler.Create)
		expenses.PUT("/:id", middleware.RBACAuthorize(rbacService, "expense", "update"), handler.Update)
		expenses.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "expense", "update"), handler.Cancel)
		expenses.DELETE("/:id", middleware.RBACAuthorize(rbacService, "expense", "delete"), handler.Delete)
	}
}
