package handler

import (
	"github.com/gin-gonic/gin"

	"amity-social/apps/user-service/service"
	"amity-social/pkg/logger"
)

// HTTPHandler HTTP处理器
type HTTPHandler struct {
	svc    *service.Service
	logger logger.Logger
}

// NewHTTPHandler 创建HTTP处理器
func NewHTTPHandler(svc *service.Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: log,
	}
}

// RegisterRoutes 注册路由
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1/users")
	{
		api.POST("/nickname/check", h.CheckNickname)
		api.POST("/email/code", h.IssueEmailCode)
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.GET("/profile", h.GetProfile)
		api.PUT("/profile", h.UpdateProfile)
	}
}
