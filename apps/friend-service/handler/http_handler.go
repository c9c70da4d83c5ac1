package handler

import (
	"github.com/gin-gonic/gin"

	"amity-social/apps/friend-service/converter"
	"amity-social/apps/friend-service/service"
	"amity-social/pkg/logger"
)

// HTTPHandler HTTP处理器
type HTTPHandler struct {
	svc       *service.Service
	converter *converter.Converter
	logger    logger.Logger
}

// NewHTTPHandler 创建HTTP处理器
func NewHTTPHandler(svc *service.Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:       svc,
		converter: converter.NewConverter(),
		logger:    log,
	}
}

// RegisterRoutes 注册路由
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1/friends")
	{
		api.POST("/request", h.SendFriendRequest)
		api.POST("/respond", h.RespondToFriendRequest)
		api.GET("/received-requests", h.GetReceivedRequests)
		api.GET("/list", h.GetFriendsList)
		api.POST("/delete", h.DeleteFriend)
		api.POST("/block", h.BlockFriend)
		api.POST("/unblock", h.UnblockFriend)
	}
}
