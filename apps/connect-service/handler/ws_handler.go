package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"amity-social/apps/connect-service/service"
	"amity-social/pkg/auth"
	"amity-social/pkg/logger"
)

// WSHandler WebSocket接入处理器
type WSHandler struct {
	svc       *service.Service
	jwtSecret string
	logger    logger.Logger
	upgrader  websocket.Upgrader
}

// NewWSHandler 创建WebSocket处理器
func NewWSHandler(svc *service.Service, jwtSecret string, log logger.Logger) *WSHandler {
	return &WSHandler{
		svc:       svc,
		jwtSecret: jwtSecret,
		logger:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes 注册路由
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.HandleWebSocket)
}

// HandleWebSocket 处理WebSocket接入
// 握手通过query参数带token，认证中间件对/ws放行，这里自行校验
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	ctx := c.Request.Context()

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing token"})
		return
	}

	claims, err := auth.ValidateJWT(token, h.jwtSecret)
	if err != nil {
		h.logger.Warn(ctx, "WebSocket auth failed", logger.F("error", err.Error()))
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error(ctx, "WebSocket upgrade failed",
			logger.F("userID", claims.UserID),
			logger.F("error", err.Error()))
		return
	}

	if err := h.svc.AddConnection(ctx, claims.UserID, conn); err != nil {
		h.logger.Error(ctx, "Failed to add connection",
			logger.F("userID", claims.UserID),
			logger.F("error", err.Error()))
		conn.Close()
		return
	}

	// 推送经订阅协程下行，这里的读循环只为感知断开
	go h.readLoop(claims.UserID, conn)
}

// readLoop 消费入站帧直到连接断开，断开即注销在线状态
func (h *WSHandler) readLoop(userID int64, conn *websocket.Conn) {
	defer h.svc.RemoveConnection(context.Background(), userID)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
