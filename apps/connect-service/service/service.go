package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"amity-social/pkg/logger"
	"amity-social/pkg/presence"
	"amity-social/pkg/redis"
)

// Service 连接网关
// 持有本机WebSocket连接，把用户登记进在线目录，并把自己频道上的
// 推送信封转发给本地连接。收件人已断开时静默丢弃。
type Service struct {
	instanceID string
	directory  *presence.Directory
	redis      *redis.RedisClient
	logger     logger.Logger

	mutex sync.RWMutex
	conns map[int64]*websocket.Conn
}

// NewService 创建连接网关实例
// instanceID为空时生成随机实例ID，频道名随实例唯一
func NewService(instanceID string, directory *presence.Directory, redisClient *redis.RedisClient, log logger.Logger) *Service {
	if instanceID == "" {
		instanceID = "connect-" + uuid.NewString()
	}
	return &Service{
		instanceID: instanceID,
		directory:  directory,
		redis:      redisClient,
		logger:     log,
		conns:      make(map[int64]*websocket.Conn),
	}
}

// InstanceID 返回网关实例ID
func (s *Service) InstanceID() string {
	return s.instanceID
}

// AddConnection 接入连接：本地登记并写入在线目录
// 同一用户的新连接顶掉旧连接
func (s *Service) AddConnection(ctx context.Context, userID int64, conn *websocket.Conn) error {
	s.mutex.Lock()
	if old, exists := s.conns[userID]; exists {
		old.Close()
	}
	s.conns[userID] = conn
	s.mutex.Unlock()

	connID := uuid.NewString()
	if err := s.directory.Register(ctx, userID, s.instanceID, connID); err != nil {
		s.mutex.Lock()
		delete(s.conns, userID)
		s.mutex.Unlock()
		return fmt.Errorf("failed to register presence: %v", err)
	}

	s.logger.Info(ctx, "Connection added",
		logger.F("userID", userID),
		logger.F("connID", connID))
	return nil
}

// RemoveConnection 摘除连接：关本地连接并清在线目录
func (s *Service) RemoveConnection(ctx context.Context, userID int64) {
	s.mutex.Lock()
	if conn, exists := s.conns[userID]; exists {
		conn.Close()
		delete(s.conns, userID)
	}
	s.mutex.Unlock()

	if err := s.directory.Deregister(ctx, userID); err != nil {
		s.logger.Warn(ctx, "Failed to deregister presence",
			logger.F("userID", userID),
			logger.F("error", err.Error()))
	}

	s.logger.Info(ctx, "Connection removed", logger.F("userID", userID))
}

// SendToUser 向本地连接推送事件
func (s *Service) SendToUser(userID int64, event presence.Event) bool {
	s.mutex.RLock()
	conn, exists := s.conns[userID]
	s.mutex.RUnlock()
	if !exists {
		return false
	}

	if err := conn.WriteJSON(event); err != nil {
		s.logger.Warn(context.Background(), "Failed to write to websocket",
			logger.F("userID", userID),
			logger.F("error", err.Error()))
		return false
	}
	return true
}

// StartPushSubscriber 订阅本实例的推送频道并转发信封
// ctx取消时退出
func (s *Service) StartPushSubscriber(ctx context.Context) error {
	channel := presence.ChannelForGateway(s.instanceID)
	pubsub := s.redis.Subscribe(ctx, channel)

	// 确认订阅建立，失败时尽早暴露
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe push channel: %v", err)
	}

	s.logger.Info(ctx, "Push subscriber started", logger.F("channel", channel))

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				s.handlePushMessage(ctx, msg.Payload)
			}
		}
	}()
	return nil
}

// handlePushMessage 解码信封并投递给收件人的本地连接
func (s *Service) handlePushMessage(ctx context.Context, payload string) {
	var envelope presence.Envelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		s.logger.Warn(ctx, "Failed to decode push envelope", logger.F("error", err.Error()))
		return
	}

	if delivered := s.SendToUser(envelope.UserID, envelope.Event); delivered {
		s.logger.Info(ctx, "Push event delivered",
			logger.F("userID", envelope.UserID),
			logger.F("eventType", envelope.Event.Type))
	}
}

// CleanupAll 关闭所有本地连接并清理在线目录，服务退出时调用
func (s *Service) CleanupAll(ctx context.Context) {
	s.mutex.Lock()
	userIDs := make([]int64, 0, len(s.conns))
	for userID, conn := range s.conns {
		conn.Close()
		userIDs = append(userIDs, userID)
	}
	s.conns = make(map[int64]*websocket.Conn)
	s.mutex.Unlock()

	for _, userID := range userIDs {
		if err := s.directory.Deregister(ctx, userID); err != nil {
			s.logger.Warn(ctx, "Failed to deregister presence on shutdown",
				logger.F("userID", userID),
				logger.F("error", err.Error()))
		}
	}
}
