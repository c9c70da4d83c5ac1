package service

import (
	"context"
	"encoding/json"

	"amity-social/pkg/logger"
	"amity-social/pkg/presence"
	"amity-social/pkg/redis"
)

// Notifier 在线推送接口
// 纯尽力而为：返回值只用于观测，调用方不得据此分支业务逻辑
type Notifier interface {
	TrySend(ctx context.Context, userID int64, event presence.Event) bool
}

// PresenceDirectory 在线状态查询接口
type PresenceDirectory interface {
	IsOnline(ctx context.Context, userID int64) (bool, error)
	GetChannel(ctx context.Context, userID int64) (string, bool, error)
}

// presenceNotifier 通过在线目录定位网关频道，经Redis发布推送信封
type presenceNotifier struct {
	directory PresenceDirectory
	redis     *redis.RedisClient
	logger    logger.Logger
}

// NewPresenceNotifier 创建在线推送器
func NewPresenceNotifier(directory PresenceDirectory, redisClient *redis.RedisClient, log logger.Logger) Notifier {
	return &presenceNotifier{
		directory: directory,
		redis:     redisClient,
		logger:    log,
	}
}

// TrySend 若目标在线则向其网关频道发布事件
// 不在线静默跳过，发布失败只记日志，永不向上抛错
func (n *presenceNotifier) TrySend(ctx context.Context, userID int64, event presence.Event) bool {
	channel, online, err := n.directory.GetChannel(ctx, userID)
	if err != nil {
		n.logger.Warn(ctx, "Failed to resolve push channel",
			logger.F("targetUserID", userID),
			logger.F("error", err.Error()))
		return false
	}
	if !online {
		return false
	}

	envelope := presence.Envelope{
		UserID: userID,
		Event:  event,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		n.logger.Warn(ctx, "Failed to marshal push envelope",
			logger.F("targetUserID", userID),
			logger.F("error", err.Error()))
		return false
	}

	if err := n.redis.Publish(ctx, channel, payload); err != nil {
		n.logger.Warn(ctx, "Failed to publish push event",
			logger.F("targetUserID", userID),
			logger.F("channel", channel),
			logger.F("error", err.Error()))
		return false
	}
	return true
}
