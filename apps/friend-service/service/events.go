package service

import (
	"context"

	"amity-social/pkg/logger"
	"amity-social/pkg/utils"
)

// FriendEventsTopic 好友域事件主题
const FriendEventsTopic = "friend-events"

// 好友域事件类型
const (
	EventRequestSent     = "friend.request.sent"
	EventRequestAccepted = "friend.request.accepted"
	EventRequestRejected = "friend.request.rejected"
	EventFriendDeleted   = "friend.deleted"
	EventFriendBlocked   = "friend.blocked"
	EventFriendUnblocked = "friend.unblocked"
)

// EventProducer 事件生产接口
type EventProducer interface {
	SendJSON(topic string, userID int64, event interface{}) error
}

// FriendEvent 好友域事件
type FriendEvent struct {
	Type      string `json:"type"`
	UserID    int64  `json:"user_id"`
	PeerID    int64  `json:"peer_id"`
	Timestamp int64  `json:"timestamp"`
}

// emitEvent 发布好友域事件，失败只记日志
func (s *Service) emitEvent(ctx context.Context, eventType string, userID, peerID int64) {
	if s.producer == nil {
		return
	}
	event := &FriendEvent{
		Type:      eventType,
		UserID:    userID,
		PeerID:    peerID,
		Timestamp: utils.GetCurrentTimestampMs(),
	}
	if err := s.producer.SendJSON(FriendEventsTopic, userID, event); err != nil {
		s.logger.Warn(ctx, "Failed to emit friend event",
			logger.F("eventType", eventType),
			logger.F("userID", userID),
			logger.F("error", err.Error()))
	}
}
