package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"amity-social/apps/friend-service/dao"
	"amity-social/apps/friend-service/model"
	"amity-social/pkg/errs"
	"amity-social/pkg/logger"
	"amity-social/pkg/presence"
	"amity-social/pkg/telemetry"
	"amity-social/pkg/utils"
)

// Service 好友关系引擎
// 好友域状态的唯一写入方，跨关系存储、chatroom网关和在线推送编排状态迁移
type Service struct {
	dao      dao.FriendDAO
	chatroom ChatroomGateway
	notifier Notifier
	presence PresenceDirectory
	producer EventProducer
	logger   logger.Logger
}

// NewService 创建好友服务实例
func NewService(friendDAO dao.FriendDAO, chatroom ChatroomGateway, notifier Notifier,
	presenceDir PresenceDirectory, producer EventProducer, log logger.Logger) *Service {
	return &Service{
		dao:      friendDAO,
		chatroom: chatroom,
		notifier: notifier,
		presence: presenceDir,
		producer: producer,
		logger:   log,
	}
}

// SendFriendRequest 发送好友申请
// 每次调用都重读当前状态做校验，不缓存，避免陈旧迁移
func (s *Service) SendFriendRequest(ctx context.Context, fromUserID int64, targetNickname string) (*model.FriendRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "friend.service.SendFriendRequest")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("friend.from_user_id", fromUserID),
		attribute.String("friend.target_nickname", targetNickname),
	)

	fromUser, err := s.dao.GetUser(ctx, fromUserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sender not found")
		return nil, err
	}

	target, err := s.dao.GetUserByNickname(ctx, targetNickname)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "target not found")
		return nil, err
	}

	if fromUser.ID == target.ID {
		span.SetStatus(codes.Error, "self friend request")
		return nil, errs.ErrSelfFriendRequest
	}

	blocked, err := s.dao.HasBlock(ctx, fromUser.ID, target.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check block")
		return nil, fmt.Errorf("failed to check block: %v", err)
	}
	if blocked {
		span.SetStatus(codes.Error, "pair is blocked")
		return nil, errs.ErrFriendRequestBlocked
	}

	existing, err := s.dao.GetPendingRequest(ctx, fromUser.ID, target.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check pending request")
		return nil, fmt.Errorf("failed to check pending request: %v", err)
	}
	if existing != nil {
		span.SetStatus(codes.Error, "pending request exists")
		return nil, errs.ErrFriendRequestAlreadyExists
	}

	friendship, err := s.dao.GetFriendship(ctx, fromUser.ID, target.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check friendship")
		return nil, fmt.Errorf("failed to check friendship: %v", err)
	}
	if friendship != nil {
		span.SetStatus(codes.Error, "already friends")
		return nil, errs.ErrAlreadyFriends
	}

	request := &model.FriendRequest{
		FromUserID: fromUser.ID,
		ToUserID:   target.ID,
		Status:     model.RequestStatusPending,
	}
	if err := s.dao.CreateRequest(ctx, request); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return nil, err
	}

	s.notifyFriendRequest(ctx, request, fromUser)
	s.emitEvent(ctx, EventRequestSent, fromUser.ID, target.ID)

	s.logger.Info(ctx, "Friend request sent",
		logger.F("fromUserID", fromUser.ID),
		logger.F("toUserID", target.ID),
		logger.F("requestID", request.ID))

	span.SetStatus(codes.Ok, "friend request sent")
	return request, nil
}

// RespondToFriendRequest 处理好友申请
// accept在一个事务内完成：删申请、建好友关系、同步调chatroom网关并回填ID，
// 网关失败整体回滚。reject直接删除申请行，不留历史。
// 返回accept时创建的好友关系，reject时为nil。
func (s *Service) RespondToFriendRequest(ctx context.Context, callerID, requestID int64, action, token string) (*model.Friendship, error) {
	ctx, span := telemetry.StartSpan(ctx, "friend.service.RespondToFriendRequest")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("friend.request_id", requestID),
		attribute.String("friend.action", action),
	)

	request, err := s.dao.GetPendingRequestByID(ctx, requestID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get request")
		return nil, fmt.Errorf("failed to get request: %v", err)
	}
	// 只有收件人能处理自己的申请，他人的申请视同不存在
	if request == nil || request.ToUserID != callerID {
		span.SetStatus(codes.Error, "request not found")
		return nil, errs.ErrFriendRequestNotFound
	}

	switch action {
	case model.RespondActionAccept:
		friendship, err := s.acceptRequest(ctx, request, token)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "accept failed")
			return nil, err
		}

		s.emitEvent(ctx, EventRequestAccepted, request.ToUserID, request.FromUserID)
		s.logger.Info(ctx, "Friend request accepted",
			logger.F("requestID", request.ID),
			logger.F("friendshipID", friendship.ID),
			logger.F("chatroomID", *friendship.ChatroomID))

		span.SetStatus(codes.Ok, "friend request accepted")
		return friendship, nil

	case model.RespondActionReject:
		if err := s.dao.DeleteRequest(ctx, request.ID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reject failed")
			return nil, err
		}

		s.emitEvent(ctx, EventRequestRejected, request.ToUserID, request.FromUserID)
		s.logger.Info(ctx, "Friend request rejected", logger.F("requestID", request.ID))

		span.SetStatus(codes.Ok, "friend request rejected")
		return nil, nil

	default:
		span.SetStatus(codes.Error, "invalid action")
		return nil, errs.ErrValidation
	}
}

// acceptRequest accept的事务体
// 先建好友关系行让唯一索引在远程往返前兜底并发，再跨网关创建chatroom。
// 事务跨网关往返持有，上界是网关客户端的固定超时。
func (s *Service) acceptRequest(ctx context.Context, request *model.FriendRequest, token string) (*model.Friendship, error) {
	var friendship *model.Friendship

	err := s.dao.Transaction(ctx, func(tx dao.FriendDAO) error {
		if err := tx.DeleteRequest(ctx, request.ID); err != nil {
			return err
		}

		created, err := tx.CreateFriendship(ctx, request.FromUserID, request.ToUserID)
		if err != nil {
			return err
		}

		chatroomID, err := s.chatroom.CreateChatroom(ctx, created.User1ID, created.User2ID, token)
		if err != nil {
			return err
		}

		if err := tx.SetFriendshipChatroom(ctx, created.ID, chatroomID); err != nil {
			return err
		}

		created.ChatroomID = &chatroomID
		friendship = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return friendship, nil
}

// GetReceivedRequests 获取收到的待处理申请
func (s *Service) GetReceivedRequests(ctx context.Context, userID int64) ([]*model.ReceivedRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "friend.service.GetReceivedRequests")
	defer span.End()

	span.SetAttributes(attribute.Int64("friend.user_id", userID))

	requests, err := s.dao.ListReceivedRequests(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list requests")
		return nil, err
	}

	senderIDs := make([]int64, 0, len(requests))
	for _, r := range requests {
		senderIDs = append(senderIDs, r.FromUserID)
	}
	senders, err := s.dao.GetUsersByIDs(ctx, senderIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load senders")
		return nil, err
	}

	result := make([]*model.ReceivedRequest, 0, len(requests))
	for _, r := range requests {
		sender, ok := senders[r.FromUserID]
		if !ok {
			// 发起人已注销，申请不再可处理
			continue
		}
		result = append(result, &model.ReceivedRequest{Request: r, FromUser: sender})
	}

	span.SetStatus(codes.Ok, "received requests loaded")
	return result, nil
}

// GetFriendsList 获取好友列表，含每个好友调用时点的在线状态
func (s *Service) GetFriendsList(ctx context.Context, userID int64) ([]*model.FriendEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "friend.service.GetFriendsList")
	defer span.End()

	span.SetAttributes(attribute.Int64("friend.user_id", userID))

	if _, err := s.dao.GetUser(ctx, userID); err != nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, errs.ErrFriendsListUnavailable.WithCause(err)
	}

	friendships, err := s.dao.ListFriendships(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list friendships")
		return nil, err
	}

	friendIDs := make([]int64, 0, len(friendships))
	for _, f := range friendships {
		friendIDs = append(friendIDs, otherParty(f, userID))
	}
	friends, err := s.dao.GetUsersByIDs(ctx, friendIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load friends")
		return nil, err
	}

	entries := make([]*model.FriendEntry, 0, len(friendships))
	for _, f := range friendships {
		friendID := otherParty(f, userID)
		friend, ok := friends[friendID]
		if !ok {
			continue
		}

		// 在线状态查不到按离线算，不影响列表本身
		online, err := s.presence.IsOnline(ctx, friendID)
		if err != nil {
			s.logger.Warn(ctx, "Failed to check presence",
				logger.F("friendID", friendID),
				logger.F("error", err.Error()))
			online = false
		}

		entries = append(entries, &model.FriendEntry{
			Friendship: f,
			Friend:     friend,
			IsOnline:   online,
		})
	}

	span.SetStatus(codes.Ok, "friends list loaded")
	return entries, nil
}

// DeleteFriend 删除好友
// 先拆chatroom再删关系行：远程资源清理失败时保留本地关系，等待重试，
// 避免产生无主chatroom
func (s *Service) DeleteFriend(ctx context.Context, userID, friendID int64, token string) error {
	ctx, span := telemetry.StartSpan(ctx, "friend.service.DeleteFriend")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("friend.user_id", userID),
		attribute.Int64("friend.friend_id", friendID),
	)

	if _, err := s.dao.GetUser(ctx, userID); err != nil {
		span.SetStatus(codes.Error, "user not found")
		return err
	}
	if _, err := s.dao.GetUser(ctx, friendID); err != nil {
		span.SetStatus(codes.Error, "friend not found")
		return err
	}

	friendship, err := s.dao.GetFriendship(ctx, userID, friendID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get friendship")
		return fmt.Errorf("failed to get friendship: %v", err)
	}
	if friendship == nil {
		span.SetStatus(codes.Error, "friendship not found")
		return errs.ErrFriendshipNotFound
	}

	if err := s.dissolveFriendship(ctx, friendship, token); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to dissolve friendship")
		return err
	}

	s.emitEvent(ctx, EventFriendDeleted, userID, friendID)
	s.logger.Info(ctx, "Friend deleted",
		logger.F("userID", userID),
		logger.F("friendID", friendID))

	span.SetStatus(codes.Ok, "friend deleted")
	return nil
}

// BlockFriend 拉黑用户
// 拉黑现任好友必须连带拆散好友关系和chatroom
func (s *Service) BlockFriend(ctx context.Context, userID, targetID int64, token string) error {
	ctx, span := telemetry.StartSpan(ctx, "friend.service.BlockFriend")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("friend.user_id", userID),
		attribute.Int64("friend.target_id", targetID),
	)

	if _, err := s.dao.GetUser(ctx, userID); err != nil {
		span.SetStatus(codes.Error, "user not found")
		return err
	}
	if _, err := s.dao.GetUser(ctx, targetID); err != nil {
		span.SetStatus(codes.Error, "target not found")
		return err
	}

	block := &model.Block{
		BlockerID: userID,
		BlockedID: targetID,
	}
	if err := s.dao.CreateBlock(ctx, block); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create block")
		return err
	}

	if err := s.dao.DeleteRequestsBetween(ctx, userID, targetID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to clean requests")
		return err
	}

	friendship, err := s.dao.GetFriendship(ctx, userID, targetID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get friendship")
		return fmt.Errorf("failed to get friendship: %v", err)
	}
	if friendship != nil {
		if err := s.dissolveFriendship(ctx, friendship, token); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to dissolve friendship")
			return err
		}
	}

	s.emitEvent(ctx, EventFriendBlocked, userID, targetID)
	s.logger.Info(ctx, "User blocked",
		logger.F("blockerID", userID),
		logger.F("blockedID", targetID))

	span.SetStatus(codes.Ok, "user blocked")
	return nil
}

// UnblockFriend 解除拉黑
// 只删指定方向的拉黑记录，不恢复拉黑时删掉的申请和好友关系
func (s *Service) UnblockFriend(ctx context.Context, userID, targetID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "friend.service.UnblockFriend")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("friend.user_id", userID),
		attribute.Int64("friend.target_id", targetID),
	)

	if err := s.dao.DeleteBlock(ctx, userID, targetID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete block")
		return err
	}

	s.emitEvent(ctx, EventFriendUnblocked, userID, targetID)
	s.logger.Info(ctx, "User unblocked",
		logger.F("blockerID", userID),
		logger.F("blockedID", targetID))

	span.SetStatus(codes.Ok, "user unblocked")
	return nil
}

// dissolveFriendship 拆散好友关系，先远程拆chatroom再删本地行
func (s *Service) dissolveFriendship(ctx context.Context, friendship *model.Friendship, token string) error {
	if err := s.dao.DeleteRequestsBetween(ctx, friendship.User1ID, friendship.User2ID); err != nil {
		return err
	}

	if friendship.ChatroomID != nil {
		if err := s.chatroom.DeleteChatroom(ctx, *friendship.ChatroomID, token); err != nil {
			return err
		}
	}

	return s.dao.DeleteFriendship(ctx, friendship.ID)
}

// notifyFriendRequest 尽力推送好友申请给在线的接收方
// 接收方不在线静默跳过，下次拉取待处理列表时自然看到
func (s *Service) notifyFriendRequest(ctx context.Context, request *model.FriendRequest, fromUser *model.User) {
	content, err := json.Marshal(map[string]interface{}{
		"id":         request.ID,
		"from_user":  fromUser.Nickname,
		"created_at": utils.FormatWireTime(request.CreatedAt),
	})
	if err != nil {
		s.logger.Warn(ctx, "Failed to marshal notification content",
			logger.F("requestID", request.ID),
			logger.F("error", err.Error()))
		return
	}

	delivered := s.notifier.TrySend(ctx, request.ToUserID, presence.Event{
		Type:    "friend.request",
		Content: content,
	})
	if delivered {
		s.logger.Info(ctx, "Friend request notification delivered",
			logger.F("requestID", request.ID),
			logger.F("toUserID", request.ToUserID))
	}
}

// otherParty 返回好友关系中userID的对端
func otherParty(f *model.Friendship, userID int64) int64 {
	if f.User1ID == userID {
		return f.User2ID
	}
	return f.User1ID
}
