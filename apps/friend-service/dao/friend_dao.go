package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"amity-social/apps/friend-service/model"
	"amity-social/pkg/database"
	"amity-social/pkg/errs"
)

// friendDAO 好友域数据访问对象
type friendDAO struct {
	db *gorm.DB
}

// NewFriendDAO 创建好友DAO实例
func NewFriendDAO(db *database.PostgreSQL) FriendDAO {
	return &friendDAO{db: db.GetDB()}
}

// NewFriendDAOFromDB 基于已有GORM连接创建好友DAO实例
func NewFriendDAOFromDB(db *gorm.DB) FriendDAO {
	return &friendDAO{db: db}
}

// ============ 用户 ============

// GetUser 按ID获取用户
func (d *friendDAO) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	if err := d.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return &user, nil
}

// GetUserByNickname 按昵称获取用户
func (d *friendDAO) GetUserByNickname(ctx context.Context, nickname string) (*model.User, error) {
	var user model.User
	if err := d.db.WithContext(ctx).Where("nickname = ?", nickname).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by nickname: %v", err)
	}
	return &user, nil
}

// GetUsersByIDs 批量获取用户，返回ID到用户的映射
func (d *friendDAO) GetUsersByIDs(ctx context.Context, userIDs []int64) (map[int64]*model.User, error) {
	if len(userIDs) == 0 {
		return map[int64]*model.User{}, nil
	}
	var users []*model.User
	if err := d.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %v", err)
	}
	result := make(map[int64]*model.User, len(users))
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

// ============ 好友申请 ============

// CreateRequest 创建好友申请
func (d *friendDAO) CreateRequest(ctx context.Context, request *model.FriendRequest) error {
	if err := d.db.WithContext(ctx).Create(request).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.ErrFriendRequestAlreadyExists.WithCause(err)
		}
		return fmt.Errorf("failed to create friend request: %v", err)
	}
	return nil
}

// GetPendingRequest 查找两人之间任一方向的待处理申请
func (d *friendDAO) GetPendingRequest(ctx context.Context, userA, userB int64) (*model.FriendRequest, error) {
	var request model.FriendRequest
	err := d.db.WithContext(ctx).
		Where("status = ?", model.RequestStatusPending).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending request: %v", err)
	}
	return &request, nil
}

// GetPendingRequestByID 按ID查找待处理申请
// 已被处理或不存在的申请一律视为不存在
func (d *friendDAO) GetPendingRequestByID(ctx context.Context, requestID int64) (*model.FriendRequest, error) {
	var request model.FriendRequest
	err := d.db.WithContext(ctx).
		Where("id = ? AND status = ?", requestID, model.RequestStatusPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending request by id: %v", err)
	}
	return &request, nil
}

// ListReceivedRequests 获取用户收到的待处理申请，按时间倒序
func (d *friendDAO) ListReceivedRequests(ctx context.Context, userID int64) ([]*model.FriendRequest, error) {
	var requests []*model.FriendRequest
	err := d.db.WithContext(ctx).
		Where("to_user_id = ? AND status = ?", userID, model.RequestStatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list received requests: %v", err)
	}
	return requests, nil
}

// UpdateRequestStatus 更新申请状态
func (d *friendDAO) UpdateRequestStatus(ctx context.Context, requestID int64, status string) error {
	err := d.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("id = ?", requestID).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to update request status: %v", err)
	}
	return nil
}

// DeleteRequest 删除申请
// 拒绝和接受都走这里：被拒绝的申请不留历史，接受后好友关系行是唯一凭证
func (d *friendDAO) DeleteRequest(ctx context.Context, requestID int64) error {
	if err := d.db.WithContext(ctx).Delete(&model.FriendRequest{}, requestID).Error; err != nil {
		return fmt.Errorf("failed to delete friend request: %v", err)
	}
	return nil
}

// DeleteRequestsBetween 删除两人之间任一方向的所有申请
func (d *friendDAO) DeleteRequestsBetween(ctx context.Context, userA, userB int64) error {
	err := d.db.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		Delete(&model.FriendRequest{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete requests between users: %v", err)
	}
	return nil
}

// ============ 好友关系 ============

// CreateFriendship 创建好友关系，入库前做规范序
// 唯一索引兜底并发：重复插入翻译为已是好友冲突
func (d *friendDAO) CreateFriendship(ctx context.Context, userA, userB int64) (*model.Friendship, error) {
	user1, user2 := model.SortPair(userA, userB)
	friendship := &model.Friendship{
		User1ID: user1,
		User2ID: user2,
	}
	if err := d.db.WithContext(ctx).Create(friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.ErrAlreadyFriends.WithCause(err)
		}
		return nil, fmt.Errorf("failed to create friendship: %v", err)
	}
	return friendship, nil
}

// GetFriendship 按规范序查找两人的好友关系
func (d *friendDAO) GetFriendship(ctx context.Context, userA, userB int64) (*model.Friendship, error) {
	user1, user2 := model.SortPair(userA, userB)
	var friendship model.Friendship
	err := d.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", user1, user2).
		First(&friendship).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friendship: %v", err)
	}
	return &friendship, nil
}

// ListFriendships 获取用户的全部好友关系
func (d *friendDAO) ListFriendships(ctx context.Context, userID int64) ([]*model.Friendship, error) {
	var friendships []*model.Friendship
	err := d.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&friendships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %v", err)
	}
	return friendships, nil
}

// SetFriendshipChatroom 回填chatroom ID
func (d *friendDAO) SetFriendshipChatroom(ctx context.Context, friendshipID, chatroomID int64) error {
	err := d.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("id = ?", friendshipID).
		Update("chatroom_id", chatroomID).Error
	if err != nil {
		return fmt.Errorf("failed to set friendship chatroom: %v", err)
	}
	return nil
}

// DeleteFriendship 删除好友关系
func (d *friendDAO) DeleteFriendship(ctx context.Context, friendshipID int64) error {
	if err := d.db.WithContext(ctx).Delete(&model.Friendship{}, friendshipID).Error; err != nil {
		return fmt.Errorf("failed to delete friendship: %v", err)
	}
	return nil
}

// ============ 拉黑 ============

// CreateBlock 创建拉黑记录，有序对唯一
func (d *friendDAO) CreateBlock(ctx context.Context, block *model.Block) error {
	if err := d.db.WithContext(ctx).Create(block).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.ErrBlockAlreadyExists.WithCause(err)
		}
		return fmt.Errorf("failed to create block: %v", err)
	}
	return nil
}

// HasBlock 检查两人之间任一方向是否存在拉黑
func (d *friendDAO) HasBlock(ctx context.Context, userA, userB int64) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check block: %v", err)
	}
	return count > 0, nil
}

// DeleteBlock 删除指定方向的拉黑记录，不存在时报BLOCK_NOT_FOUND
func (d *friendDAO) DeleteBlock(ctx context.Context, blockerID, blockedID int64) error {
	result := d.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&model.Block{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete block: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrBlockNotFound
	}
	return nil
}

// Transaction 在一个事务内执行fn
func (d *friendDAO) Transaction(ctx context.Context, fn func(txDAO FriendDAO) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&friendDAO{db: tx})
	})
}
