package dao

import (
	"context"

	"amity-social/apps/friend-service/model"
)

// FriendDAO 好友域数据访问接口
// 所有双人查询都走规范序或双向条件，调用方不关心存储方向
type FriendDAO interface {
	// 用户（users表只读）
	GetUser(ctx context.Context, userID int64) (*model.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*model.User, error)
	GetUsersByIDs(ctx context.Context, userIDs []int64) (map[int64]*model.User, error)

	// 好友申请
	CreateRequest(ctx context.Context, request *model.FriendRequest) error
	GetPendingRequest(ctx context.Context, userA, userB int64) (*model.FriendRequest, error)
	GetPendingRequestByID(ctx context.Context, requestID int64) (*model.FriendRequest, error)
	ListReceivedRequests(ctx context.Context, userID int64) ([]*model.FriendRequest, error)
	UpdateRequestStatus(ctx context.Context, requestID int64, status string) error
	DeleteRequest(ctx context.Context, requestID int64) error
	DeleteRequestsBetween(ctx context.Context, userA, userB int64) error

	// 好友关系
	CreateFriendship(ctx context.Context, userA, userB int64) (*model.Friendship, error)
	GetFriendship(ctx context.Context, userA, userB int64) (*model.Friendship, error)
	ListFriendships(ctx context.Context, userID int64) ([]*model.Friendship, error)
	SetFriendshipChatroom(ctx context.Context, friendshipID, chatroomID int64) error
	DeleteFriendship(ctx context.Context, friendshipID int64) error

	// 拉黑
	CreateBlock(ctx context.Context, block *model.Block) error
	HasBlock(ctx context.Context, userA, userB int64) (bool, error)
	DeleteBlock(ctx context.Context, blockerID, blockedID int64) error

	// Transaction 在一个数据库事务内执行fn，fn返回错误时整体回滚
	Transaction(ctx context.Context, fn func(txDAO FriendDAO) error) error
}
