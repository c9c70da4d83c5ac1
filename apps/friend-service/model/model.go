package model

import (
	"time"
)

// 好友申请状态
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// 申请处理动作
const (
	RespondActionAccept = "accept"
	RespondActionReject = "reject"
)

// FriendRequest 好友申请，有向边 from -> to
// 有向对唯一索引兜底并发重复发送，被处理的申请行会被删除所以不与重发冲突
type FriendRequest struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	FromUserID int64     `json:"from_user_id" gorm:"not null;uniqueIndex:idx_request_pair"`
	ToUserID   int64     `json:"to_user_id" gorm:"not null;uniqueIndex:idx_request_pair;index:idx_request_recipient"`
	Status     string    `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 表名
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// Friendship 好友关系，无向边按规范序存储
// User1ID恒小于User2ID，唯一索引保证每对用户至多一行
type Friendship struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	User1ID    int64     `json:"user1_id" gorm:"not null;uniqueIndex:idx_friendship_pair"`
	User2ID    int64     `json:"user2_id" gorm:"not null;uniqueIndex:idx_friendship_pair"`
	ChatroomID *int64    `json:"chatroom_id" gorm:"default:null"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 表名
func (Friendship) TableName() string {
	return "friendships"
}

// Block 拉黑关系，有向边 blocker -> blocked
// A拉黑B与B拉黑A是两条独立记录
type Block struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	BlockerID int64     `json:"blocker_id" gorm:"not null;uniqueIndex:idx_block_pair"`
	BlockedID int64     `json:"blocked_id" gorm:"not null;uniqueIndex:idx_block_pair"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 表名
func (Block) TableName() string {
	return "blocks"
}

// User 用户信息，只读映射到user-service维护的users表
type User struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// TableName 表名
func (User) TableName() string {
	return "users"
}

// ReceivedRequest 待处理申请及其发起人
type ReceivedRequest struct {
	Request  *FriendRequest
	FromUser *User
}

// FriendEntry 好友及调用时点查的在线状态
type FriendEntry struct {
	Friendship *Friendship
	Friend     *User
	IsOnline   bool
}

// SortPair 无向对的规范序，小ID在前
func SortPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
