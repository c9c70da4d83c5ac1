package model

// SendFriendRequestRequest 发送好友申请请求
type SendFriendRequestRequest struct {
	TargetNickname string `json:"target_nickname" binding:"required"`
}

// RespondFriendRequestRequest 处理好友申请请求
type RespondFriendRequestRequest struct {
	RequestID int64  `json:"request_id" binding:"required"`
	Action    string `json:"action" binding:"required"`
}

// DeleteFriendRequest 删除好友请求
type DeleteFriendRequest struct {
	FriendID int64 `json:"friend_id" binding:"required"`
}

// BlockFriendRequest 拉黑请求
type BlockFriendRequest struct {
	TargetID int64 `json:"target_id" binding:"required"`
}

// UnblockFriendRequest 解除拉黑请求
type UnblockFriendRequest struct {
	TargetID int64 `json:"target_id" binding:"required"`
}

// ReceivedRequestInfo 收到的好友申请
type ReceivedRequestInfo struct {
	ID           int64  `json:"id"`
	FromUserID   int64  `json:"from_user_id"`
	FromNickname string `json:"from_nickname"`
	CreatedAt    string `json:"created_at"`
}

// FriendInfo 好友信息
type FriendInfo struct {
	FriendID   int64  `json:"friend_id"`
	Nickname   string `json:"nickname"`
	Avatar     string `json:"avatar"`
	ChatroomID *int64 `json:"chatroom_id"`
	IsOnline   bool   `json:"is_online"`
}

// SendFriendRequestResponse 发送好友申请响应
type SendFriendRequestResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID int64  `json:"request_id,omitempty"`
}

// RespondFriendRequestResponse 处理好友申请响应
type RespondFriendRequestResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ChatroomID *int64 `json:"chatroom_id,omitempty"`
}

// ReceivedRequestsResponse 收到的好友申请列表响应
type ReceivedRequestsResponse struct {
	Success  bool                   `json:"success"`
	Message  string                 `json:"message"`
	Requests []*ReceivedRequestInfo `json:"requests"`
	Total    int32                  `json:"total"`
}

// FriendsListResponse 好友列表响应
type FriendsListResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Friends []*FriendInfo `json:"friends"`
	Total   int32         `json:"total"`
}

// GenericResponse 通用响应
type GenericResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
