package converter

import (
	"amity-social/apps/friend-service/model"
	"amity-social/pkg/utils"
)

// Converter 响应构造器
type Converter struct{}

// NewConverter 创建转换器
func NewConverter() *Converter {
	return &Converter{}
}

// BuildSendFriendRequestResponse 构造发送申请成功响应
func (c *Converter) BuildSendFriendRequestResponse(request *model.FriendRequest) *model.SendFriendRequestResponse {
	return &model.SendFriendRequestResponse{
		Success:   true,
		Message:   "Friend request sent",
		RequestID: request.ID,
	}
}

// BuildRespondResponse 构造申请处理响应
// accept时带回chatroom ID，reject时friendship为nil
func (c *Converter) BuildRespondResponse(friendship *model.Friendship, action string) *model.RespondFriendRequestResponse {
	resp := &model.RespondFriendRequestResponse{
		Success: true,
		Message: "Friend request " + action + "ed",
	}
	if friendship != nil {
		resp.ChatroomID = friendship.ChatroomID
	}
	return resp
}

// BuildReceivedRequestsResponse 构造收到的申请列表响应
func (c *Converter) BuildReceivedRequestsResponse(requests []*model.ReceivedRequest) *model.ReceivedRequestsResponse {
	infos := make([]*model.ReceivedRequestInfo, 0, len(requests))
	for _, r := range requests {
		infos = append(infos, &model.ReceivedRequestInfo{
			ID:           r.Request.ID,
			FromUserID:   r.FromUser.ID,
			FromNickname: r.FromUser.Nickname,
			CreatedAt:    utils.FormatWireTime(r.Request.CreatedAt),
		})
	}
	return &model.ReceivedRequestsResponse{
		Success:  true,
		Message:  "Received requests loaded",
		Requests: infos,
		Total:    int32(len(infos)),
	}
}

// BuildFriendsListResponse 构造好友列表响应
func (c *Converter) BuildFriendsListResponse(entries []*model.FriendEntry) *model.FriendsListResponse {
	infos := make([]*model.FriendInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, &model.FriendInfo{
			FriendID:   e.Friend.ID,
			Nickname:   e.Friend.Nickname,
			Avatar:     e.Friend.Avatar,
			ChatroomID: e.Friendship.ChatroomID,
			IsOnline:   e.IsOnline,
		})
	}
	return &model.FriendsListResponse{
		Success: true,
		Message: "Friends list loaded",
		Friends: infos,
		Total:   int32(len(infos)),
	}
}

// BuildGenericResponse 构造通用响应
func (c *Converter) BuildGenericResponse(success bool, message string) *model.GenericResponse {
	return &model.GenericResponse{Success: success, Message: message}
}
