package handler

import (
	"github.com/gin-gonic/gin"

	"amity-social/apps/friend-service/model"
	"amity-social/pkg/errs"
	"amity-social/pkg/httpx"
	"amity-social/pkg/logger"
	"amity-social/pkg/middleware"
)

// SendFriendRequest 发送好友申请
func (h *HTTPHandler) SendFriendRequest(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req model.SendFriendRequestRequest
	)

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error(ctx, "Invalid send friend request", logger.F("error", err.Error()))
		httpx.WriteError(c, errs.ErrValidation)
		return
	}

	callerID := middleware.CallerID(c)
	request, err := h.svc.SendFriendRequest(ctx, callerID, req.TargetNickname)
	if err != nil {
		h.logger.Error(ctx, "Send friend request failed",
			logger.F("error", err.Error()),
			logger.F("callerID", callerID),
			logger.F("targetNickname", req.TargetNickname))
		httpx.WriteError(c, err)
		return
	}

	httpx.WriteObject(c, h.converter.BuildSendFriendRequestResponse(request), nil)
}

// RespondToFriendRequest 处理好友申请
func (h *HTTPHandler) RespondToFriendRequest(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req model.RespondFriendRequestRequest
	)

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error(ctx, "Invalid respond request", logger.F("error", err.Error()))
		httpx.WriteError(c, errs.ErrValidation)
		return
	}

	callerID := middleware.CallerID(c)
	friendship, err := h.svc.RespondToFriendRequest(ctx, callerID, req.RequestID, req.Action, middleware.CallerToken(c))
	if err != nil {
		h.logger.Error(ctx, "Respond to friend request failed",
			logger.F("error", err.Error()),
			logger.F("callerID", callerID),
			logger.F("requestID", req.RequestID),
			logger.F("action", req.Action))
		httpx.WriteError(c, err)
		return
	}

	httpx.WriteObject(c, h.converter.BuildRespondResponse(friendship, req.Action), nil)
}

// GetReceivedRequests 获取收到的好友申请列表
func (h *HTTPHandler) GetReceivedRequests(c *gin.Context) {
	ctx := c.Request.Context()
	callerID := middleware.CallerID(c)

	requests, err := h.svc.GetReceivedRequests(ctx, callerID)
	if err != nil {
		h.logger.Error(ctx, "Get received requests failed",
			logger.F("error", err.Error()),
			logger.F("callerID", callerID))
		httpx.WriteError(c, err)
		return
	}

	httpx.WriteObject(c, h.converter.BuildReceivedRequestsResponse(requests), nil)
}

// GetFriendsList 获取好友列表
func (h *HTTPHandler) GetFriendsList(c *gin.Context) {
	ctx := c.Request.Context()
	callerID := middleware.CallerID(c)

	entries, err := h.svc.GetFriendsList(ctx, callerID)
	if err != nil {
		h.logger.Error(ctx, "Get friends list failed",
			logger.F("error", err.Error()),
			logger.F("callerID", callerID))
		httpx.WriteError(c, err)
		return
	}

	httpx.WriteObject(c, h.converter.BuildFriendsListResponse(entries), nil)
}

// DeleteFriend 删除好友
func (h *HTTPHandler) DeleteFriend(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req model.DeleteFriendRequest
	)

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error(ctx, "Invalid delete friend request", logger.F("error", err.Error()))
		httpx.WriteError(c, errs.ErrValidation)
		return
	}

	callerID := middleware.CallerID(c)
	if err := h.svc.DeleteFriend(ctx, callerID, req.FriendID, middleware.CallerToken(c)); err != nil {
		h.logger.Error(ctx, "Delete friend failed",
			logger.F("error", err.Error()),
			logger.F("callerID", callerID),
			logger.F("friendID", req.FriendID))
		httpx.WriteError(c, err)
		return
	}

	httpx.WriteObject(c, h.converter.BuildGenericResponse(true, "Friend deleted"), nil)
}

// BlockFriend 拉黑用户
func (h *HTTPHandler) BlockFriend(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req model.BlockFriendRequest
	)

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error(ctx, "Invalid block friend request", logger.F("error", err.Error()))
		httpx.WriteError(c, errs.ErrValidation)
		return
	}

	callerID := middleware.CallerID(c)
	if err := h.svc.BlockFriend(ctx, callerID, req.TargetID, middleware.CallerToken(c)); err != nil {
		h.logger.Error(ctx, "Block friend failed",
			logger.F("error", err.Error()),
			logger.F("callerID", callerID),
			logger.F("targetID", req.TargetID))
		httpx.WriteError(c, err)
		return
	}

	httpx.WriteObject(c, h.converter.BuildGenericResponse(true, "User blocked"), nil)
}

// UnblockFriend 解除拉黑
func (h *HTTPHandler) UnblockFriend(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req model.UnblockFriendRequest
	)

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error(ctx, "Invalid unblock friend request", logger.F("error", err.Error()))
		httpx.WriteError(c, errs.ErrValidation)
		return
	}

	callerID := middleware.CallerID(c)
	if err := h.svc.UnblockFriend(ctx, callerID, req.TargetID); err != nil {
		h.logger.Error(ctx, "Unblock friend failed",
			logger.F("error", err.Error()),
			logger.F("callerID", callerID),
			logger.F("targetID", req.TargetID))
		httpx.WriteError(c, err)
		return
	}

	httpx.WriteObject(c, h.converter.BuildGenericResponse(true, "User unblocked"), nil)
}
