package handler

import (
	"github.com/gin-gonic/gin"

	"amity-social/apps/user-service/model"
	"amity-social/pkg/errs"
	"amity-social/pkg/httpx"
	"amity-social/pkg/logger"
	"amity-social/pkg/middleware"
)

// CheckNickname 检查昵称可用性
func (h *HTTPHandler) CheckNickname(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req model.NicknameCheckRequest
	)

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error(ctx, "Invalid nickname check request", logger.F("error", err.Error()))
		httpx.WriteError(c, errs.ErrValidation)
		return
	}

	if err := h.svc.CheckNickname(ctx, req.Nickname); err != nil {
		httpx.WriteError(c, err)
		return
	}

	httpx.WriteObject(c, &model.GenericResponse{Success: true, Message: "Nickname available"}, nil)
}

// IssueEmailCode 下发邮箱验证码
func (h *HTTPHandler) IssueEmailCode(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req model.EmailCodeRequest
	)

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error(ctx, "Invalid email code request", logger.F("error", err.Error()))
		httpx.WriteError(c, errs.ErrValidation)
		return
	}

	if err := h.svc.IssueEmailCode(ctx, req.Email); err != nil {
		h.logger.Error(ctx, "Issue email code failed",
			logger.F("error", err.Error()),
			logger.F("email", req.Email))
		httpx.WriteError(c, err)
		return
	}

	httpx.WriteObject(c, &model.GenericResponse{Success: true, Message: "Verification code sent"}, nil)
}

// Register 注册
func (h *HTTPHandler) Register(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req model.RegisterRequest
	)

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error(ctx, "Invalid register request", logger.F("error", err.Error()))
		httpx.WriteError(c, errs.ErrValidation)
		return
	}

	user, err := h.svc.Register(ctx, &req)
	if err != nil {
		h.logger.Error(ctx, "Register failed",
			logger.F("error", err.Error()),
			logger.F("email", req.Email))
		httpx.WriteError(c, err)
		return
	}

	c.JSON(201, &model.RegisterResponse{
		Success: true,
		Message: "User registered",
		User:    model.NewUserProfile(user),
	})
}

// Login 登录
func (h *HTTPHandler) Login(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req model.LoginRequest
	)

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error(ctx, "Invalid login request", logger.F("error", err.Error()))
		httpx.WriteError(c, errs.ErrValidation)
		return
	}

	user, token, err := h.svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Error(ctx, "Login failed",
			logger.F("error", err.Error()),
			logger.F("email", req.Email))
		httpx.WriteError(c, err)
		return
	}

	httpx.WriteObject(c, &model.LoginResponse{
		Success: true,
		Message: "Login succeeded",
		Token:   token,
		User:    model.NewUserProfile(user),
	}, nil)
}

// GetProfile 获取当前用户资料
func (h *HTTPHandler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	callerID := middleware.CallerID(c)

	user, err := h.svc.GetProfile(ctx, callerID)
	if err != nil {
		h.logger.Error(ctx, "Get profile failed",
			logger.F("error", err.Error()),
			logger.F("callerID", callerID))
		httpx.WriteError(c, err)
		return
	}

	httpx.WriteObject(c, &model.ProfileResponse{
		Success: true,
		Message: "Profile loaded",
		User:    model.NewUserProfile(user),
	}, nil)
}

// UpdateProfile 更新当前用户资料
func (h *HTTPHandler) UpdateProfile(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req model.UpdateProfileRequest
	)

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error(ctx, "Invalid update profile request", logger.F("error", err.Error()))
		httpx.WriteError(c, errs.ErrValidation)
		return
	}

	callerID := middleware.CallerID(c)
	user, err := h.svc.UpdateProfile(ctx, callerID, &req)
	if err != nil {
		h.logger.Error(ctx, "Update profile failed",
			logger.F("error", err.Error()),
			logger.F("callerID", callerID))
		httpx.WriteError(c, err)
		return
	}

	httpx.WriteObject(c, &model.ProfileResponse{
		Success: true,
		Message: "Profile updated",
		User:    model.NewUserProfile(user),
	}, nil)
}
