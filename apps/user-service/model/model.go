package model

import (
	"time"
)

// User 用户账号
// ID由snowflake生成，email和nickname全局唯一
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Nickname  string    `json:"nickname" gorm:"type:varchar(30);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	Avatar    string    `json:"avatar" gorm:"type:varchar(500)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 表名
func (User) TableName() string {
	return "users"
}

// NicknameCheckRequest 昵称可用性检查请求
type NicknameCheckRequest struct {
	Nickname string `json:"nickname" binding:"required,max=30"`
}

// EmailCodeRequest 验证码下发请求
type EmailCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Nickname string `json:"nickname" binding:"required,max=30"`
	Password string `json:"password" binding:"required,min=8"`
	Code     string `json:"code" binding:"required,len=6"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest 资料更新请求
type UpdateProfileRequest struct {
	Nickname string `json:"nickname" binding:"omitempty,max=30"`
	Avatar   string `json:"avatar" binding:"omitempty,max=500"`
}

// UserProfile 对外的用户资料
type UserProfile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// GenericResponse 通用响应
type GenericResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *UserProfile `json:"user"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *UserProfile `json:"user"`
}

// ProfileResponse 资料响应
type ProfileResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *UserProfile `json:"user"`
}

// NewUserProfile 从用户行构造对外资料
func NewUserProfile(user *User) *UserProfile {
	return &UserProfile{
		ID:       user.ID,
		Email:    user.Email,
		Nickname: user.Nickname,
		Avatar:   user.Avatar,
	}
}
