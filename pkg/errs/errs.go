package errs

import (
	"errors"
	"net/http"
)

// Error 领域错误
// 每个错误携带固定的HTTP状态码和对外消息，内部细节不透出
type Error struct {
	Kind    string `json:"kind"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	cause   error
}

// Error 实现error接口
func (e *Error) Error() string {
	return e.Message
}

// Unwrap 返回底层原因
func (e *Error) Unwrap() error {
	return e.cause
}

// Is 按Kind匹配，支持errors.Is(err, errs.ErrXxx)
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// WithCause 附加底层原因，保留Kind/Status/Message
func (e *Error) WithCause(cause error) *Error {
	return &Error{Kind: e.Kind, Status: e.Status, Message: e.Message, cause: cause}
}

// New 创建领域错误
func New(kind string, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

// 用户
var (
	ErrNicknameAlreadyExists   = New("NICKNAME_ALREADY_EXISTS", http.StatusConflict, "This nickname is already in use.")
	ErrEmailAlreadyExists      = New("EMAIL_ALREADY_EXISTS", http.StatusConflict, "This email is already in use.")
	ErrInvalidVerificationCode = New("INVALID_VERIFICATION_CODE", http.StatusBadRequest, "Invalid verification code.")
	ErrVerificationCodeExpired = New("VERIFICATION_CODE_EXPIRED", http.StatusBadRequest, "The verification code has expired.")
	ErrInvalidCredentials      = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "Invalid credentials.")
	ErrUserNotFound            = New("USER_NOT_FOUND", http.StatusNotFound, "User not found.")
)

// 通用
var (
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "One or more fields failed validation. Please check the input values.")
)

// 好友
var (
	ErrFriendRequestAlreadyExists = New("FRIEND_REQUEST_ALREADY_EXISTS", http.StatusConflict, "Friend request already exists or received.")
	ErrSelfFriendRequest          = New("SELF_FRIEND_REQUEST", http.StatusBadRequest, "You cannot send a friend request to yourself.")
	ErrAlreadyFriends             = New("ALREADY_FRIENDS", http.StatusConflict, "You are already friends.")
	ErrFriendRequestNotFound      = New("FRIEND_REQUEST_NOT_FOUND", http.StatusNotFound, "Friend request not found.")
	ErrFriendRequestBlocked       = New("FRIEND_REQUEST_BLOCKED", http.StatusForbidden, "Friend request blocked due to existing block relationship.")
	ErrChatroomCreationFailed     = New("CHATROOM_CREATION_FAILED", http.StatusInternalServerError, "Failed to create a chatroom.")
	ErrChatroomDeletionFailed     = New("CHATROOM_DELETION_FAILED", http.StatusInternalServerError, "Failed to delete the chatroom.")
	ErrFriendshipNotFound         = New("FRIENDSHIP_NOT_FOUND", http.StatusNotFound, "Friendship not found.")
	ErrFriendsListUnavailable     = New("FRIENDS_LIST_UNAVAILABLE", http.StatusNotFound, "Friends list is not initialized or unavailable.")
	ErrBlockAlreadyExists         = New("BLOCK_ALREADY_EXISTS", http.StatusConflict, "Block relationship already exists.")
	ErrBlockNotFound              = New("BLOCK_NOT_FOUND", http.StatusNotFound, "Block relationship not found.")
)

// From 提取领域错误
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf 返回错误对应的HTTP状态码，非领域错误按500处理
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if e, ok := From(err); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}
