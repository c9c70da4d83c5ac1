package dao

import (
	"context"

	"amity-social/apps/user-service/model"
)

// UserDAO 用户数据访问接口
type UserDAO interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, userID int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

// CodeStore 验证码存储接口
// 同一邮箱重新下发会覆盖旧码，旧码即刻作废
type CodeStore interface {
	SaveCode(ctx context.Context, email, code string) error
	GetCode(ctx context.Context, email string) (string, bool, error)
	DeleteCode(ctx context.Context, email string) error
}
