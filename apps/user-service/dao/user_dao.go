package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"amity-social/apps/user-service/model"
	"amity-social/pkg/database"
	"amity-social/pkg/errs"
)

// userDAO 用户数据访问对象
type userDAO struct {
	db *gorm.DB
}

// NewUserDAO 创建用户DAO实例
func NewUserDAO(db *database.PostgreSQL) UserDAO {
	return &userDAO{db: db.GetDB()}
}

// NewUserDAOFromDB 基于已有GORM连接创建用户DAO实例
func NewUserDAOFromDB(db *gorm.DB) UserDAO {
	return &userDAO{db: db}
}

// CreateUser 创建用户
// service层先查重，唯一索引兜底并发注册
func (d *userDAO) CreateUser(ctx context.Context, user *model.User) error {
	if err := d.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.ErrEmailAlreadyExists.WithCause(err)
		}
		return fmt.Errorf("failed to create user: %v", err)
	}
	return nil
}

// GetUserByID 按ID获取用户
func (d *userDAO) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	if err := d.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %v", err)
	}
	return &user, nil
}

// GetUserByEmail 按邮箱获取用户，不存在时返回nil
func (d *userDAO) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := d.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %v", err)
	}
	return &user, nil
}

// GetUserByNickname 按昵称获取用户，不存在时返回nil
func (d *userDAO) GetUserByNickname(ctx context.Context, nickname string) (*model.User, error) {
	var user model.User
	if err := d.db.WithContext(ctx).Where("nickname = ?", nickname).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by nickname: %v", err)
	}
	return &user, nil
}

// UpdateUser 更新用户
func (d *userDAO) UpdateUser(ctx context.Context, user *model.User) error {
	if err := d.db.WithContext(ctx).Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.ErrNicknameAlreadyExists.WithCause(err)
		}
		return fmt.Errorf("failed to update user: %v", err)
	}
	return nil
}
