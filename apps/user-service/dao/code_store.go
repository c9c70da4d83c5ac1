package dao

import (
	"context"
	"fmt"
	"time"

	"amity-social/pkg/redis"
)

const (
	codeKeyPrefix = "email_code:"

	// codeExpire 验证码有效期，过期由Redis TTL自然淘汰
	codeExpire = 5 * time.Minute
)

// codeStore 基于Redis的验证码存储
type codeStore struct {
	redis *redis.RedisClient
}

// NewCodeStore 创建验证码存储
func NewCodeStore(redisClient *redis.RedisClient) CodeStore {
	return &codeStore{redis: redisClient}
}

// SaveCode 保存验证码，覆盖同邮箱的旧码
func (s *codeStore) SaveCode(ctx context.Context, email, code string) error {
	if err := s.redis.Set(ctx, codeKey(email), code, codeExpire); err != nil {
		return fmt.Errorf("failed to save verification code: %v", err)
	}
	return nil
}

// GetCode 读取验证码，过期或从未下发时ok为false
func (s *codeStore) GetCode(ctx context.Context, email string) (string, bool, error) {
	code, err := s.redis.Get(ctx, codeKey(email))
	if err != nil {
		if redis.IsNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get verification code: %v", err)
	}
	return code, true, nil
}

// DeleteCode 删除已消费的验证码
func (s *codeStore) DeleteCode(ctx context.Context, email string) error {
	if err := s.redis.Del(ctx, codeKey(email)); err != nil {
		return fmt.Errorf("failed to delete verification code: %v", err)
	}
	return nil
}

func codeKey(email string) string {
	return codeKeyPrefix + email
}
