package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"amity-social/apps/user-service/dao"
	"amity-social/apps/user-service/model"
	"amity-social/pkg/auth"
	"amity-social/pkg/errs"
	"amity-social/pkg/logger"
	"amity-social/pkg/snowflake"
	"amity-social/pkg/telemetry"
	"amity-social/pkg/utils"
)

// UserEventsTopic 用户域事件主题
const UserEventsTopic = "user-events"

// codeCharset 验证码字符集，大写字母加数字
const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeLength 验证码长度
const codeLength = 6

// EventProducer 事件生产接口
type EventProducer interface {
	SendJSON(topic string, userID int64, event interface{}) error
}

// UserEvent 用户域事件
type UserEvent struct {
	Type      string `json:"type"`
	UserID    int64  `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
}

// Service 用户服务
type Service struct {
	dao       dao.UserDAO
	codes     dao.CodeStore
	mailer    Mailer
	producer  EventProducer
	jwtSecret string
	logger    logger.Logger
}

// NewService 创建用户服务实例
func NewService(userDAO dao.UserDAO, codes dao.CodeStore, mailer Mailer,
	producer EventProducer, jwtSecret string, log logger.Logger) *Service {
	return &Service{
		dao:       userDAO,
		codes:     codes,
		mailer:    mailer,
		producer:  producer,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// CheckNickname 检查昵称是否可用
func (s *Service) CheckNickname(ctx context.Context, nickname string) error {
	ctx, span := telemetry.StartSpan(ctx, "user.service.CheckNickname")
	defer span.End()

	existing, err := s.dao.GetUserByNickname(ctx, nickname)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check nickname")
		return err
	}
	if existing != nil {
		span.SetStatus(codes.Error, "nickname taken")
		return errs.ErrNicknameAlreadyExists
	}

	span.SetStatus(codes.Ok, "nickname available")
	return nil
}

// IssueEmailCode 下发邮箱验证码
// 重复下发覆盖旧码，旧码即刻作废
func (s *Service) IssueEmailCode(ctx context.Context, email string) error {
	ctx, span := telemetry.StartSpan(ctx, "user.service.IssueEmailCode")
	defer span.End()

	existing, err := s.dao.GetUserByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check email")
		return err
	}
	if existing != nil {
		span.SetStatus(codes.Error, "email taken")
		return errs.ErrEmailAlreadyExists
	}

	code, err := generateVerificationCode()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate code")
		return fmt.Errorf("failed to generate verification code: %v", err)
	}

	if err := s.codes.SaveCode(ctx, email, code); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save code")
		return err
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send code")
		return err
	}

	s.logger.Info(ctx, "Verification code sent", logger.F("email", email))
	span.SetStatus(codes.Ok, "verification code sent")
	return nil
}

// Register 注册新用户
// 验证码必须有效，密码bcrypt入库，注册成功后验证码立即消费
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "user.service.Register")
	defer span.End()

	span.SetAttributes(attribute.String("user.nickname", req.Nickname))

	if err := s.verifyEmailCode(ctx, req.Email, req.Code); err != nil {
		span.SetStatus(codes.Error, "code verification failed")
		return nil, err
	}

	existing, err := s.dao.GetUserByNickname(ctx, req.Nickname)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check nickname")
		return nil, err
	}
	if existing != nil {
		span.SetStatus(codes.Error, "nickname taken")
		return nil, errs.ErrNicknameAlreadyExists
	}

	existing, err = s.dao.GetUserByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check email")
		return nil, err
	}
	if existing != nil {
		span.SetStatus(codes.Error, "email taken")
		return nil, errs.ErrEmailAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &model.User{
		ID:       snowflake.GenerateID(),
		Email:    req.Email,
		Nickname: req.Nickname,
		Password: string(hashed),
	}
	if err := s.dao.CreateUser(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create user")
		return nil, err
	}

	// 验证码一次性消费，删除失败不影响注册结果
	if err := s.codes.DeleteCode(ctx, req.Email); err != nil {
		s.logger.Warn(ctx, "Failed to consume verification code",
			logger.F("email", req.Email),
			logger.F("error", err.Error()))
	}

	s.emitEvent(ctx, "user.registered", user.ID)
	s.logger.Info(ctx, "User registered",
		logger.F("userID", user.ID),
		logger.F("nickname", user.Nickname))

	span.SetStatus(codes.Ok, "user registered")
	return user, nil
}

// Login 登录并签发JWT
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	ctx, span := telemetry.StartSpan(ctx, "user.service.Login")
	defer span.End()

	user, err := s.dao.GetUserByEmail(ctx, email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get user")
		return nil, "", err
	}
	if user == nil {
		span.SetStatus(codes.Error, "unknown email")
		return nil, "", errs.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		span.SetStatus(codes.Error, "wrong password")
		return nil, "", errs.ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(user.ID, user.Nickname, s.jwtSecret, auth.DefaultExpire)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to sign token")
		return nil, "", fmt.Errorf("failed to sign token: %v", err)
	}

	s.logger.Info(ctx, "User logged in", logger.F("userID", user.ID))
	span.SetStatus(codes.Ok, "login succeeded")
	return user, token, nil
}

// GetProfile 获取用户资料
func (s *Service) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "user.service.GetProfile")
	defer span.End()

	span.SetAttributes(attribute.Int64("user.id", userID))

	user, err := s.dao.GetUserByID(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, err
	}

	span.SetStatus(codes.Ok, "profile loaded")
	return user, nil
}

// UpdateProfile 更新用户资料，昵称变更时校验唯一性
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req *model.UpdateProfileRequest) (*model.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "user.service.UpdateProfile")
	defer span.End()

	span.SetAttributes(attribute.Int64("user.id", userID))

	user, err := s.dao.GetUserByID(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, "user not found")
		return nil, err
	}

	if req.Nickname != "" && req.Nickname != user.Nickname {
		existing, err := s.dao.GetUserByNickname(ctx, req.Nickname)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to check nickname")
			return nil, err
		}
		if existing != nil {
			span.SetStatus(codes.Error, "nickname taken")
			return nil, errs.ErrNicknameAlreadyExists
		}
		user.Nickname = req.Nickname
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}

	if err := s.dao.UpdateUser(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update user")
		return nil, err
	}

	s.logger.Info(ctx, "Profile updated", logger.F("userID", userID))
	span.SetStatus(codes.Ok, "profile updated")
	return user, nil
}

// verifyEmailCode 校验注册验证码
func (s *Service) verifyEmailCode(ctx context.Context, email, code string) error {
	stored, ok, err := s.codes.GetCode(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrVerificationCodeExpired
	}
	if stored != code {
		return errs.ErrInvalidVerificationCode
	}
	return nil
}

// emitEvent 发布用户域事件，失败只记日志
func (s *Service) emitEvent(ctx context.Context, eventType string, userID int64) {
	if s.producer == nil {
		return
	}
	event := &UserEvent{
		Type:      eventType,
		UserID:    userID,
		Timestamp: utils.GetCurrentTimestampMs(),
	}
	if err := s.producer.SendJSON(UserEventsTopic, userID, event); err != nil {
		s.logger.Warn(ctx, "Failed to emit user event",
			logger.F("eventType", eventType),
			logger.F("userID", userID),
			logger.F("error", err.Error()))
	}
}

// generateVerificationCode 生成6位大写字母加数字的验证码
func generateVerificationCode() (string, error) {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeCharset[n.Int64()]
	}
	return string(buf), nil
}
