package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"amity-social/apps/user-service/dao"
	"amity-social/apps/user-service/model"
	"amity-social/pkg/auth"
	"amity-social/pkg/errs"
	"amity-social/pkg/logger"
	"amity-social/pkg/snowflake"
)

const testJWTSecret = "test-secret"

// fakeCodeStore 内存验证码存储
type fakeCodeStore struct {
	codes map[string]string
}

func (s *fakeCodeStore) SaveCode(ctx context.Context, email, code string) error {
	s.codes[email] = code
	return nil
}

func (s *fakeCodeStore) GetCode(ctx context.Context, email string) (string, bool, error) {
	code, ok := s.codes[email]
	return code, ok, nil
}

func (s *fakeCodeStore) DeleteCode(ctx context.Context, email string) error {
	delete(s.codes, email)
	return nil
}

// fakeMailer 记录发出的验证码
type fakeMailer struct {
	sentTo    []string
	sentCodes []string
}

func (m *fakeMailer) SendVerificationCode(ctx context.Context, toEmail, code string) error {
	m.sentTo = append(m.sentTo, toEmail)
	m.sentCodes = append(m.sentCodes, code)
	return nil
}

type userTestEnv struct {
	db     *gorm.DB
	svc    *Service
	codes  *fakeCodeStore
	mailer *fakeMailer
}

func newUserTestEnv(t *testing.T) *userTestEnv {
	t.Helper()

	if err := snowflake.InitGlobal(1); err != nil {
		t.Fatalf("init snowflake: %v", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	codes := &fakeCodeStore{codes: map[string]string{}}
	mailer := &fakeMailer{}
	svc := NewService(dao.NewUserDAOFromDB(db), codes, mailer, nil, testJWTSecret, logger.GetLogger())

	return &userTestEnv{db: db, svc: svc, codes: codes, mailer: mailer}
}

func (e *userTestEnv) register(t *testing.T, email, nickname string) *model.User {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.svc.IssueEmailCode(ctx, email))
	user, err := e.svc.Register(ctx, &model.RegisterRequest{
		Email:    email,
		Nickname: nickname,
		Password: "s3cretpass",
		Code:     e.codes.codes[email],
	})
	require.NoError(t, err)
	return user
}

func TestIssueEmailCode(t *testing.T) {
	env := newUserTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.IssueEmailCode(ctx, "alice@example.com"))
	require.Equal(t, []string{"alice@example.com"}, env.mailer.sentTo)

	code := env.codes.codes["alice@example.com"]
	require.Len(t, code, 6)

	// 重新下发覆盖旧码
	require.NoError(t, env.svc.IssueEmailCode(ctx, "alice@example.com"))
	require.Len(t, env.mailer.sentCodes, 2)
}

func TestIssueEmailCodeTakenEmail(t *testing.T) {
	env := newUserTestEnv(t)
	env.register(t, "alice@example.com", "alice")

	err := env.svc.IssueEmailCode(context.Background(), "alice@example.com")
	require.ErrorIs(t, err, errs.ErrEmailAlreadyExists)
}

func TestRegister(t *testing.T) {
	env := newUserTestEnv(t)
	user := env.register(t, "alice@example.com", "alice")

	require.NotZero(t, user.ID)
	require.Equal(t, "alice", user.Nickname)

	// 密码bcrypt入库
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cretpass")))

	// 验证码一次性消费
	_, ok := env.codes.codes["alice@example.com"]
	require.False(t, ok)
}

func TestRegisterWrongCode(t *testing.T) {
	env := newUserTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.svc.IssueEmailCode(ctx, "alice@example.com"))

	_, err := env.svc.Register(ctx, &model.RegisterRequest{
		Email:    "alice@example.com",
		Nickname: "alice",
		Password: "s3cretpass",
		Code:     "WRONG1",
	})
	require.ErrorIs(t, err, errs.ErrInvalidVerificationCode)
}

func TestRegisterExpiredCode(t *testing.T) {
	env := newUserTestEnv(t)

	// 从未下发等价于已过期
	_, err := env.svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "alice@example.com",
		Nickname: "alice",
		Password: "s3cretpass",
		Code:     "ABC123",
	})
	require.ErrorIs(t, err, errs.ErrVerificationCodeExpired)
}

func TestRegisterNicknameTaken(t *testing.T) {
	env := newUserTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice@example.com", "alice")

	require.NoError(t, env.svc.IssueEmailCode(ctx, "bob@example.com"))
	_, err := env.svc.Register(ctx, &model.RegisterRequest{
		Email:    "bob@example.com",
		Nickname: "alice",
		Password: "s3cretpass",
		Code:     env.codes.codes["bob@example.com"],
	})
	require.ErrorIs(t, err, errs.ErrNicknameAlreadyExists)
}

func TestCheckNickname(t *testing.T) {
	env := newUserTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.CheckNickname(ctx, "alice"))

	env.register(t, "alice@example.com", "alice")
	err := env.svc.CheckNickname(ctx, "alice")
	require.ErrorIs(t, err, errs.ErrNicknameAlreadyExists)
}

func TestLogin(t *testing.T) {
	env := newUserTestEnv(t)
	ctx := context.Background()
	registered := env.register(t, "alice@example.com", "alice")

	user, token, err := env.svc.Login(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)

	claims, err := auth.ValidateJWT(token, testJWTSecret)
	require.NoError(t, err)
	require.Equal(t, registered.ID, claims.UserID)
	require.Equal(t, "alice", claims.Nickname)
}

func TestLoginBadCredentials(t *testing.T) {
	env := newUserTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice@example.com", "alice")

	_, _, err := env.svc.Login(ctx, "alice@example.com", "wrongpass")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)

	_, _, err = env.svc.Login(ctx, "ghost@example.com", "s3cretpass")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	env := newUserTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "alice@example.com", "alice")
	env.register(t, "bob@example.com", "bob")

	updated, err := env.svc.UpdateProfile(ctx, user.ID, &model.UpdateProfileRequest{
		Nickname: "alice2",
		Avatar:   "https://cdn.example.com/a.png",
	})
	require.NoError(t, err)
	require.Equal(t, "alice2", updated.Nickname)
	require.Equal(t, "https://cdn.example.com/a.png", updated.Avatar)

	// 昵称撞已有用户
	_, err = env.svc.UpdateProfile(ctx, user.ID, &model.UpdateProfileRequest{Nickname: "bob"})
	require.ErrorIs(t, err, errs.ErrNicknameAlreadyExists)
}

func TestGenerateVerificationCodeCharset(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, ch := range code {
			require.Contains(t, codeCharset, string(ch))
		}
	}
}
