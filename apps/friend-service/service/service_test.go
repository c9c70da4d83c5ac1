package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"amity-social/apps/friend-service/dao"
	"amity-social/apps/friend-service/model"
	"amity-social/pkg/errs"
	"amity-social/pkg/logger"
	"amity-social/pkg/presence"
)

// fakeGateway 可注入失败的chatroom网关
type fakeGateway struct {
	nextID      int64
	failCreate  bool
	failDelete  bool
	createCalls [][2]int64
	deleteCalls []int64
}

func (g *fakeGateway) CreateChatroom(ctx context.Context, user1ID, user2ID int64, token string) (int64, error) {
	if g.failCreate {
		return 0, errs.ErrChatroomCreationFailed
	}
	g.createCalls = append(g.createCalls, [2]int64{user1ID, user2ID})
	g.nextID++
	return g.nextID + 41, nil
}

func (g *fakeGateway) DeleteChatroom(ctx context.Context, chatroomID int64, token string) error {
	if g.failDelete {
		return errs.ErrChatroomDeletionFailed
	}
	g.deleteCalls = append(g.deleteCalls, chatroomID)
	return nil
}

// fakeNotifier 记录推送调用
type fakeNotifier struct {
	sent []presence.Event
	to   []int64
}

func (n *fakeNotifier) TrySend(ctx context.Context, userID int64, event presence.Event) bool {
	n.to = append(n.to, userID)
	n.sent = append(n.sent, event)
	return true
}

// fakePresence 固定的在线状态表
type fakePresence struct {
	online map[int64]bool
}

func (p *fakePresence) IsOnline(ctx context.Context, userID int64) (bool, error) {
	return p.online[userID], nil
}

func (p *fakePresence) GetChannel(ctx context.Context, userID int64) (string, bool, error) {
	if p.online[userID] {
		return "gateway:test:push", true, nil
	}
	return "", false, nil
}

type testEnv struct {
	db       *gorm.DB
	svc      *Service
	gateway  *fakeGateway
	notifier *fakeNotifier
	presence *fakePresence
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.FriendRequest{},
		&model.Friendship{},
		&model.Block{},
	))

	gateway := &fakeGateway{}
	notifier := &fakeNotifier{}
	presenceDir := &fakePresence{online: map[int64]bool{}}
	svc := NewService(dao.NewFriendDAOFromDB(db), gateway, notifier, presenceDir, nil, logger.GetLogger())

	return &testEnv{
		db:       db,
		svc:      svc,
		gateway:  gateway,
		notifier: notifier,
		presence: presenceDir,
	}
}

func (e *testEnv) seedUser(t *testing.T, id int64, nickname string) {
	t.Helper()
	require.NoError(t, e.db.Create(&model.User{ID: id, Nickname: nickname}).Error)
}

func (e *testEnv) countRequests(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&model.FriendRequest{}).Count(&count).Error)
	return count
}

func (e *testEnv) countFriendships(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&model.Friendship{}).Count(&count).Error)
	return count
}

func TestSendFriendRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")

	request, err := env.svc.SendFriendRequest(ctx, 1, "bob")
	require.NoError(t, err)
	require.Equal(t, int64(1), request.FromUserID)
	require.Equal(t, int64(2), request.ToUserID)
	require.Equal(t, model.RequestStatusPending, request.Status)
	require.Equal(t, int64(1), env.countRequests(t))

	// 任一方向再次发送都冲突
	_, err = env.svc.SendFriendRequest(ctx, 1, "bob")
	require.ErrorIs(t, err, errs.ErrFriendRequestAlreadyExists)
	_, err = env.svc.SendFriendRequest(ctx, 2, "alice")
	require.ErrorIs(t, err, errs.ErrFriendRequestAlreadyExists)
	require.Equal(t, int64(1), env.countRequests(t))
}

func TestSendFriendRequestNotifiesRecipient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")
	env.presence.online[2] = true

	request, err := env.svc.SendFriendRequest(ctx, 1, "bob")
	require.NoError(t, err)

	require.Len(t, env.notifier.sent, 1)
	require.Equal(t, int64(2), env.notifier.to[0])
	require.Equal(t, "friend.request", env.notifier.sent[0].Type)

	var content map[string]interface{}
	require.NoError(t, json.Unmarshal(env.notifier.sent[0].Content, &content))
	require.Equal(t, float64(request.ID), content["id"])
	require.Equal(t, "alice", content["from_user"])
	require.NotEmpty(t, content["created_at"])
}

func TestSendFriendRequestToSelf(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 1, "alice")

	_, err := env.svc.SendFriendRequest(context.Background(), 1, "alice")
	require.ErrorIs(t, err, errs.ErrSelfFriendRequest)
}

func TestSendFriendRequestUnknownTarget(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 1, "alice")

	_, err := env.svc.SendFriendRequest(context.Background(), 1, "ghost")
	require.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestSendFriendRequestBlockedEitherDirection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")

	// B拉黑A，两个方向都不能再发申请
	require.NoError(t, env.db.Create(&model.Block{BlockerID: 2, BlockedID: 1}).Error)

	_, err := env.svc.SendFriendRequest(ctx, 1, "bob")
	require.ErrorIs(t, err, errs.ErrFriendRequestBlocked)
	_, err = env.svc.SendFriendRequest(ctx, 2, "alice")
	require.ErrorIs(t, err, errs.ErrFriendRequestBlocked)
}

func TestSendFriendRequestAlreadyFriends(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")
	require.NoError(t, env.db.Create(&model.Friendship{User1ID: 1, User2ID: 2}).Error)

	_, err := env.svc.SendFriendRequest(context.Background(), 1, "bob")
	require.ErrorIs(t, err, errs.ErrAlreadyFriends)
}

func TestAcceptFriendRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 5, "alice")
	env.seedUser(t, 3, "bob")

	request, err := env.svc.SendFriendRequest(ctx, 5, "bob")
	require.NoError(t, err)

	friendship, err := env.svc.RespondToFriendRequest(ctx, 3, request.ID, model.RespondActionAccept, "token")
	require.NoError(t, err)

	// 规范序：小ID在前
	require.Equal(t, int64(3), friendship.User1ID)
	require.Equal(t, int64(5), friendship.User2ID)
	require.NotNil(t, friendship.ChatroomID)
	require.Equal(t, int64(42), *friendship.ChatroomID)

	// 网关收到的是规范序后的对
	require.Equal(t, [2]int64{3, 5}, env.gateway.createCalls[0])

	// 申请已消费，库里只剩好友关系行
	require.Equal(t, int64(0), env.countRequests(t))
	require.Equal(t, int64(1), env.countFriendships(t))

	var stored model.Friendship
	require.NoError(t, env.db.First(&stored).Error)
	require.NotNil(t, stored.ChatroomID)
	require.Equal(t, int64(42), *stored.ChatroomID)
}

func TestAcceptRollsBackOnGatewayFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")

	request, err := env.svc.SendFriendRequest(ctx, 1, "bob")
	require.NoError(t, err)

	env.gateway.failCreate = true
	_, err = env.svc.RespondToFriendRequest(ctx, 2, request.ID, model.RespondActionAccept, "token")
	require.ErrorIs(t, err, errs.ErrChatroomCreationFailed)

	// 全量回滚：没有好友关系行，原申请原样保留
	require.Equal(t, int64(0), env.countFriendships(t))
	var stored model.FriendRequest
	require.NoError(t, env.db.First(&stored, request.ID).Error)
	require.Equal(t, model.RequestStatusPending, stored.Status)
}

func TestRejectFriendRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")

	request, err := env.svc.SendFriendRequest(ctx, 1, "bob")
	require.NoError(t, err)

	friendship, err := env.svc.RespondToFriendRequest(ctx, 2, request.ID, model.RespondActionReject, "token")
	require.NoError(t, err)
	require.Nil(t, friendship)
	require.Equal(t, int64(0), env.countRequests(t))

	// 拒绝不留痕，之后可以重新申请
	_, err = env.svc.SendFriendRequest(ctx, 1, "bob")
	require.NoError(t, err)

	// 同一申请不能处理两次
	_, err = env.svc.RespondToFriendRequest(ctx, 2, request.ID, model.RespondActionReject, "token")
	require.ErrorIs(t, err, errs.ErrFriendRequestNotFound)
}

func TestRespondInvalidAction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")

	request, err := env.svc.SendFriendRequest(ctx, 1, "bob")
	require.NoError(t, err)

	_, err = env.svc.RespondToFriendRequest(ctx, 2, request.ID, "maybe", "token")
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestRespondOnlyRecipientCanAct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")
	env.seedUser(t, 3, "mallory")

	request, err := env.svc.SendFriendRequest(ctx, 1, "bob")
	require.NoError(t, err)

	_, err = env.svc.RespondToFriendRequest(ctx, 3, request.ID, model.RespondActionAccept, "token")
	require.ErrorIs(t, err, errs.ErrFriendRequestNotFound)
}

func TestGetReceivedRequests(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")
	env.seedUser(t, 3, "carol")

	_, err := env.svc.SendFriendRequest(ctx, 1, "carol")
	require.NoError(t, err)
	_, err = env.svc.SendFriendRequest(ctx, 2, "carol")
	require.NoError(t, err)

	received, err := env.svc.GetReceivedRequests(ctx, 3)
	require.NoError(t, err)
	require.Len(t, received, 2)

	nicknames := []string{received[0].FromUser.Nickname, received[1].FromUser.Nickname}
	require.ElementsMatch(t, []string{"alice", "bob"}, nicknames)
}

func TestGetFriendsListPresenceSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")
	env.seedUser(t, 3, "carol")

	chatroom1 := int64(42)
	chatroom2 := int64(43)
	require.NoError(t, env.db.Create(&model.Friendship{User1ID: 1, User2ID: 2, ChatroomID: &chatroom1}).Error)
	require.NoError(t, env.db.Create(&model.Friendship{User1ID: 1, User2ID: 3, ChatroomID: &chatroom2}).Error)
	env.presence.online[2] = true

	entries, err := env.svc.GetFriendsList(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byID := map[int64]*model.FriendEntry{}
	for _, e := range entries {
		byID[e.Friend.ID] = e
	}
	require.True(t, byID[2].IsOnline)
	require.False(t, byID[3].IsOnline)
	require.Equal(t, "bob", byID[2].Friend.Nickname)
	require.Equal(t, chatroom1, *byID[2].Friendship.ChatroomID)
}

func TestGetFriendsListUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.GetFriendsList(context.Background(), 999)
	require.ErrorIs(t, err, errs.ErrFriendsListUnavailable)
}

func TestDeleteFriend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")

	chatroomID := int64(42)
	require.NoError(t, env.db.Create(&model.Friendship{User1ID: 1, User2ID: 2, ChatroomID: &chatroomID}).Error)

	require.NoError(t, env.svc.DeleteFriend(ctx, 1, 2, "token"))
	require.Equal(t, []int64{42}, env.gateway.deleteCalls)
	require.Equal(t, int64(0), env.countFriendships(t))

	// 已删除的关系再删报不存在
	err := env.svc.DeleteFriend(ctx, 1, 2, "token")
	require.ErrorIs(t, err, errs.ErrFriendshipNotFound)
}

func TestDeleteFriendKeepsRowOnGatewayFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")

	chatroomID := int64(42)
	require.NoError(t, env.db.Create(&model.Friendship{User1ID: 1, User2ID: 2, ChatroomID: &chatroomID}).Error)

	env.gateway.failDelete = true
	err := env.svc.DeleteFriend(ctx, 1, 2, "token")
	require.ErrorIs(t, err, errs.ErrChatroomDeletionFailed)

	// 远程拆除失败时保留本地关系行，等待重试
	require.Equal(t, int64(1), env.countFriendships(t))
}

func TestBlockFriendDissolvesFriendship(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")

	chatroomID := int64(42)
	require.NoError(t, env.db.Create(&model.Friendship{User1ID: 1, User2ID: 2, ChatroomID: &chatroomID}).Error)

	require.NoError(t, env.svc.BlockFriend(ctx, 1, 2, "token"))

	// 好友关系拆散，chatroom已远程删除，拉黑记录保留
	require.Equal(t, int64(0), env.countFriendships(t))
	require.Equal(t, []int64{42}, env.gateway.deleteCalls)

	var blocks int64
	require.NoError(t, env.db.Model(&model.Block{}).Count(&blocks).Error)
	require.Equal(t, int64(1), blocks)
}

func TestBlockFriendCleansPendingRequests(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")

	_, err := env.svc.SendFriendRequest(ctx, 2, "alice")
	require.NoError(t, err)

	require.NoError(t, env.svc.BlockFriend(ctx, 1, 2, "token"))
	require.Equal(t, int64(0), env.countRequests(t))
}

func TestBlockFriendDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")

	require.NoError(t, env.svc.BlockFriend(ctx, 1, 2, "token"))
	err := env.svc.BlockFriend(ctx, 1, 2, "token")
	require.ErrorIs(t, err, errs.ErrBlockAlreadyExists)
}

func TestUnblockFriend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")

	chatroomID := int64(42)
	require.NoError(t, env.db.Create(&model.Friendship{User1ID: 1, User2ID: 2, ChatroomID: &chatroomID}).Error)
	require.NoError(t, env.svc.BlockFriend(ctx, 1, 2, "token"))

	require.NoError(t, env.svc.UnblockFriend(ctx, 1, 2))

	// 解除拉黑不恢复拉黑时删掉的好友关系
	require.Equal(t, int64(0), env.countFriendships(t))
	require.Equal(t, int64(0), env.countRequests(t))

	// 幂等性：重复解除报不存在而不是崩溃
	err := env.svc.UnblockFriend(ctx, 1, 2)
	require.ErrorIs(t, err, errs.ErrBlockNotFound)
}

func TestBlockIsDirectional(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUser(t, 1, "alice")
	env.seedUser(t, 2, "bob")

	require.NoError(t, env.svc.BlockFriend(ctx, 1, 2, "token"))

	// 反方向的拉黑是独立记录
	require.NoError(t, env.svc.BlockFriend(ctx, 2, 1, "token"))

	// 解除一个方向不影响另一个方向
	require.NoError(t, env.svc.UnblockFriend(ctx, 1, 2))
	_, err := env.svc.SendFriendRequest(ctx, 1, "bob")
	require.ErrorIs(t, err, errs.ErrFriendRequestBlocked)
}
