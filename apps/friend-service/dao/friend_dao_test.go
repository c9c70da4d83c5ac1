package dao

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"amity-social/apps/friend-service/model"
	"amity-social/pkg/errs"
)

func newTestDAO(t *testing.T) (FriendDAO, *gorm.DB) {
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
	return NewFriendDAOFromDB(db), db
}

func TestSortPair(t *testing.T) {
	a, b := model.SortPair(7, 3)
	require.Equal(t, int64(3), a)
	require.Equal(t, int64(7), b)

	a, b = model.SortPair(3, 7)
	require.Equal(t, int64(3), a)
	require.Equal(t, int64(7), b)
}

func TestCreateFriendshipCanonicalOrder(t *testing.T) {
	d, _ := newTestDAO(t)
	ctx := context.Background()

	friendship, err := d.CreateFriendship(ctx, 9, 4)
	require.NoError(t, err)
	require.Equal(t, int64(4), friendship.User1ID)
	require.Equal(t, int64(9), friendship.User2ID)

	// 任一方向都能查到同一行
	found, err := d.GetFriendship(ctx, 9, 4)
	require.NoError(t, err)
	require.Equal(t, friendship.ID, found.ID)
	found, err = d.GetFriendship(ctx, 4, 9)
	require.NoError(t, err)
	require.Equal(t, friendship.ID, found.ID)
}

func TestCreateFriendshipDuplicateConflict(t *testing.T) {
	d, _ := newTestDAO(t)
	ctx := context.Background()

	_, err := d.CreateFriendship(ctx, 1, 2)
	require.NoError(t, err)

	// 反方向插入撞到同一唯一索引，翻译成领域冲突
	_, err = d.CreateFriendship(ctx, 2, 1)
	require.ErrorIs(t, err, errs.ErrAlreadyFriends)
}

func TestCreateRequestDuplicateConflict(t *testing.T) {
	d, db := newTestDAO(t)
	ctx := context.Background()

	require.NoError(t, d.CreateRequest(ctx, &model.FriendRequest{FromUserID: 1, ToUserID: 2, Status: model.RequestStatusPending}))

	// 并发重复发送撞到有向对唯一索引，翻译成领域冲突
	err := d.CreateRequest(ctx, &model.FriendRequest{FromUserID: 1, ToUserID: 2, Status: model.RequestStatusPending})
	require.ErrorIs(t, err, errs.ErrFriendRequestAlreadyExists)

	var count int64
	require.NoError(t, db.Model(&model.FriendRequest{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestGetPendingRequestBothDirections(t *testing.T) {
	d, _ := newTestDAO(t)
	ctx := context.Background()

	request := &model.FriendRequest{FromUserID: 1, ToUserID: 2, Status: model.RequestStatusPending}
	require.NoError(t, d.CreateRequest(ctx, request))

	found, err := d.GetPendingRequest(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, found)

	found, err = d.GetPendingRequest(ctx, 2, 1)
	require.NoError(t, err)
	require.NotNil(t, found)

	found, err = d.GetPendingRequest(ctx, 1, 3)
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestGetPendingRequestByIDIgnoresHandled(t *testing.T) {
	d, _ := newTestDAO(t)
	ctx := context.Background()

	request := &model.FriendRequest{FromUserID: 1, ToUserID: 2, Status: model.RequestStatusPending}
	require.NoError(t, d.CreateRequest(ctx, request))

	found, err := d.GetPendingRequestByID(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, found)

	require.NoError(t, d.UpdateRequestStatus(ctx, request.ID, model.RequestStatusAccepted))

	found, err = d.GetPendingRequestByID(ctx, request.ID)
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestHasBlockEitherDirection(t *testing.T) {
	d, _ := newTestDAO(t)
	ctx := context.Background()

	require.NoError(t, d.CreateBlock(ctx, &model.Block{BlockerID: 2, BlockedID: 1}))

	blocked, err := d.HasBlock(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, blocked)

	blocked, err = d.HasBlock(ctx, 2, 1)
	require.NoError(t, err)
	require.True(t, blocked)

	blocked, err = d.HasBlock(ctx, 1, 3)
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestDeleteBlockNotFound(t *testing.T) {
	d, _ := newTestDAO(t)
	ctx := context.Background()

	err := d.DeleteBlock(ctx, 1, 2)
	require.ErrorIs(t, err, errs.ErrBlockNotFound)
}

func TestDeleteRequestsBetween(t *testing.T) {
	d, db := newTestDAO(t)
	ctx := context.Background()

	require.NoError(t, d.CreateRequest(ctx, &model.FriendRequest{FromUserID: 1, ToUserID: 2, Status: model.RequestStatusPending}))
	require.NoError(t, d.CreateRequest(ctx, &model.FriendRequest{FromUserID: 3, ToUserID: 1, Status: model.RequestStatusPending}))

	require.NoError(t, d.DeleteRequestsBetween(ctx, 2, 1))

	var count int64
	require.NoError(t, db.Model(&model.FriendRequest{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestTransactionRollback(t *testing.T) {
	d, db := newTestDAO(t)
	ctx := context.Background()

	err := d.Transaction(ctx, func(tx FriendDAO) error {
		if _, err := tx.CreateFriendship(ctx, 1, 2); err != nil {
			return err
		}
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&model.Friendship{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}
