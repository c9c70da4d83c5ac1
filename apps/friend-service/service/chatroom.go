package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"amity-social/pkg/errs"
)

// ChatroomGateway 外部聊天服务的chatroom生命周期接口
type ChatroomGateway interface {
	CreateChatroom(ctx context.Context, user1ID, user2ID int64, token string) (int64, error)
	DeleteChatroom(ctx context.Context, chatroomID int64, token string) error
}

// gatewayTimeout 网关调用的固定超时
// accept事务会跨网关往返持有，超时就是事务持有时间的上界
const gatewayTimeout = 10 * time.Second

// chatroomGateway HTTP实现
type chatroomGateway struct {
	baseURL string
	client  *http.Client
}

// NewChatroomGateway 创建chatroom网关客户端
func NewChatroomGateway(baseURL string) ChatroomGateway {
	return &chatroomGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: gatewayTimeout},
	}
}

// CreateChatroom 创建聊天室，成功时返回chatroom ID
func (g *chatroomGateway) CreateChatroom(ctx context.Context, user1ID, user2ID int64, token string) (int64, error) {
	body, err := json.Marshal(map[string]int64{
		"user1_id": user1ID,
		"user2_id": user2ID,
	})
	if err != nil {
		return 0, errs.ErrChatroomCreationFailed.WithCause(err)
	}

	resp, err := g.post(ctx, "create/", body, token)
	if err != nil {
		return 0, errs.ErrChatroomCreationFailed.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return 0, errs.ErrChatroomCreationFailed.WithCause(
			fmt.Errorf("chatroom create returned status %d", resp.StatusCode))
	}

	var result struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, errs.ErrChatroomCreationFailed.WithCause(err)
	}
	return result.ID, nil
}

// DeleteChatroom 删除聊天室
func (g *chatroomGateway) DeleteChatroom(ctx context.Context, chatroomID int64, token string) error {
	body, err := json.Marshal(map[string]int64{"chatroom_id": chatroomID})
	if err != nil {
		return errs.ErrChatroomDeletionFailed.WithCause(err)
	}

	resp, err := g.post(ctx, "delete/", body, token)
	if err != nil {
		return errs.ErrChatroomDeletionFailed.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return errs.ErrChatroomDeletionFailed.WithCause(
			fmt.Errorf("chatroom delete returned status %d", resp.StatusCode))
	}
	return nil
}

// post 携带调用方token发起网关请求
func (g *chatroomGateway) post(ctx context.Context, path string, body []byte, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return g.client.Do(req)
}
