package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"amity-social/pkg/redis"
	"amity-social/pkg/utils"
)

const (
	onlineUsersKey = "online_users"
	connKeyPrefix  = "conn:"

	// 连接记录的兜底过期时间，防止网关异常退出后残留脏数据
	connExpire = 2 * time.Hour
)

// Event 推送给客户端的事件
type Event struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// Envelope 网关频道上的推送信封
// 网关根据UserID找到本地连接，把Event原样下发
type Envelope struct {
	UserID int64 `json:"user_id"`
	Event  Event `json:"event"`
}

// ChannelForGateway 网关实例的推送频道名
func ChannelForGateway(instanceID string) string {
	return fmt.Sprintf("gateway:%s:push", instanceID)
}

// Directory 在线状态目录
// 维护 用户ID -> 持有其连接的网关频道 的映射，数据存Redis
type Directory struct {
	redis *redis.RedisClient
}

// NewDirectory 创建在线状态目录
func NewDirectory(redisClient *redis.RedisClient) *Directory {
	return &Directory{redis: redisClient}
}

// Register 登记用户的活跃连接
func (d *Directory) Register(ctx context.Context, userID int64, instanceID, connID string) error {
	if err := d.redis.SAdd(ctx, onlineUsersKey, userID); err != nil {
		return fmt.Errorf("failed to mark user online: %v", err)
	}

	key := connKey(userID)
	info := map[string]interface{}{
		"instance_id":  instanceID,
		"conn_id":      connID,
		"connected_at": utils.GetCurrentTimestamp(),
	}
	if err := d.redis.HMSet(ctx, key, info); err != nil {
		// 回滚在线标记，避免出现在线却无法寻址的状态
		d.redis.SRem(ctx, onlineUsersKey, userID)
		return fmt.Errorf("failed to store connection info: %v", err)
	}
	if err := d.redis.Expire(ctx, key, connExpire); err != nil {
		return fmt.Errorf("failed to set connection expire: %v", err)
	}
	return nil
}

// Deregister 注销用户的活跃连接
func (d *Directory) Deregister(ctx context.Context, userID int64) error {
	if err := d.redis.SRem(ctx, onlineUsersKey, userID); err != nil {
		return fmt.Errorf("failed to unmark user online: %v", err)
	}
	if err := d.redis.Del(ctx, connKey(userID)); err != nil {
		return fmt.Errorf("failed to delete connection info: %v", err)
	}
	return nil
}

// IsOnline 查询用户当前是否持有活跃连接
func (d *Directory) IsOnline(ctx context.Context, userID int64) (bool, error) {
	return d.redis.SIsMember(ctx, onlineUsersKey, userID)
}

// GetChannel 查询用户连接所在网关的推送频道
// 用户不在线时返回("", false, nil)，不是错误
func (d *Directory) GetChannel(ctx context.Context, userID int64) (string, bool, error) {
	info, err := d.redis.HGetAll(ctx, connKey(userID))
	if err != nil {
		return "", false, fmt.Errorf("failed to load connection info: %v", err)
	}
	instanceID, ok := info["instance_id"]
	if !ok || instanceID == "" {
		return "", false, nil
	}
	return ChannelForGateway(instanceID), true, nil
}

func connKey(userID int64) string {
	return fmt.Sprintf("%s%d", connKeyPrefix, userID)
}
