// Package notify 通知排队。只负责把待发送消息放入队列，实际短信发送由独立的消费者完成。
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueKey 短信队列键
const DefaultQueueKey = "contracts:sms:queue"

// Queue 通知队列协作者
type Queue interface {
	Enqueue(ctx context.Context, destination, message string) error
}

// Message 入队的通知
type Message struct {
	Destination string    `json:"destination"`
	Message     string    `json:"message"`
	QueuedAt    time.Time `json:"queued_at"`
}

// RedisQueue 基于 Redis 列表的通知队列（RPUSH 入队，消费者 BLPOP）
type RedisQueue struct {
	rdb *redis.Client
	key string
	now func() time.Time
}

// NewRedisQueue 创建队列，key 为空时使用默认键
func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultQueueKey
	}
	return &RedisQueue{rdb: rdb, key: key, now: time.Now}
}

func (q *RedisQueue) Enqueue(ctx context.Context, destination, message string) error {
	if q == nil || q.rdb == nil {
		return errors.New("notification queue not initialized")
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return errors.New("empty destination")
	}

	raw, err := json.Marshal(Message{
		Destination: destination,
		Message:     message,
		QueuedAt:    q.now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := q.rdb.RPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("enqueue to %s: %w", q.key, err)
	}
	return nil
}

// Len 队列长度
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}
