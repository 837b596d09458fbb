package tasks

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// 定义任务类型常量
const (
	TypeCacheReconcile = "cache:reconcile" // 收藏数缓存对账任务类型
)

// CacheReconcilePayload 定义了缓存对账任务的数据结构。
// Slugs 为空表示全量对账：重算所有文章的收藏数并写回缓存。
type CacheReconcilePayload struct {
	Slugs []string `json:"slugs"`
}

// NewCacheReconcileTask 创建一个新的缓存对账任务
func NewCacheReconcileTask(slugs []string) (*asynq.Task, error) {
	payload, err := json.Marshal(CacheReconcilePayload{Slugs: slugs})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCacheReconcile, payload), nil
}

// Enqueuer 封装 asynq.Client，把任务投递包装成服务层可注入的依赖
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer 创建 Enqueuer 实例
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	if client == nil {
		panic("asynq client cannot be nil for Enqueuer")
	}
	return &Enqueuer{client: client}
}

// EnqueueCacheReconcile 把一次针对指定文章的缓存对账排入队列
func (e *Enqueuer) EnqueueCacheReconcile(ctx context.Context, slugs []string) error {
	task, err := NewCacheReconcileTask(slugs)
	if err != nil {
		return err
	}
	info, err := e.client.EnqueueContext(ctx, task, asynq.Queue("low"), asynq.MaxRetry(3))
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"task_id":   info.ID,
		"task_type": info.Type,
		"queue":     info.Queue,
		"slugs":     len(slugs),
	}).Debug("Cache reconcile task enqueued")
	return nil
}
