// Package pipeline 包含后台异步任务的处理逻辑。
package pipeline

import (
	"context"
	"fmt"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
	"github.com/ShuyangenFrance/AI-kid/internal/repository"
	"github.com/ShuyangenFrance/AI-kid/pkg/es"
	"github.com/ShuyangenFrance/AI-kid/pkg/log"
	"github.com/ShuyangenFrance/AI-kid/pkg/tasks"
)

// Archiver 消费对话归档任务：写入 MySQL 归档表并建立 Elasticsearch 检索索引。
// 归档失败不影响对话本身——主链路在投递任务后即完成，这里的重试由消费端负责。
type Archiver struct {
	conversationRepo repository.ConversationRepository
	esClient         *es.Client
}

// NewArchiver 创建一个新的 Archiver 实例。
func NewArchiver(conversationRepo repository.ConversationRepository, esClient *es.Client) *Archiver {
	return &Archiver{
		conversationRepo: conversationRepo,
		esClient:         esClient,
	}
}

// Process 实现 kafka.TaskProcessor 接口。
// 以 TurnID 去重，保证 Kafka 重投时归档表不会出现重复行。
func (a *Archiver) Process(ctx context.Context, task tasks.TurnArchiveTask) error {
	exists, err := a.conversationRepo.ExistsByTurnID(ctx, task.TurnID)
	if err != nil {
		return fmt.Errorf("检查归档去重失败: %w", err)
	}
	if exists {
		log.Infof("归档任务已处理过，跳过: turn=%s", task.TurnID)
		return nil
	}

	conv := &model.Conversation{
		TurnID:   task.TurnID,
		Username: task.Username,
		Question: task.Question,
		Answer:   task.Answer,
	}
	if err := a.conversationRepo.Create(ctx, conv); err != nil {
		return fmt.Errorf("写入归档表失败: %w", err)
	}

	doc := model.EsTurn{
		TurnID:    task.TurnID,
		Username:  task.Username,
		Question:  task.Question,
		Answer:    task.Answer,
		CreatedAt: task.CreatedAt,
	}
	if err := a.esClient.IndexTurn(ctx, doc); err != nil {
		return fmt.Errorf("索引归档对话失败: %w", err)
	}

	log.Infof("对话归档完成: turn=%s, username=%s", task.TurnID, task.Username)
	return nil
}
