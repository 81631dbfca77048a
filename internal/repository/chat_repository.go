// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
	"github.com/ShuyangenFrance/AI-kid/pkg/log"
)

// ChatRepository 定义了对话历史记录的操作接口。
// 历史按用户名整体读写：读取时键不存在返回空列表而非错误，
// 保存时整份文档覆盖写入（last-write-wins）。
type ChatRepository interface {
	GetHistory(ctx context.Context, username string) ([]model.ChatMessage, error)
	SaveHistory(ctx context.Context, username string, messages []model.ChatMessage) error
}

// chatRepository 以 MySQL 为持久层、Redis 为热缓存。
// 缓存只是加速最近会话的恢复，任何缓存故障都退回数据库。
type chatRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// cacheTTL 是对话历史缓存的过期时间。
const cacheTTL = 7 * 24 * time.Hour

// NewChatRepository 创建一个新的 ChatRepository 实例。
func NewChatRepository(db *gorm.DB, rdb *redis.Client) ChatRepository {
	return &chatRepository{db: db, rdb: rdb}
}

func cacheKey(username string) string {
	return fmt.Sprintf("chat:history:%s", username)
}

// GetHistory 获取用户的完整对话记录，优先读缓存，未命中时回源数据库。
func (r *chatRepository) GetHistory(ctx context.Context, username string) ([]model.ChatMessage, error) {
	jsonData, err := r.rdb.Get(ctx, cacheKey(username)).Result()
	if err == nil {
		var messages []model.ChatMessage
		if uerr := json.Unmarshal([]byte(jsonData), &messages); uerr == nil {
			return messages, nil
		}
		// 缓存内容损坏时直接回源
		log.Warnf("对话历史缓存内容损坏，回源数据库: username=%s", username)
	} else if err != redis.Nil {
		log.Warnf("读取对话历史缓存失败: username=%s, err=%v", username, err)
	}

	var record model.ChatRecord
	err = r.db.WithContext(ctx).Where("username = ?", username).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []model.ChatMessage{}, nil // 尚无历史
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	r.fillCache(ctx, username, record.History)
	return record.History, nil
}

// SaveHistory 整体保存用户的对话记录。
// 数据库写入成功即视为保存成功，缓存刷新失败仅记录日志。
func (r *chatRepository) SaveHistory(ctx context.Context, username string, messages []model.ChatMessage) error {
	record := model.ChatRecord{Username: username, History: messages}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		UpdateAll: true,
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save chat history: %w", err)
	}

	r.fillCache(ctx, username, messages)
	return nil
}

func (r *chatRepository) fillCache(ctx context.Context, username string, messages []model.ChatMessage) {
	jsonData, err := json.Marshal(messages)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, cacheKey(username), jsonData, cacheTTL).Err(); err != nil {
		log.Warnf("刷新对话历史缓存失败: username=%s, err=%v", username, err)
	}
}
