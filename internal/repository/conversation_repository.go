// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
)

// ConversationRepository 定义了对话归档表的操作接口。
// 归档行由后台消费者写入，只用于子女端检索与审计。
type ConversationRepository interface {
	Create(ctx context.Context, conv *model.Conversation) error
	ExistsByTurnID(ctx context.Context, turnID string) (bool, error)
	FindRecentByUsername(ctx context.Context, username string, limit int) ([]model.Conversation, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Create 写入一条归档记录。
func (r *conversationRepository) Create(ctx context.Context, conv *model.Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

// ExistsByTurnID 判断某轮对话是否已归档，用于消费端去重。
func (r *conversationRepository) ExistsByTurnID(ctx context.Context, turnID string) (bool, error) {
	var conv model.Conversation
	err := r.db.WithContext(ctx).Where("turn_id = ?", turnID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindRecentByUsername 按时间倒序返回某用户最近的归档对话。
func (r *conversationRepository) FindRecentByUsername(ctx context.Context, username string, limit int) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at DESC").
		Limit(limit).
		Find(&convs).Error
	return convs, err
}
