package service

import (
	"context"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
	"github.com/ShuyangenFrance/AI-kid/internal/repository"
)

// ConversationService 提供对话记录的读取能力，用于登录后恢复会话界面。
type ConversationService interface {
	GetHistory(ctx context.Context, username string) ([]model.ChatMessage, error)
}

type conversationService struct {
	chatRepo repository.ChatRepository
}

// NewConversationService 创建一个新的 ConversationService 实例。
func NewConversationService(chatRepo repository.ChatRepository) ConversationService {
	return &conversationService{chatRepo: chatRepo}
}

func (s *conversationService) GetHistory(ctx context.Context, username string) ([]model.ChatMessage, error) {
	return s.chatRepo.GetHistory(ctx, username)
}
