package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
	"github.com/ShuyangenFrance/AI-kid/internal/repository"
	"github.com/ShuyangenFrance/AI-kid/pkg/es"
)

const searchPageSize = 20

// SearchService 面向子女侧提供对话全文检索能力。
type SearchService interface {
	SearchTurns(ctx context.Context, parentName, query string) ([]model.TurnSearchResult, error)
}

type searchService struct {
	userRepo repository.UserRepository
	esClient *es.Client
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(userRepo repository.UserRepository, esClient *es.Client) SearchService {
	return &searchService{userRepo: userRepo, esClient: esClient}
}

func (s *searchService) SearchTurns(ctx context.Context, parentName, query string) ([]model.TurnSearchResult, error) {
	if _, err := s.userRepo.FindByUsername(parentName); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	return s.esClient.SearchTurns(ctx, parentName, query, searchPageSize)
}
