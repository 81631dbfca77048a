// Package service 包含了应用的业务逻辑层。
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
	"github.com/ShuyangenFrance/AI-kid/internal/repository"
	"github.com/ShuyangenFrance/AI-kid/internal/timezone"
	"github.com/ShuyangenFrance/AI-kid/pkg/hash"
	"github.com/ShuyangenFrance/AI-kid/pkg/log"
	"github.com/ShuyangenFrance/AI-kid/pkg/storage"
	"github.com/ShuyangenFrance/AI-kid/pkg/tika"
	"github.com/ShuyangenFrance/AI-kid/pkg/token"
)

// ProfileInput 是保存子女档案时提交的字段。
type ProfileInput struct {
	Gender    string `json:"gender" binding:"required"`
	Age       string `json:"age" binding:"required"`
	Nickname  string `json:"nickname"`
	ChildDesc string `json:"childDesc"`
	ChildCity string `json:"childCity"`
	MomCity   string `json:"momCity"`
}

// UserService 接口定义了所有与用户相关的业务操作。
type UserService interface {
	Register(username, password string) (*model.User, error)
	Login(username, password string) (accessToken, refreshToken string, err error)
	GetProfile(username string) (*model.User, error)
	Logout(tokenString string) error
	RefreshToken(refreshTokenString string) (newAccessToken, newRefreshToken string, err error)
	SaveProfile(ctx context.Context, username string, input ProfileInput) (*model.User, error)
	AttachChatLog(ctx context.Context, username, fileName string, file io.Reader, size int64, contentType string) error
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo      repository.UserRepository
	chatRepo      repository.ChatRepository
	jwtManager    *token.JWTManager
	rdb           *redis.Client
	storageClient *storage.Client
	tikaClient    *tika.Client
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(
	userRepo repository.UserRepository,
	chatRepo repository.ChatRepository,
	jwtManager *token.JWTManager,
	rdb *redis.Client,
	storageClient *storage.Client,
	tikaClient *tika.Client,
) UserService {
	return &userService{
		userRepo:      userRepo,
		chatRepo:      chatRepo,
		jwtManager:    jwtManager,
		rdb:           rdb,
		storageClient: storageClient,
		tikaClient:    tikaClient,
	}
}

// Register 处理家长账号注册。
func (s *userService) Register(username, password string) (*model.User, error) {
	_, err := s.userRepo.FindByUsername(username)
	if err == nil {
		return nil, errors.New("用户名已存在")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		Username: username,
		Password: hashedPassword,
		Role:     "USER",
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

// Login 处理家长账号登录。
func (s *userService) Login(username, password string) (accessToken, refreshToken string, err error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", errors.New("invalid credentials")
		}
		return "", "", err
	}

	if !hash.CheckPasswordHash(password, user.Password) {
		return "", "", errors.New("invalid credentials")
	}

	accessToken, err = s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = s.jwtManager.GenerateRefreshToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// GetProfile 根据用户名获取用户详细信息，档案缺失字段补默认值后返回。
func (s *userService) GetProfile(username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	user.Profile.ApplyDefaults()
	return user, nil
}

// Logout 处理用户登出逻辑，将 token 加入 Redis 黑名单。
// token 的剩余有效期作为黑名单键的过期时间。
func (s *userService) Logout(tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return err
	}
	expiration := time.Until(claims.ExpiresAt.Time)
	return s.rdb.Set(context.Background(), "blacklist:"+tokenString, "true", expiration).Err()
}

// RefreshToken 验证 refresh token 并签发新的 access token 和 refresh token。
func (s *userService) RefreshToken(refreshTokenString string) (newAccessToken, newRefreshToken string, err error) {
	claims, err := s.jwtManager.VerifyToken(refreshTokenString)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	user, err := s.userRepo.FindByUsername(claims.Username)
	if err != nil {
		return "", "", errors.New("user not found")
	}

	newAccessToken, err = s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	newRefreshToken, err = s.jwtManager.GenerateRefreshToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	return newAccessToken, newRefreshToken, nil
}

// SaveProfile 保存子女档案。
// 重建档案意味着重新开始：记忆列表清空，对话记录一并清空，
// 已上传的参考聊天记录文本保留。
func (s *userService) SaveProfile(ctx context.Context, username string, input ProfileInput) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, err
	}

	profile := model.ChildProfile{
		Gender:    input.Gender,
		Age:       input.Age,
		Nickname:  input.Nickname,
		ChildDesc: input.ChildDesc,
		ChatLog:   user.Profile.ChatLog,
		ChildCity: timezone.NormalizeLabel(input.ChildCity),
		MomCity:   timezone.NormalizeLabel(input.MomCity),
		Memories:  []string{},
	}
	profile.ApplyDefaults()

	user.Profile = profile
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("保存档案失败: %w", err)
	}
	if err := s.chatRepo.SaveHistory(ctx, username, []model.ChatMessage{}); err != nil {
		return nil, fmt.Errorf("清空对话记录失败: %w", err)
	}
	return user, nil
}

// AttachChatLog 处理参考聊天记录上传：原始文件归档到对象存储，
// 经 Tika 提取的纯文本写进档案。Tika 不可用时，UTF-8 文本文件退回原样使用。
func (s *userService) AttachChatLog(ctx context.Context, username, fileName string, file io.Reader, size int64, contentType string) error {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return err
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("读取上传文件失败: %w", err)
	}

	if _, err := s.storageClient.PutChatLog(ctx, username, fileName, bytes.NewReader(raw), size, contentType); err != nil {
		// 归档失败不阻断流程，文本仍然可以进档案
		log.Warnf("归档参考聊天记录失败: username=%s, err=%v", username, err)
	}

	text, err := s.tikaClient.ExtractText(bytes.NewReader(raw), fileName)
	if err != nil {
		if !utf8.Valid(raw) {
			return fmt.Errorf("无法从文件中提取文本: %w", err)
		}
		log.Warnf("Tika 提取失败，按纯文本处理: username=%s, err=%v", username, err)
		text = string(raw)
	}

	user.Profile.ChatLog = text
	return s.userRepo.Update(user)
}
