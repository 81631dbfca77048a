// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
	"github.com/ShuyangenFrance/AI-kid/internal/repository"
	"github.com/ShuyangenFrance/AI-kid/pkg/llm"
	"github.com/ShuyangenFrance/AI-kid/pkg/log"

	"gorm.io/gorm"
)

// ErrParentNotFound 表示按名字找不到对应的家长账号。
var ErrParentNotFound = errors.New("parent not found")

// reportHeader 是周报的固定标题段，所有输出快照都以它开头。
const reportHeader = "## 📊 本周周报\n\n"

// reportSampleCount 生成周报时取对话记录尾部的消息条数上限。
const reportSampleCount = 20

// reportSystemPrompt 周报生成的 system 消息。
const reportSystemPrompt = "你是一个 AI 助手，正在向子女汇报他/她妈妈的聊天情况。使用第三人称视角，称呼为'你的妈妈'。"

// reportInstructionTemplate 周报生成的 user 消息模板，插槽为拼好的对话文本。
const reportInstructionTemplate = `你是一个 AI 助手，正在向子女汇报他/她妈妈本周的聊天情况。请用第三人称视角，以"你的妈妈"来称呼。

聊天记录：
%s

请用自然、温暖的语言，以第三人称视角向子女汇报：
1. 本周你的妈妈跟我主要聊了什么话题
2. 你的妈妈的情绪和状态如何
3. 有什么值得你关注的事情
4. 给你的建议（如何更好地关心你的妈妈）

要求：
- 使用第三人称，称呼为"你的妈妈"
- 语气温暖、真诚
- 不要太长，3-5段即可
- 重点关注妈妈的情绪和需求
- 如果聊天内容很少，就简短说明即可
`

// ReportService 定义了子女端周报生成的接口。
type ReportService interface {
	// StreamWeeklyReport 按家长名字生成周报。
	// emit 在每个增量分块后收到一份只增不减的完整快照；
	// 对话为空时只产出一条占位快照，不调用模型。
	// 找不到账号时返回 ErrParentNotFound。
	StreamWeeklyReport(ctx context.Context, parentName string, emit func(report string)) error
}

type reportService struct {
	userRepo  repository.UserRepository
	chatRepo  repository.ChatRepository
	llmClient llm.Client
}

// NewReportService 创建一个新的 ReportService 实例。
func NewReportService(userRepo repository.UserRepository, chatRepo repository.ChatRepository, llmClient llm.Client) ReportService {
	return &reportService{
		userRepo:  userRepo,
		chatRepo:  chatRepo,
		llmClient: llmClient,
	}
}

// StreamWeeklyReport 生成并流式输出周报。
func (s *reportService) StreamWeeklyReport(ctx context.Context, parentName string, emit func(report string)) error {
	user, err := s.userRepo.FindByUsername(parentName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrParentNotFound
		}
		return fmt.Errorf("failed to load parent account: %w", err)
	}
	profile := user.Profile
	profile.ApplyDefaults()

	history, err := s.chatRepo.GetHistory(ctx, parentName)
	if err != nil {
		return fmt.Errorf("failed to load chat history: %w", err)
	}

	if len(history) == 0 {
		emit(fmt.Sprintf("%s你的妈妈最近还没有和%s聊天呢。\n\n💡 建议：可以主动找妈妈聊聊天，关心一下她最近的生活。",
			reportHeader, profile.Nickname))
		return nil
	}

	emit(reportHeader + "正在生成中...")

	recent := history
	if len(recent) > reportSampleCount {
		recent = recent[len(recent)-reportSampleCount:]
	}
	conversationText := renderConversation(recent, profile.Nickname)

	messages := []llm.Message{
		{Role: "system", Content: reportSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(reportInstructionTemplate, conversationText)},
	}

	writer := &reportStreamWriter{full: &strings.Builder{}, emit: emit}
	writer.full.WriteString(reportHeader)

	if err := s.llmClient.StreamChatMessages(ctx, messages, writer); err != nil {
		// 单次尝试、不重试：失败转换为一条终态快照
		log.Errorf("生成周报失败: parent=%s, err=%v", parentName, err)
		emit(fmt.Sprintf("%s生成周报时出错了：%s\n\n聊天记录共 %d 条消息。",
			reportHeader, err.Error(), len(history)))
	}
	return nil
}

// renderConversation 把消息列表渲染为 "角色: 内容" 的对话文本。
func renderConversation(messages []model.ChatMessage, nickname string) string {
	var b strings.Builder
	for _, msg := range messages {
		role := nickname
		if msg.Role == model.RoleUser {
			role = model.MomTitle
		}
		b.WriteString(fmt.Sprintf("%s: %s\n\n", role, msg.Content))
	}
	return b.String()
}

// reportStreamWriter 累积增量分块，并在每个分块后发出完整的周报快照。
type reportStreamWriter struct {
	full *strings.Builder
	emit func(report string)
}

// WriteMessage 满足 llm.MessageWriter 接口。
func (w *reportStreamWriter) WriteMessage(_ int, data []byte) error {
	w.full.Write(data)
	w.emit(w.full.String())
	return nil
}
