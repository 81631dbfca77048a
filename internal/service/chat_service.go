// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ShuyangenFrance/AI-kid/internal/curation"
	"github.com/ShuyangenFrance/AI-kid/internal/keyword"
	"github.com/ShuyangenFrance/AI-kid/internal/memory"
	"github.com/ShuyangenFrance/AI-kid/internal/model"
	"github.com/ShuyangenFrance/AI-kid/internal/prompt"
	"github.com/ShuyangenFrance/AI-kid/internal/repository"
	"github.com/ShuyangenFrance/AI-kid/internal/timezone"
	"github.com/ShuyangenFrance/AI-kid/pkg/llm"
	"github.com/ShuyangenFrance/AI-kid/pkg/log"
	"github.com/ShuyangenFrance/AI-kid/pkg/tasks"
)

// defaultGoodnightReplies 是晚安模式的内置候选回复。
var defaultGoodnightReplies = []string{
	"好的妈，早点休息，晚安💤",
	"嗯嗯，妈你也早点睡，晚安啦",
	"晚安妈，做个好梦",
}

// TurnPublisher 投递已完成对话的归档任务，kafka.Producer 满足该接口。
type TurnPublisher interface {
	ProduceTurnTask(ctx context.Context, task tasks.TurnArchiveTask) error
}

// ChatService 定义了一轮对话的编排接口。
type ChatService interface {
	// StreamTurn 处理一轮用户输入：流式分块写入 writer，完成后持久化档案与记录。
	// 空白输入是无操作；模型调用失败被转换为一条用户可见的出错消息，不会返回错误。
	StreamTurn(ctx context.Context, input string, user *model.User, writer llm.MessageWriter) error
}

type chatService struct {
	chatRepo  repository.ChatRepository
	userRepo  repository.UserRepository
	llmClient llm.Client
	resolver  timezone.Resolver
	publisher TurnPublisher

	replies   []string
	pickReply func(n int) int

	// 每个账号同一时刻只允许一轮进行中的对话，避免并发追加打乱
	// "一轮恰好一条 user 消息 + 一条 assistant 消息"的约束。
	turnLocks sync.Map // username -> *sync.Mutex
}

// NewChatService 创建一个新的 ChatService 实例。
// replies 为空时使用内置晚安回复；pick 为 nil 时使用随机选择，
// 测试中可注入确定性的选择函数。
func NewChatService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	llmClient llm.Client,
	resolver timezone.Resolver,
	publisher TurnPublisher,
	replies []string,
	pick func(n int) int,
) ChatService {
	if len(replies) == 0 {
		replies = defaultGoodnightReplies
	}
	if pick == nil {
		pick = rand.Intn
	}
	return &chatService{
		chatRepo:  chatRepo,
		userRepo:  userRepo,
		llmClient: llmClient,
		resolver:  resolver,
		publisher: publisher,
		replies:   replies,
		pickReply: pick,
	}
}

// StreamTurn 编排一轮对话。
func (s *chatService) StreamTurn(ctx context.Context, input string, user *model.User, writer llm.MessageWriter) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	// 串行化同一账号的回合
	mu := s.lockFor(user.Username)
	mu.Lock()
	defer mu.Unlock()

	profile := user.Profile
	profile.ApplyDefaults()

	history, err := s.chatRepo.GetHistory(ctx, user.Username)
	if err != nil {
		return fmt.Errorf("failed to load chat history: %w", err)
	}

	// 1. 先记录用户消息（一轮只做一次）
	history = append(history, model.ChatMessage{
		Role:      model.RoleUser,
		Content:   input,
		Title:     model.MomTitle,
		Timestamp: time.Now(),
	})

	// 2. 晚安模式：不调用模型，直接回复并落库
	if keyword.IsGoodnight(input) {
		reply := s.replies[s.pickReply(len(s.replies))]
		history = append(history, model.ChatMessage{
			Role:      model.RoleAssistant,
			Content:   reply,
			Title:     profile.Nickname,
			Timestamp: time.Now(),
		})
		if err := s.persist(ctx, user, profile, history); err != nil {
			return err
		}
		s.emitChunk(writer, reply)
		s.publishTurn(user.Username, input, reply)
		return nil
	}

	// 3. 记忆提取：每条消息至多一条
	if m, ok := keyword.ExtractMemory(input); ok {
		memory.Append(&profile, m.String())
	}

	// 4. 时间意识：任何一侧解析失败都只是省略对应行
	timeAwareness := s.buildTimeAwareness(profile)

	// 5. 在追加 assistant 占位之前裁剪历史，新输入已是裁剪视图的最后一项
	curated := curation.Select(history)
	systemPrompt := prompt.BuildSystemPrompt(profile, memory.Format(profile.Memories), timeAwareness)
	messages := composeMessages(systemPrompt, curated)

	// 6. 流式生成：分块追加进回合缓冲并透传给前端
	interceptor := &turnStreamWriter{forward: writer, answer: &strings.Builder{}}
	streamErr := s.llmClient.StreamChatMessages(ctx, messages, interceptor)

	answer := interceptor.answer.String()
	if streamErr != nil {
		// 单次尝试、不重试：失败转换为一条用户可见的出错消息并照常落库
		log.Errorf("流式生成失败: username=%s, err=%v", user.Username, streamErr)
		answer = fmt.Sprintf("出了一点问题：%s", streamErr.Error())
		s.emitChunk(writer, answer)
	}

	history = append(history, model.ChatMessage{
		Role:      model.RoleAssistant,
		Content:   answer,
		Title:     profile.Nickname,
		Timestamp: time.Now(),
	})

	if err := s.persist(ctx, user, profile, history); err != nil {
		return err
	}
	if streamErr == nil {
		s.publishTurn(user.Username, input, answer)
	}
	return nil
}

func (s *chatService) lockFor(username string) *sync.Mutex {
	v, _ := s.turnLocks.LoadOrStore(username, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *chatService) buildTimeAwareness(profile model.ChildProfile) string {
	child := prompt.RegionTime{Region: profile.ChildCity}
	if hhmm, _, ok := s.resolver.Resolve(profile.ChildCity); ok {
		child.HHMM, child.OK = hhmm, true
	}
	mom := prompt.RegionTime{Region: profile.MomCity}
	if hhmm, _, ok := s.resolver.Resolve(profile.MomCity); ok {
		mom.HHMM, mom.OK = hhmm, true
	}
	return prompt.BuildTimeAwareness(child, mom)
}

// persist 整体保存（档案，完整记录）。即使本轮以出错消息收尾也照常保存。
func (s *chatService) persist(ctx context.Context, user *model.User, profile model.ChildProfile, history []model.ChatMessage) error {
	user.Profile = profile
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	// 使用后台上下文：即使请求被取消，也要保住已经生成的对话
	if err := s.chatRepo.SaveHistory(context.Background(), user.Username, history); err != nil {
		return err
	}
	return nil
}

// publishTurn 投递归档任务，失败只记日志，不影响已完成的回合。
func (s *chatService) publishTurn(username, question, answer string) {
	if s.publisher == nil {
		return
	}
	task := tasks.TurnArchiveTask{
		TurnID:    uuid.NewString(),
		Username:  username,
		Question:  question,
		Answer:    answer,
		CreatedAt: time.Now(),
	}
	if err := s.publisher.ProduceTurnTask(context.Background(), task); err != nil {
		log.Warnf("投递归档任务失败: username=%s, err=%v", username, err)
	}
}

// emitChunk 把一段完整文本作为单个分块下发（晚安回复与出错消息）。
func (s *chatService) emitChunk(writer llm.MessageWriter, text string) {
	payload := map[string]string{"chunk": text}
	b, _ := json.Marshal(payload)
	if err := writer.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Warnf("下发消息分块失败: %v", err)
	}
}

// composeMessages 组装发送给模型的消息序列：system 在前，裁剪后的历史按原序跟随。
// 新的用户输入已经是裁剪视图的最后一项，不再额外追加。
func composeMessages(systemPrompt string, curated []model.ChatMessage) []llm.Message {
	msgs := make([]llm.Message, 0, len(curated)+1)
	msgs = append(msgs, llm.Message{Role: "system", Content: systemPrompt})
	for _, m := range curated {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	return msgs
}

// turnStreamWriter 拦截模型输出：分块累积成完整回答，同时包装成
// {"chunk":"..."} 透传给前端。分块严格按到达顺序追加，不做缓冲或重排。
type turnStreamWriter struct {
	forward llm.MessageWriter
	answer  *strings.Builder
}

// WriteMessage 满足 llm.MessageWriter 接口。
func (w *turnStreamWriter) WriteMessage(messageType int, data []byte) error {
	w.answer.Write(data)
	payload := map[string]string{"chunk": string(data)}
	b, _ := json.Marshal(payload)
	return w.forward.WriteMessage(messageType, b)
}
