package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
	"github.com/ShuyangenFrance/AI-kid/pkg/llm"
	"github.com/ShuyangenFrance/AI-kid/pkg/tasks"
)

// ---- 测试替身 ----

type fakeChatRepo struct {
	histories map[string][]model.ChatMessage
	getErr    error
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{histories: map[string][]model.ChatMessage{}}
}

func (r *fakeChatRepo) GetHistory(_ context.Context, username string) ([]model.ChatMessage, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.histories[username], nil
}

func (r *fakeChatRepo) SaveHistory(_ context.Context, username string, messages []model.ChatMessage) error {
	r.histories[username] = messages
	return nil
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*model.User{}}
	for _, u := range users {
		r.users[u.Username] = u
	}
	return r
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.users[user.Username] = user
	return nil
}

// fakeLLM 按预设分块流式输出，并记录每次收到的消息序列。
type fakeLLM struct {
	chunks   []string
	err      error
	requests [][]llm.Message
}

func (c *fakeLLM) StreamChatMessages(_ context.Context, messages []llm.Message, writer llm.MessageWriter) error {
	c.requests = append(c.requests, messages)
	if c.err != nil {
		return c.err
	}
	for _, chunk := range c.chunks {
		if err := writer.WriteMessage(1, []byte(chunk)); err != nil {
			return err
		}
	}
	return nil
}

// fakeWriter 收集下发给前端的所有分块文本。
type fakeWriter struct {
	chunks []string
}

func (w *fakeWriter) WriteMessage(_ int, data []byte) error {
	var payload map[string]string
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	w.chunks = append(w.chunks, payload["chunk"])
	return nil
}

type fakeResolver struct{}

func (fakeResolver) Resolve(label string) (string, int, bool) {
	if label == "UTC+8（北京、上海、香港）" {
		return "21:00", 21, true
	}
	return "", 0, false
}

type fakePublisher struct {
	tasks []tasks.TurnArchiveTask
	err   error
}

func (p *fakePublisher) ProduceTurnTask(_ context.Context, task tasks.TurnArchiveTask) error {
	if p.err != nil {
		return p.err
	}
	p.tasks = append(p.tasks, task)
	return nil
}

func testUser() *model.User {
	return &model.User{
		Username: "wang_ma",
		Role:     "USER",
		Profile: model.ChildProfile{
			Gender:    model.GenderFemale,
			Age:       model.AgeEarlyCareer,
			Nickname:  "小雨",
			ChildCity: model.DefaultCity,
			MomCity:   model.DefaultCity,
		},
	}
}

func newTestChatService(chatRepo *fakeChatRepo, userRepo *fakeUserRepo, client *fakeLLM, pub TurnPublisher) ChatService {
	// pick 固定取 0，晚安回复可预测
	return NewChatService(chatRepo, userRepo, client, fakeResolver{}, pub, nil, func(int) int { return 0 })
}

// ---- 用例 ----

func TestStreamTurn_EmptyInputIsNoop(t *testing.T) {
	chatRepo := newFakeChatRepo()
	user := testUser()
	client := &fakeLLM{chunks: []string{"你好"}}
	svc := newTestChatService(chatRepo, newFakeUserRepo(user), client, nil)

	err := svc.StreamTurn(context.Background(), "   \n ", user, &fakeWriter{})

	require.NoError(t, err)
	assert.Empty(t, client.requests)
	assert.Empty(t, chatRepo.histories[user.Username])
}

func TestStreamTurn_GoodnightShortCircuit(t *testing.T) {
	chatRepo := newFakeChatRepo()
	user := testUser()
	client := &fakeLLM{chunks: []string{"不该被调用"}}
	pub := &fakePublisher{}
	writer := &fakeWriter{}
	svc := newTestChatService(chatRepo, newFakeUserRepo(user), client, pub)

	err := svc.StreamTurn(context.Background(), "我要睡了，晚安", user, writer)

	require.NoError(t, err)
	// 不触发模型调用
	assert.Empty(t, client.requests)

	// 固定回复整条下发
	require.Len(t, writer.chunks, 1)
	assert.Equal(t, "好的妈，早点休息，晚安💤", writer.chunks[0])

	// 一轮恰好落库一条 user + 一条 assistant
	history := chatRepo.histories[user.Username]
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, model.MomTitle, history[0].Title)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
	assert.Equal(t, "小雨", history[1].Title)

	// 归档任务照常投递
	require.Len(t, pub.tasks, 1)
	assert.Equal(t, "我要睡了，晚安", pub.tasks[0].Question)
	assert.NotEmpty(t, pub.tasks[0].TurnID)
}

func TestStreamTurn_StreamsAndPersists(t *testing.T) {
	chatRepo := newFakeChatRepo()
	user := testUser()
	client := &fakeLLM{chunks: []string{"妈，", "我挺好的", "，你呢？"}}
	pub := &fakePublisher{}
	writer := &fakeWriter{}
	svc := newTestChatService(chatRepo, newFakeUserRepo(user), client, pub)

	err := svc.StreamTurn(context.Background(), "今天过得怎么样？", user, writer)

	require.NoError(t, err)
	// 分块按到达顺序透传
	assert.Equal(t, []string{"妈，", "我挺好的", "，你呢？"}, writer.chunks)

	// 完整回答拼好后落库
	history := chatRepo.histories[user.Username]
	require.Len(t, history, 2)
	assert.Equal(t, "妈，我挺好的，你呢？", history[1].Content)

	require.Len(t, pub.tasks, 1)
	assert.Equal(t, "妈，我挺好的，你呢？", pub.tasks[0].Answer)
}

func TestStreamTurn_SystemPromptAndCuratedContext(t *testing.T) {
	chatRepo := newFakeChatRepo()
	user := testUser()
	// 预置 35 条无关键词历史，加上本轮输入共 36 条，触发裁剪
	var prior []model.ChatMessage
	for i := 0; i < 35; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		prior = append(prior, model.ChatMessage{Role: role, Content: "平平常常的一句"})
	}
	chatRepo.histories[user.Username] = prior

	client := &fakeLLM{chunks: []string{"嗯嗯"}}
	svc := newTestChatService(chatRepo, newFakeUserRepo(user), client, nil)

	err := svc.StreamTurn(context.Background(), "今天吃了饺子", user, &fakeWriter{})

	require.NoError(t, err)
	require.Len(t, client.requests, 1)
	messages := client.requests[0]

	// system + 最近 15 条
	require.Len(t, messages, 16)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "你不是 AI")
	assert.Contains(t, messages[0].Content, "小雨")
	// 新输入是裁剪视图的最后一项
	assert.Equal(t, "今天吃了饺子", messages[len(messages)-1].Content)

	// 持久化的是全量历史，不是裁剪视图
	assert.Len(t, chatRepo.histories[user.Username], 37)
}

func TestStreamTurn_MemoryExtractedIntoProfile(t *testing.T) {
	chatRepo := newFakeChatRepo()
	user := testUser()
	userRepo := newFakeUserRepo(user)
	client := &fakeLLM{chunks: []string{"妈你注意身体"}}
	svc := newTestChatService(chatRepo, userRepo, client, nil)

	err := svc.StreamTurn(context.Background(), "我今天有点头疼", user, &fakeWriter{})

	require.NoError(t, err)
	saved := userRepo.users[user.Username]
	require.Len(t, saved.Profile.Memories, 1)
	assert.Equal(t, "[健康] 我今天有点头疼", saved.Profile.Memories[0])
}

func TestStreamTurn_TimeAwarenessInSystemPrompt(t *testing.T) {
	chatRepo := newFakeChatRepo()
	user := testUser()
	client := &fakeLLM{chunks: []string{"好"}}
	svc := newTestChatService(chatRepo, newFakeUserRepo(user), client, nil)

	err := svc.StreamTurn(context.Background(), "现在几点了", user, &fakeWriter{})

	require.NoError(t, err)
	require.Len(t, client.requests, 1)
	system := client.requests[0][0].Content
	assert.Contains(t, system, "【时间意识】")
	assert.Contains(t, system, "当地时间 21:00")
}

func TestStreamTurn_ProviderErrorBecomesVisibleMessage(t *testing.T) {
	chatRepo := newFakeChatRepo()
	user := testUser()
	client := &fakeLLM{err: errors.New("connection refused")}
	pub := &fakePublisher{}
	writer := &fakeWriter{}
	svc := newTestChatService(chatRepo, newFakeUserRepo(user), client, pub)

	err := svc.StreamTurn(context.Background(), "今天过得怎么样？", user, writer)

	// 模型失败不向上传播
	require.NoError(t, err)

	require.Len(t, writer.chunks, 1)
	assert.True(t, strings.HasPrefix(writer.chunks[0], "出了一点问题："))
	assert.Contains(t, writer.chunks[0], "connection refused")

	// 出错消息也作为 assistant 回复落库
	history := chatRepo.histories[user.Username]
	require.Len(t, history, 2)
	assert.Contains(t, history[1].Content, "出了一点问题：")

	// 失败的回合不投递归档任务
	assert.Empty(t, pub.tasks)
}

func TestStreamTurn_PublishFailureDoesNotFailTurn(t *testing.T) {
	chatRepo := newFakeChatRepo()
	user := testUser()
	client := &fakeLLM{chunks: []string{"好"}}
	pub := &fakePublisher{err: errors.New("kafka down")}
	svc := newTestChatService(chatRepo, newFakeUserRepo(user), client, pub)

	err := svc.StreamTurn(context.Background(), "吃饭了吗", user, &fakeWriter{})

	require.NoError(t, err)
	assert.Len(t, chatRepo.histories[user.Username], 2)
}

func TestStreamTurn_HistoryLoadErrorPropagates(t *testing.T) {
	chatRepo := newFakeChatRepo()
	chatRepo.getErr = errors.New("mysql gone")
	user := testUser()
	svc := newTestChatService(chatRepo, newFakeUserRepo(user), &fakeLLM{}, nil)

	err := svc.StreamTurn(context.Background(), "在吗", user, &fakeWriter{})
	assert.Error(t, err)
}
