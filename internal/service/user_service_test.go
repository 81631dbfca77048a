package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
	"github.com/ShuyangenFrance/AI-kid/pkg/token"
)

func newTestUserService(userRepo *fakeUserRepo, chatRepo *fakeChatRepo) UserService {
	jwtManager := token.NewJWTManager("test-secret", 1, 1)
	return NewUserService(userRepo, chatRepo, jwtManager, nil, nil, nil)
}

func TestRegisterAndLogin(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := newTestUserService(userRepo, newFakeChatRepo())

	user, err := svc.Register("wang_ma", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "wang_ma", user.Username)
	// 密码不落明文
	assert.NotEqual(t, "secret123", user.Password)

	access, refresh, err := svc.Login("wang_ma", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	_, _, err = svc.Login("wang_ma", "wrong")
	assert.Error(t, err)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := newTestUserService(newFakeUserRepo(testUser()), newFakeChatRepo())

	_, err := svc.Register("wang_ma", "whatever")
	assert.Error(t, err)
}

func TestSaveProfile_ResetsMemoriesAndHistory(t *testing.T) {
	user := testUser()
	user.Profile.Memories = []string{"[健康] 旧记忆"}
	user.Profile.ChatLog = "妈：吃了吗"
	userRepo := newFakeUserRepo(user)
	chatRepo := newFakeChatRepo()
	chatRepo.histories[user.Username] = []model.ChatMessage{
		{Role: model.RoleUser, Content: "旧对话"},
	}
	svc := newTestUserService(userRepo, chatRepo)

	updated, err := svc.SaveProfile(context.Background(), user.Username, ProfileInput{
		Gender:    model.GenderMale,
		Age:       model.AgeVeteran,
		Nickname:  "大壮",
		ChildDesc: "在外地工作的儿子",
		ChildCity: "UTC+1（巴黎、柏林）",
		MomCity:   "北京时间（北京）",
	})

	require.NoError(t, err)
	assert.Equal(t, "大壮", updated.Profile.Nickname)
	assert.Empty(t, updated.Profile.Memories)
	// 老格式城市标签被归一化
	assert.Equal(t, "UTC+8（北京、上海、香港）", updated.Profile.MomCity)
	// 参考聊天记录不随档案重建丢失
	assert.Equal(t, "妈：吃了吗", updated.Profile.ChatLog)
	// 对话记录清空
	assert.Empty(t, chatRepo.histories[user.Username])
}

func TestSaveProfile_DefaultsApplied(t *testing.T) {
	user := testUser()
	svc := newTestUserService(newFakeUserRepo(user), newFakeChatRepo())

	updated, err := svc.SaveProfile(context.Background(), user.Username, ProfileInput{
		Gender: model.GenderFemale,
		Age:    model.AgeStudent,
	})

	require.NoError(t, err)
	assert.Equal(t, model.DefaultNickname, updated.Profile.Nickname)
	assert.Equal(t, model.DefaultCity, updated.Profile.ChildCity)
	assert.Equal(t, model.DefaultCity, updated.Profile.MomCity)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := newTestUserService(userRepo, newFakeChatRepo())

	_, err := svc.Register("wang_ma", "secret123")
	require.NoError(t, err)
	_, refresh, err := svc.Login("wang_ma", "secret123")
	require.NoError(t, err)

	access2, refresh2, err := svc.RefreshToken(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEmpty(t, refresh2)

	_, _, err = svc.RefreshToken("不是一个合法的token")
	assert.Error(t, err)
}
