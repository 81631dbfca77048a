package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
)

func testProfile() model.ChildProfile {
	return model.ChildProfile{
		Gender:    model.GenderFemale,
		Age:       model.AgeEarlyCareer,
		Nickname:  "小雨",
		ChildDesc: "在上海工作的女儿，性格开朗",
	}
}

func TestBuildSystemPrompt_FillsSlots(t *testing.T) {
	got := BuildSystemPrompt(testProfile(), "- [健康] 感冒了", "【时间意识】")

	assert.Contains(t, got, "子女性别：女")
	assert.Contains(t, got, "子女年龄段：刚工作")
	assert.Contains(t, got, "子女昵称：小雨")
	assert.Contains(t, got, "在上海工作的女儿，性格开朗")
	assert.Contains(t, got, "- [健康] 感冒了")
	assert.Contains(t, got, "【时间意识】")
	assert.NotContains(t, got, "【参考聊天记录】")
}

func TestBuildSystemPrompt_AppendsChatLog(t *testing.T) {
	p := testProfile()
	p.ChatLog = "妈：吃饭了吗\n娃：刚吃完"

	got := BuildSystemPrompt(p, "（暂无）", "【时间意识】")

	idx := strings.Index(got, "【参考聊天记录】")
	assert.Greater(t, idx, 0)
	assert.Contains(t, got[idx:], "妈：吃饭了吗")
}

func TestBuildSystemPrompt_BlankChatLogOmitted(t *testing.T) {
	p := testProfile()
	p.ChatLog = "   \n  "

	got := BuildSystemPrompt(p, "（暂无）", "【时间意识】")
	assert.NotContains(t, got, "【参考聊天记录】")
}

func TestBuildTimeAwareness(t *testing.T) {
	child := RegionTime{Region: "UTC-5（纽约、多伦多）", HHMM: "09:30", OK: true}
	mom := RegionTime{Region: "UTC+8（北京、上海、香港）", HHMM: "21:30", OK: true}

	tests := []struct {
		name      string
		child     RegionTime
		mom       RegionTime
		wantLines int
	}{
		{name: "两侧都解析成功", child: child, mom: mom, wantLines: 2},
		{name: "仅子女侧成功", child: child, mom: RegionTime{Region: "火星"}, wantLines: 1},
		{name: "仅妈妈侧成功", child: RegionTime{}, mom: mom, wantLines: 1},
		{name: "两侧都失败", child: RegionTime{}, mom: RegionTime{}, wantLines: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildTimeAwareness(tt.child, tt.mom)
			assert.True(t, strings.HasPrefix(got, "【时间意识】"))
			assert.Equal(t, tt.wantLines, strings.Count(got, "\n- "))
		})
	}
}

func TestBuildTimeAwareness_LineFormat(t *testing.T) {
	child := RegionTime{Region: "UTC+1（巴黎、柏林）", HHMM: "14:05", OK: true}
	got := BuildTimeAwareness(child, RegionTime{})
	assert.Contains(t, got, "- 你现在在UTC+1（巴黎、柏林），当地时间 14:05")
}
