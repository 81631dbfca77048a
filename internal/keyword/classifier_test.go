package keyword

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsGoodnight(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "直接说晚安", text: "晚安", want: true},
		{name: "句中包含睡了", text: "我先去睡了哈", want: true},
		{name: "困了", text: "今天有点困了", want: true},
		{name: "首尾空白不影响", text: "  晚安  ", want: true},
		{name: "普通消息", text: "今天吃了饺子", want: false},
		{name: "空消息", text: "", want: false},
		{name: "英文大小写归一", text: "Good night 晚安", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGoodnight(tt.text))
		})
	}
}

func TestExtractMemory_CategoryPriority(t *testing.T) {
	// 同一条消息同时命中健康和天气时，健康优先
	m, ok := ExtractMemory("我今天头疼，外面还下雨")
	require.True(t, ok)
	assert.Equal(t, "健康", m.Category)
	assert.Contains(t, m.Snippet, "头疼")
}

func TestExtractMemory_NoMatch(t *testing.T) {
	_, ok := ExtractMemory("今天吃了饺子")
	assert.False(t, ok)
}

func TestExtractMemory_SnippetWindow(t *testing.T) {
	// 关键词前后各 50 个字符，长消息的片段不超过 100 个字符
	long := strings.Repeat("前", 80) + "感冒" + strings.Repeat("后", 80)
	m, ok := ExtractMemory(long)
	require.True(t, ok)
	assert.LessOrEqual(t, len([]rune(m.Snippet)), 2+2*snippetRadius)
	assert.Contains(t, m.Snippet, "感冒")
}

func TestExtractMemory_ShortMessageKeepsWhole(t *testing.T) {
	m, ok := ExtractMemory("妈妈今天去医院体检了")
	require.True(t, ok)
	assert.Equal(t, "健康", m.Category)
	assert.Equal(t, "妈妈今天去医院体检了", m.Snippet)
}

func TestExtractMemory_Deterministic(t *testing.T) {
	text := "心情不好，想出去散步"
	first, ok := ExtractMemory(text)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := ExtractMemory(text)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestMemoryString(t *testing.T) {
	m := Memory{Category: "情绪", Snippet: "今天想你了"}
	assert.Equal(t, "[情绪] 今天想你了", m.String())
}
