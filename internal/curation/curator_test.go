package curation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
)

func plainHistory(n int) []model.ChatMessage {
	history := make([]model.ChatMessage, 0, n)
	for i := 0; i < n; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		history = append(history, model.ChatMessage{
			Role:    role,
			Content: fmt.Sprintf("消息%d", i),
		})
	}
	return history
}

func TestSelect_ShortHistoryPassesThrough(t *testing.T) {
	history := plainHistory(30)
	got := Select(history)
	assert.Equal(t, history, got)
}

func TestSelect_LongHistoryKeepsRecentFifteen(t *testing.T) {
	history := plainHistory(35)
	got := Select(history)

	// 没有命中重要关键词的旧消息，结果就是最近 15 条
	require.Len(t, got, recentCount)
	assert.Equal(t, history[len(history)-recentCount:], got)
}

func TestSelect_ImportantOlderUserMessagesPrepended(t *testing.T) {
	history := plainHistory(40)
	// 旧区间里埋 3 条重要 user 消息和 1 条重要 assistant 消息
	history[2].Content = "昨天去医院了"
	history[4].Content = "最近心情不好"
	history[6].Content = "朋友来家里吃饭"
	history[7].Content = "医院检查结果不错" // assistant，不应被保留

	got := Select(history)

	require.Len(t, got, 3+recentCount)
	assert.Equal(t, "昨天去医院了", got[0].Content)
	assert.Equal(t, "最近心情不好", got[1].Content)
	assert.Equal(t, "朋友来家里吃饭", got[2].Content)
	assert.Equal(t, history[len(history)-recentCount:], got[3:])
}

func TestSelect_ImportantCapAtTen(t *testing.T) {
	history := plainHistory(60)
	// 旧区间的 user 消息全部命中重要关键词
	for i := 0; i < len(history)-recentCount; i++ {
		if history[i].Role == model.RoleUser {
			history[i].Content = fmt.Sprintf("想你了，第%d次说", i)
		}
	}

	got := Select(history)

	require.Len(t, got, importantCount+recentCount)
	// 收的是最早的 10 条命中消息
	assert.Equal(t, history[0].Content, got[0].Content)
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	history := plainHistory(40)
	history[0].Content = "昨天去医院了"
	snapshot := make([]model.ChatMessage, len(history))
	copy(snapshot, history)

	_ = Select(history)

	assert.Equal(t, snapshot, history)
}
