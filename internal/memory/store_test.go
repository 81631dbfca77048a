package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
)

func TestAppend_CapEvictsOldest(t *testing.T) {
	profile := &model.ChildProfile{}
	for i := 1; i <= 25; i++ {
		Append(profile, fmt.Sprintf("[健康] 记忆%d", i))
	}

	assert.Len(t, profile.Memories, model.MaxMemories)
	// 最旧的 5 条被淘汰，保留 6..25
	assert.Equal(t, "[健康] 记忆6", profile.Memories[0])
	assert.Equal(t, "[健康] 记忆25", profile.Memories[len(profile.Memories)-1])
}

func TestAppend_UnderCapKeepsAll(t *testing.T) {
	profile := &model.ChildProfile{}
	Append(profile, "[天气] 下雨了")
	Append(profile, "[情绪] 想你")

	assert.Equal(t, []string{"[天气] 下雨了", "[情绪] 想你"}, profile.Memories)
}

func TestFormat_Empty(t *testing.T) {
	assert.Equal(t, EmptyPlaceholder, Format(nil))
	assert.Equal(t, EmptyPlaceholder, Format([]string{}))
}

func TestFormat_RecentTenOldestFirst(t *testing.T) {
	var memories []string
	for i := 1; i <= 12; i++ {
		memories = append(memories, fmt.Sprintf("[日常] 记忆%d", i))
	}

	got := Format(memories)

	// 只渲染最近 10 条，最旧的排最前
	assert.NotContains(t, got, "记忆1\n")
	assert.NotContains(t, got, "记忆2\n")
	assert.Equal(t, "- [日常] 记忆3", got[:len("- [日常] 记忆3")])
	assert.Contains(t, got, "- [日常] 记忆12")
}

func TestFormat_BulletPerLine(t *testing.T) {
	got := Format([]string{"[健康] 感冒了", "[天气] 降温"})
	assert.Equal(t, "- [健康] 感冒了\n- [天气] 降温", got)
}
