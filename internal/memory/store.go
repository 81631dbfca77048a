// Package memory 管理档案中提取出的记忆条目：追加、淘汰与渲染。
package memory

import (
	"strings"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
)

// EmptyPlaceholder 在没有任何记忆时渲染的占位文本。
const EmptyPlaceholder = "（暂无）"

// formatCount 渲染进提示词的记忆条数上限，只取最近的若干条。
const formatCount = 10

// Append 将一条格式化后的记忆追加到档案中，超出上限时从最旧的一条开始淘汰，
// 保证 Memories 长度始终不超过 model.MaxMemories。
func Append(profile *model.ChildProfile, entry string) {
	profile.Memories = append(profile.Memories, entry)
	if len(profile.Memories) > model.MaxMemories {
		profile.Memories = profile.Memories[len(profile.Memories)-model.MaxMemories:]
	}
}

// Format 将记忆列表渲染为提示词中的项目符号文本块。
// 只渲染最近 formatCount 条（其中最旧的排在最前），为空时返回占位文本。
func Format(memories []string) string {
	if len(memories) == 0 {
		return EmptyPlaceholder
	}
	recent := memories
	if len(recent) > formatCount {
		recent = recent[len(recent)-formatCount:]
	}
	var b strings.Builder
	for i, m := range recent {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(m)
	}
	return b.String()
}
