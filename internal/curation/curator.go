// Package curation 负责在构建模型上下文前对完整对话记录做裁剪：
// 保留最近的消息，并从更早的消息里挑出少量重要内容。
// 裁剪结果只用于拼装提示词，持久化的对话记录永远保留全量历史。
package curation

import (
	"strings"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
)

// 裁剪参数：超过 trimThreshold 条才裁剪；裁剪后保留最近 recentCount 条，
// 外加旧消息中最多 importantCount 条重要消息。
const (
	trimThreshold  = 30
	recentCount    = 15
	importantCount = 10
)

// importanceKeywords 判定旧消息是否值得保留的关键词集合。
// 与记忆提取的关键词表有重叠但独立维护，两者的取舍口径并不相同
// （这里额外考虑社交与外出类词汇），合并会悄悄改变哪些旧消息能活过裁剪。
var importanceKeywords = []string{
	"医院", "生病", "头疼", "感冒", "不舒服", "体检", "吃药",
	"心情不好", "孤单", "难过", "想你", "开心",
	"朋友", "旅游", "出门",
}

// Select 从完整对话记录中选出发送给模型的裁剪视图。
// 记录不超过 trimThreshold 条时原样返回；否则保留最近 recentCount 条，
// 并按原始顺序从更早的前缀中收集最多 importantCount 条命中重要关键词的
// user 消息（收满即停，后续命中直接丢弃），重要消息整体排在最近消息之前。
// 返回的是新切片，调用方持有的完整记录不会被改动。
func Select(history []model.ChatMessage) []model.ChatMessage {
	if len(history) <= trimThreshold {
		return history
	}

	recent := history[len(history)-recentCount:]
	older := history[:len(history)-recentCount]

	important := make([]model.ChatMessage, 0, importantCount)
	for _, msg := range older {
		if msg.Role != model.RoleUser {
			continue
		}
		if !containsImportance(msg.Content) {
			continue
		}
		important = append(important, msg)
		if len(important) >= importantCount {
			break
		}
	}

	curated := make([]model.ChatMessage, 0, len(important)+len(recent))
	curated = append(curated, important...)
	curated = append(curated, recent...)
	return curated
}

func containsImportance(content string) bool {
	for _, kw := range importanceKeywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}
