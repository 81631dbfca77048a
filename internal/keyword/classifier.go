// Package keyword 提供了基于固定关键词表的意图与记忆分类逻辑。
// 所有匹配都是朴素的子串匹配，不做分词与否定识别，误判作为产品取舍可接受。
package keyword

import "strings"

// goodnightKeywords 触发晚安模式的关键词，命中任意一个即短路本轮模型调用。
var goodnightKeywords = []string{"晚安", "睡了", "困了", "休息了", "去睡", "要睡"}

// MemoryCategory 是记忆提取的一个分类及其有序关键词表。
// 分类顺序与类别内关键词顺序共同决定提取优先级：先命中者胜出。
type MemoryCategory struct {
	Name     string
	Keywords []string
}

// memoryCategories 按优先级排列：健康 > 情绪 > 日常 > 天气。
var memoryCategories = []MemoryCategory{
	{Name: "健康", Keywords: []string{"头疼", "感冒", "生病", "不舒服", "医院", "体检", "吃药", "发烧", "咳嗽"}},
	{Name: "情绪", Keywords: []string{"心情不好", "孤单", "难过", "想你", "开心", "高兴", "烦恼"}},
	{Name: "日常", Keywords: []string{"朋友", "旅游", "出门", "散步", "买菜", "做饭", "跳舞", "唱歌", "打牌"}},
	{Name: "天气", Keywords: []string{"天气", "下雨", "冷", "热", "晴天"}},
}

// snippetRadius 是提取记忆时围绕关键词截取的上下文半径（按字符计）。
const snippetRadius = 50

// IsGoodnight 判断文本是否触发晚安模式。
// 对小写化、去除首尾空白后的文本做子串匹配。
func IsGoodnight(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range goodnightKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// Memory 是一次提取的结果：分类名与关键词上下文片段。
type Memory struct {
	Category string
	Snippet  string
}

// String 按存储格式渲染为 "[分类] 片段"。
func (m Memory) String() string {
	return "[" + m.Category + "] " + m.Snippet
}

// ExtractMemory 从用户消息中提取一条值得记住的片段。
// 按 memoryCategories 的顺序扫描，返回第一个命中的关键词及其前后
// snippetRadius 个字符的上下文；全部未命中时返回 ok=false。
// 每条消息最多提取一条记忆。
func ExtractMemory(text string) (Memory, bool) {
	runes := []rune(text)
	for _, cat := range memoryCategories {
		for _, kw := range cat.Keywords {
			idx := strings.Index(text, kw)
			if idx < 0 {
				continue
			}
			// 把字节偏移换算成字符偏移后再裁剪窗口，避免切断多字节字符
			runeIdx := len([]rune(text[:idx]))
			start := runeIdx - snippetRadius
			if start < 0 {
				start = 0
			}
			end := runeIdx + snippetRadius
			if end > len(runes) {
				end = len(runes)
			}
			snippet := strings.TrimSpace(string(runes[start:end]))
			return Memory{Category: cat.Name, Snippet: snippet}, true
		}
	}
	return Memory{}, false
}
