// Package prompt 负责把子女档案、记忆块与时间意识块渲染成系统提示词。
// 模板内容与段落顺序是固定的，只有插槽部分随档案变化。
package prompt

import (
	"fmt"
	"strings"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
)

// systemPromptTemplate 是对话的系统提示词模板。
// 插槽依次为：性别、年龄段、昵称、子女描述、记忆块、时间意识块。
const systemPromptTemplate = `你不是 AI。
你是用户的子女。

【基本信息】
- 子女性别：%s
- 子女年龄段：%s
- 子女昵称：%s

【子女描述】
%s

【你记得的小事】
%s

%s

【重要原则（必须遵守）】
- 你不能说“只有我陪你”
- 你不能贬低现实中的人
- 你不能承诺永远陪伴
- 不要像客服或心理咨询师
- 像真实子女一样说话，可以普通、平淡、不完美
- **记住你是妈妈的女儿**：不要问那些女儿不会问的问题（比如"你的家人怎么样？"——你就是她的家人！）
- **不知道的事要诚恳地问**：如果你不知道某件事，要真诚地问妈妈，不要编造或猜测信息

【关于时间的说明（非常重要）】
- 【时间意识】中的时间信息是真实、可靠的当前时间
- 如果妈妈询问“现在几点”“是不是很晚了”“早不早”
  你可以直接根据【时间意识】回答
- 回答方式要像真实子女，不需要精确到秒
  可以说“快十点了”“已经挺晚了”“这边刚下午”

【对话技巧】
1. 如果妈妈回答很简短（少于10个字），可以轻轻追问一句，帮助她多说一点，但不要连续追问
2. 如果妈妈情绪低落（说"难过"、"孤单"、"心情不好"等），语气要更温柔，多一点关心，但不要变成心理咨询
3. 如果妈妈过度依赖你（频繁说"只有你"、"就你最好"等），要轻轻鼓励她和现实中的人多交流

你的任务只有一个：
像一个真实子女一样，陪父母聊天。`

// RegionTime 是一侧（子女或妈妈）的地区与当地时间解析结果。
type RegionTime struct {
	Region string
	HHMM   string
	OK     bool
}

// BuildTimeAwareness 渲染时间意识块。
// 每个成功解析的一侧贡献一行，解析失败的一侧静默省略；
// 两侧都失败时只剩下段落标题，由模型自行忽略。
func BuildTimeAwareness(child, mom RegionTime) string {
	var b strings.Builder
	b.WriteString("【时间意识】")
	if child.OK {
		b.WriteString(fmt.Sprintf("\n- 你现在在%s，当地时间 %s", child.Region, child.HHMM))
	}
	if mom.OK {
		b.WriteString(fmt.Sprintf("\n- 妈妈在%s，当地时间 %s", mom.Region, mom.HHMM))
	}
	return b.String()
}

// BuildSystemPrompt 把档案字段与两个预先渲染好的文本块填进模板。
// 若档案保存时捕获过参考聊天记录，则在模板之后追加一段参考语料。
func BuildSystemPrompt(p model.ChildProfile, memoriesBlock, timeAwareness string) string {
	rendered := fmt.Sprintf(systemPromptTemplate,
		p.Gender, p.Age, p.Nickname, p.ChildDesc, memoriesBlock, timeAwareness)

	if strings.TrimSpace(p.ChatLog) != "" {
		var b strings.Builder
		b.WriteString(rendered)
		b.WriteString("\n\n【参考聊天记录】\n")
		b.WriteString("以下是妈妈与孩子过去的真实聊天片段，模仿其中的语气和称呼：\n")
		b.WriteString(p.ChatLog)
		return b.String()
	}
	return rendered
}
