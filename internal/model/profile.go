package model

// 子女档案的枚举取值与默认值，与前端初始化页面的选项保持一致。
const (
	GenderMale   = "男"
	GenderFemale = "女"

	AgeStudent     = "学生"
	AgeEarlyCareer = "刚工作"
	AgeVeteran     = "工作多年"

	DefaultNickname = "孩子"
	DefaultCity     = "UTC+8（北京、上海、香港）"
)

// MaxMemories 是档案中保留的记忆条数上限，超出后从最旧的一条开始淘汰。
const MaxMemories = 20

// ChildProfile 是家长在初始化页面填写的子女档案，作为 users 表中的一个 JSON 文档整体存取。
// Memories 由记忆提取逻辑追加，其余字段仅在保存档案时被改写。
type ChildProfile struct {
	Gender    string   `json:"gender"`
	Age       string   `json:"age"`
	Nickname  string   `json:"nickname"`
	ChildDesc string   `json:"child_desc"`
	ChatLog   string   `json:"chat_log"`
	ChildCity string   `json:"child_city"`
	MomCity   string   `json:"mom_city"`
	Memories  []string `json:"memories"`
}

// IsZero 判断档案是否从未初始化过（区分"用户不存在"与"档案未填写"）。
func (p ChildProfile) IsZero() bool {
	return p.Gender == "" && p.Age == "" && p.Nickname == "" && len(p.Memories) == 0
}

// ApplyDefaults 为缺失字段补全默认值，防止老数据缺字段导致渲染出错。
func (p *ChildProfile) ApplyDefaults() {
	if p.Gender == "" {
		p.Gender = GenderFemale
	}
	if p.Age == "" {
		p.Age = AgeStudent
	}
	if p.Nickname == "" {
		p.Nickname = DefaultNickname
	}
	if p.ChildCity == "" {
		p.ChildCity = DefaultCity
	}
	if p.MomCity == "" {
		p.MomCity = DefaultCity
	}
	if p.Memories == nil {
		p.Memories = []string{}
	}
}

// IsReady 判断档案是否已完成必填项，未完成时前端应引导用户先初始化。
func (p ChildProfile) IsReady() bool {
	return p.Gender != "" && p.Age != "" && p.ChildCity != "" && p.MomCity != ""
}
