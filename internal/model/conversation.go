// Package model 包含了应用的数据模型定义。
package model

import "time"

// 消息角色与展示昵称。user 角色的消息固定以"妈妈"作为展示标题，
// assistant 角色使用档案中的子女昵称。
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	MomTitle = "妈妈"
)

// ChatMessage 代表对话记录中的单条消息。
type ChatMessage struct {
	Role      string    `json:"role"` // "user" 或 "assistant"
	Content   string    `json:"content"`
	Title     string    `json:"title"` // 展示昵称："妈妈" 或子女昵称
	Timestamp time.Time `json:"timestamp"`
}

// ChatRecord 对应于数据库中的 'chats' 表。
// 每个用户名对应一份完整的消息列表文档，保存时整体覆盖（last-write-wins）。
type ChatRecord struct {
	Username  string        `gorm:"type:varchar(100);primaryKey" json:"username"`
	History   []ChatMessage `gorm:"serializer:json;type:json" json:"history"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (ChatRecord) TableName() string {
	return "chats"
}

// Conversation 代表归档表中的一次问答交互，由后台消费者异步写入，
// 供子女端检索与审计使用，不参与对话上下文的构建。
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TurnID    string    `gorm:"type:varchar(64);uniqueIndex" json:"turnId"`
	Username  string    `gorm:"type:varchar(100);index;not null" json:"username"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}
