// Package model 包含了应用的数据模型定义。
package model

import "time"

// User 对应于数据库中的 'users' 表，代表一位注册的家长用户。
// Profile 字段以 JSON 文档的形式整体存储，按用户名整体读写。
type User struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Username  string       `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password  string       `gorm:"type:varchar(255);not null" json:"-"`
	Role      string       `gorm:"type:varchar(20);not null;default:USER" json:"role"`
	Profile   ChildProfile `gorm:"serializer:json;type:json" json:"profile"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (User) TableName() string {
	return "users"
}
