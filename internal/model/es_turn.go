// Package model 包含了应用的数据模型定义。
package model

import "time"

// EsTurn 代表存储在 Elasticsearch 中的一轮对话文档。
type EsTurn struct {
	TurnID    string    `json:"turn_id"`
	Username  string    `json:"username"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// TurnSearchResult 定义了返回给子女端检索页的结果结构。
type TurnSearchResult struct {
	TurnID    string    `json:"turnId"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Score     float64   `json:"score"`
	CreatedAt LocalTime `json:"createdAt"`
}
