// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "time"

// TurnArchiveTask 表示一轮已完成对话的归档任务。
// 由会话编排在持久化成功后投递，消费者写入归档表并建立检索索引。
type TurnArchiveTask struct {
	TurnID    string    `json:"turn_id"`
	Username  string    `json:"username"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}
