// Package database 负责创建 MySQL 与 Redis 的连接句柄。
// 句柄在进程启动时构造一次，由 main 注入到需要它们的组件中。
package database

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/ShuyangenFrance/AI-kid/internal/model"
	"github.com/ShuyangenFrance/AI-kid/pkg/log"
)

// NewMySQL 建立 MySQL 连接并完成表结构迁移。
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&model.User{}, &model.ChatRecord{}, &model.Conversation{}); err != nil {
		return nil, err
	}

	log.Info("MySQL database connected successfully")
	return db, nil
}
