package database

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/ShuyangenFrance/AI-kid/pkg/log"
)

// NewRedis 建立 Redis 连接并验证连通性。
func NewRedis(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	log.Info("Redis client connected successfully")
	return rdb, nil
}
