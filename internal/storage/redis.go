package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
)

var Rdb *redis.Client

func InitRedis(addr, password string, db int) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return Rdb.Ping(context.Background()).Err()
}

func CloseRedis() {
	if Rdb != nil {
		_ = Rdb.Close()
	}
}
