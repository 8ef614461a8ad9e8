package cache

import (
	"context"
	"errors"
	"os"
	"sync"

	"facegate.io/infrastructure/logger"
	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *redis.Client
}

var (
	instance *RedisClient
	once     sync.Once
)

func ConnectToCache() {
	once.Do(func() {
		client := redis.NewClient(&redis.Options{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
			PoolSize: 10,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Warning("an error occured while connecting to redis", logger.LoggerOptions{Key: "error", Data: err})
		}
		instance = &RedisClient{Client: client}
		logger.Info("connected to redis successfully")
	})
}

func GetInstance() (*RedisClient, error) {
	if instance == nil {
		return nil, errors.New("redis client has not been initialised")
	}
	return instance, nil
}
