package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	redisClient "facegate.io/infrastructure/database/connection/cache"
	"facegate.io/infrastructure/logger"
)

var Cache RedisRepository

type RedisRepository struct {
	Client *redis.Client
}

func (redisRepo *RedisRepository) preRequest() {
	if redisRepo.Client == nil {
		client, _ := redisClient.GetInstance()
		redisRepo.Client = client.Client
		logger.Info("redis repository initialisation complete")
	}
}

func (redisRepo *RedisRepository) CreateEntry(key string, payload interface{}, ttl time.Duration) bool {
	redisRepo.preRequest()
	ctx := context.Background()
	_, err := redisRepo.Client.Set(ctx, key, payload, ttl).Result()
	if err != nil {
		logger.Error("redis error occured while running CreateEntry", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return true
}

func (redisRepo *RedisRepository) FindOne(key string) *string {
	redisRepo.preRequest()
	ctx := context.Background()

	result, err := redisRepo.Client.Get(ctx, key).Result()

	if err != nil {
		if err.Error() == "redis: nil" {
			return nil
		}
		logger.Error("redis error occured while running FindOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return nil
	}
	return &result
}

func (redisRepo *RedisRepository) DeleteOne(key string) bool {
	redisRepo.preRequest()
	ctx := context.Background()

	result, err := redisRepo.Client.Del(ctx, key).Result()

	if err != nil {
		logger.Error("redis error occured while running DeleteOne", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return false
	}
	return int(result) == 1
}

// Publish fans a payload out to every subscriber of the channel.
func (redisRepo *RedisRepository) Publish(channel string, payload interface{}) bool {
	redisRepo.preRequest()
	ctx := context.Background()

	if err := redisRepo.Client.Publish(ctx, channel, payload).Err(); err != nil {
		logger.Error("redis error occured while running Publish", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "channel",
			Data: channel,
		})
		return false
	}
	return true
}

// Subscribe runs the handler on every message received on the channel until
// the context is cancelled. Delivery runs on its own goroutine.
func (redisRepo *RedisRepository) Subscribe(ctx context.Context, channel string, handler func(payload string)) error {
	redisRepo.preRequest()

	sub := redisRepo.Client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		logger.Error("redis error occured while running Subscribe", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "channel",
			Data: channel,
		})
		sub.Close()
		return err
	}

	go func() {
		defer sub.Close()
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				handler(msg.Payload)
			}
		}
	}()
	return nil
}
