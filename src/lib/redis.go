package lib

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var redisClient *redis.Client

// GetRedisClient parses a redis:// URL once and reuses the client afterwards.
func GetRedisClient(redisHost string) (*redis.Client, error) {
	if redisClient != nil {
		return redisClient, nil
	}
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("[redis] ping failed: %w", err)
	}
	redisClient = rdb
	return rdb, nil
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}
