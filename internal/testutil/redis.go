package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetupTestRedis connects to the Redis named by LEARNPORTAL_TEST_REDIS_ADDR.
// Each test gets a unique key prefix; keys under it are removed on cleanup.
// Tests are skipped when the variable is unset or the server is unreachable.
func SetupTestRedis(t *testing.T) (*redis.Client, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping Redis test in short mode")
	}
	addr := os.Getenv("LEARNPORTAL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LEARNPORTAL_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	prefix := "learnportal_test:" + time.Now().Format("150405.000000000") + ":"
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
		_ = client.Close()
	})
	return client, prefix
}
