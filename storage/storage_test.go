package storage

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func object(key string, age time.Duration) types.Object {
	return types.Object{
		Key:          aws.String(key),
		LastModified: aws.Time(time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC).Add(-age)),
	}
}

func keys(objs []types.Object) []string {
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		out = append(out, aws.ToString(o.Key))
	}
	return out
}

func TestStaleObjects(t *testing.T) {
	objs := []types.Object{
		object("b", 48*time.Hour),
		object("a", 72*time.Hour),
		object("d", 0),
		object("c", 24*time.Hour),
	}

	assert.Equal(t, []string{"b", "a"}, keys(StaleObjects(objs, 2)))
	assert.Equal(t, []string{"b", "a", "d", "c"}, keys(objs), "input order is preserved")
	assert.Empty(t, StaleObjects(objs, 4))
	assert.Empty(t, StaleObjects(objs, 10))
	assert.Len(t, StaleObjects(objs, -1), 4)
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "https://s3.test/snapshots/snapshots/treks/x.json.gz",
		ObjectURL("https://s3.test/", "snapshots", "snapshots/treks/x.json.gz"))
}

func TestResponseCache_UnreachableRedisIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewResponseCache(client, time.Minute, zap.NewNop())
	ctx := context.Background()

	cache.Set(ctx, "/treks", []byte(`[]`))
	_, ok := cache.Get(ctx, "/treks")
	assert.False(t, ok)
	cache.Invalidate(ctx, "/treks")
}
