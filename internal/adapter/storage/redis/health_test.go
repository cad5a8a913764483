package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestHealthCheck_Ping(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	check := NewHealthCheck(client)

	assert.NoError(t, check.Ping(context.Background()))
	assert.Equal(t, "redis", check.Name())

	s.Close()
	assert.Error(t, check.Ping(context.Background()))
}
