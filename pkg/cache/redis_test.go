package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheSetGet(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	rc := NewRedisCacheFromClient(db, "pb")

	payload, _ := json.Marshal(view{Count: 3})
	mock.ExpectSet("pb:universe", payload, 5*time.Minute).SetVal("OK")
	mock.ExpectGet("pb:universe").SetVal(string(payload))
	mock.ExpectGet("pb:gone").RedisNil()

	require.NoError(t, rc.Set(ctx, "universe", view{Count: 3}, 5*time.Minute))

	got, err := GetTyped[view](ctx, rc, "universe")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count)

	_, err = GetTyped[view](ctx, rc, "gone")
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayeredCacheFillsMemoryFromRedis(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	lc := NewLayeredCache(NewRedisCacheFromClient(db, "pb"), WithLayeredMemoryTTL(time.Minute))
	defer lc.memCache.Close()

	payload, _ := json.Marshal(view{Count: 7})
	mock.ExpectGet("pb:signals").SetVal(string(payload))

	first, err := GetTyped[view](ctx, lc, "signals")
	require.NoError(t, err)
	assert.Equal(t, 7, first.Count)

	// second read is served by L1; no further redis expectation is registered
	second, err := GetTyped[view](ctx, lc, "signals")
	require.NoError(t, err)
	assert.Equal(t, 7, second.Count)

	assert.NoError(t, mock.ExpectationsWereMet())
}
