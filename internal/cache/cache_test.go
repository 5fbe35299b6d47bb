package cache_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servimas/cortineros/internal/cache"
	"github.com/servimas/cortineros/internal/ledger"
)

var (
	accountID = uuid.MustParse("9a3e4b1c-5d6f-4e7a-8b9c-0d1e2f3a4b5c")
	day       = time.Date(2024, 11, 25, 0, 0, 0, 0, time.UTC)
)

func fixtures(t *testing.T) ([]ledger.Movement, []ledger.Entry) {
	t.Helper()

	movs := []ledger.Movement{
		{ID: uuid.New(), AccountID: accountID, Kind: ledger.KindDelivery, Amount: 35000, Date: day, CreatedAt: day},
		{ID: uuid.New(), AccountID: accountID, Kind: ledger.KindPayment, Amount: 20000, Date: day, CreatedAt: day.Add(time.Hour)},
	}

	entries, err := ledger.Project(movs)
	require.NoError(t, err)

	return movs, entries
}

func TestKey(t *testing.T) {
	movs, _ := fixtures(t)

	key := cache.Key(accountID, movs)
	assert.Regexp(t, `^ledger:9a3e4b1c-5d6f-4e7a-8b9c-0d1e2f3a4b5c:[0-9a-f]{16}$`, key)

	reversed := []ledger.Movement{movs[1], movs[0]}
	assert.Equal(t, key, cache.Key(accountID, reversed), "order must not matter")

	edited := []ledger.Movement{movs[0], movs[1]}
	edited[1].Amount = 25000
	assert.NotEqual(t, key, cache.Key(accountID, edited))

	voided := []ledger.Movement{movs[0], movs[1]}
	voided[1].VoidedAt = new(day)
	assert.NotEqual(t, key, cache.Key(accountID, voided))

	assert.NotEqual(t, key, cache.Key(accountID, movs[:1]))
	assert.NotEqual(t, key, cache.Key(uuid.New(), movs))
}

func TestProjections_Get(t *testing.T) {
	movs, entries := fixtures(t)
	key := cache.Key(accountID, movs)

	data, err := json.Marshal(entries)
	require.NoError(t, err)

	t.Run("hit", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(key).SetVal(string(data))

		got, ok := cache.New(rdb, time.Minute, zerolog.Nop()).Get(context.Background(), accountID, movs)
		require.True(t, ok)
		assert.Equal(t, entries, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(key).RedisNil()

		var logs bytes.Buffer

		_, ok := cache.New(rdb, time.Minute, zerolog.New(&logs)).Get(context.Background(), accountID, movs)
		assert.False(t, ok)
		assert.Empty(t, logs.String())
	})

	t.Run("redis down", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(key).SetErr(errors.New("connection refused"))

		var logs bytes.Buffer

		_, ok := cache.New(rdb, time.Minute, zerolog.New(&logs)).Get(context.Background(), accountID, movs)
		assert.False(t, ok)
		assert.Contains(t, logs.String(), "connection refused")
	})

	t.Run("corrupt value", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(key).SetVal("{not json")

		_, ok := cache.New(rdb, time.Minute, zerolog.Nop()).Get(context.Background(), accountID, movs)
		assert.False(t, ok)
	})
}

func TestProjections_Set(t *testing.T) {
	movs, entries := fixtures(t)
	key := cache.Key(accountID, movs)

	data, err := json.Marshal(entries)
	require.NoError(t, err)

	rdb, mock := redismock.NewClientMock()
	mock.ExpectSet(key, data, 5*time.Minute).SetVal("OK")

	cache.New(rdb, 5*time.Minute, zerolog.Nop()).Set(context.Background(), accountID, movs, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
