// Package cache keeps projected ledgers in Redis.
//
// Entries are keyed by a fingerprint of the exact movements they were folded
// from, so any create, edit or void produces a new key and a stale projection
// is never served. Old keys simply expire.
package cache

import (
	"cmp"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"slices"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/servimas/cortineros/internal/ledger"
)

const DefaultTTL = 10 * time.Minute

type Projections struct {
	rdb redis.Cmdable
	ttl time.Duration
	log zerolog.Logger
}

func New(rdb redis.Cmdable, ttl time.Duration, log zerolog.Logger) *Projections {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Projections{rdb: rdb, ttl: ttl, log: log}
}

// Get returns the cached projection of movs. Misses and Redis failures both
// report false.
func (p *Projections) Get(ctx context.Context, accountID uuid.UUID, movs []ledger.Movement) ([]ledger.Entry, bool) {
	key := Key(accountID, movs)

	data, err := p.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			p.log.Warn().Err(err).Str("key", key).Msg("reading cached ledger")
		}

		return nil, false
	}

	var entries []ledger.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("decoding cached ledger")
		return nil, false
	}

	return entries, true
}

func (p *Projections) Set(ctx context.Context, accountID uuid.UUID, movs []ledger.Movement, entries []ledger.Entry) {
	key := Key(accountID, movs)

	data, err := json.Marshal(entries)
	if err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("encoding ledger for cache")
		return
	}

	if err := p.rdb.Set(ctx, key, data, p.ttl).Err(); err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("writing cached ledger")
	}
}

// Key is ledger:<accountId>:<fingerprint>. The fingerprint does not depend on
// the order of movs.
func Key(accountID uuid.UUID, movs []ledger.Movement) string {
	return fmt.Sprintf("ledger:%s:%016x", accountID, fingerprint(movs))
}

func fingerprint(movs []ledger.Movement) uint64 {
	sorted := slices.Clone(movs)
	slices.SortFunc(sorted, func(a, b ledger.Movement) int {
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	h := fnv.New64a()

	var buf [8]byte

	writeInt := func(v int64) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}

	writeStr := func(s string) {
		writeInt(int64(len(s)))
		h.Write([]byte(s))
	}

	writeTime := func(t *time.Time) {
		if t == nil {
			writeInt(0)
			return
		}

		writeInt(t.UnixNano())
	}

	for _, m := range sorted {
		h.Write(m.ID[:])
		writeStr(string(m.Kind))
		writeInt(m.Amount)
		writeTime(&m.Date)
		writeTime(&m.CreatedAt)
		writeTime(m.UpdatedAt)
		writeTime(m.VoidedAt)
		writeStr(m.Description)
		writeStr(m.PaymentMethod)
		writeStr(m.Note)
	}

	return h.Sum64()
}
