package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/domain"
	"github.com/redis/go-redis/v9"
)

var lifecycle = []domain.AssetState{
	domain.AssetUploaded,
	domain.AssetPromoted,
	domain.AssetReferenced,
	domain.AssetDeleted,
}

// AssetLedger keeps one hash per asset (state, time of last change) and one
// sorted set per state scored by that time, so stale assets of a state can
// be listed with a single range query.
type AssetLedger struct {
	client     *redis.Client
	prefix     string
	deletedTTL time.Duration
	now        func() time.Time
}

func NewAssetLedgerFromClient(client *redis.Client) *AssetLedger {
	return &AssetLedger{
		client:     client,
		prefix:     "rental:assets",
		deletedTTL: 7 * 24 * time.Hour,
		now:        time.Now,
	}
}

func (l *AssetLedger) assetKey(path string) string { return l.prefix + ":asset:" + path }
func (l *AssetLedger) stateKey(s domain.AssetState) string { return l.prefix + ":state:" + string(s) }

func (l *AssetLedger) Record(ctx context.Context, path string, state domain.AssetState) error {
	at := l.now()
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, s := range lifecycle {
			if s != state {
				pipe.ZRem(ctx, l.stateKey(s), path)
			}
		}
		pipe.ZAdd(ctx, l.stateKey(state), redis.Z{Score: float64(at.Unix()), Member: path})
		pipe.HSet(ctx, l.assetKey(path), "state", string(state), "at", at.Unix())
		if state == domain.AssetDeleted {
			pipe.Expire(ctx, l.assetKey(path), l.deletedTTL)
		} else {
			pipe.Persist(ctx, l.assetKey(path))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record %s as %s: %w", path, state, err)
	}
	return nil
}

func (l *AssetLedger) State(ctx context.Context, path string) (domain.AssetState, error) {
	s, err := l.client.HGet(ctx, l.assetKey(path), "state").Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("state of %s: %w", path, err)
	}
	return domain.AssetState(s), nil
}

// Stale lists assets that entered state strictly before the given time.
func (l *AssetLedger) Stale(ctx context.Context, state domain.AssetState, before time.Time) ([]string, error) {
	paths, err := l.client.ZRangeByScore(ctx, l.stateKey(state), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(before.Unix(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("stale %s assets: %w", state, err)
	}
	return paths, nil
}
