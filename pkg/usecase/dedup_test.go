package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/atlas/pkg/domain/types"
	"github.com/secmon-lab/atlas/pkg/repository/memory"
	"github.com/secmon-lab/atlas/pkg/usecase"
)

func TestDedupCache(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	key := types.IssueKey("PROJ-1")

	t.Run("unseen key", func(t *testing.T) {
		cache := usecase.NewDedupCache(memory.New().Seen(), time.Minute)
		_, ok := cache.WasSeen(ctx, "general", key, t0)
		gt.Bool(t, ok).False()
	})

	t.Run("seen within blackout", func(t *testing.T) {
		cache := usecase.NewDedupCache(memory.New().Seen(), time.Minute)
		gt.NoError(t, cache.MarkSeen(ctx, "general", key, t0)).Required()

		seenAt, ok := cache.WasSeen(ctx, "general", key, t0.Add(59*time.Second))
		gt.Bool(t, ok).True()
		gt.Value(t, seenAt).Equal(t0)
	})

	t.Run("expired at blackout boundary", func(t *testing.T) {
		cache := usecase.NewDedupCache(memory.New().Seen(), time.Minute)
		gt.NoError(t, cache.MarkSeen(ctx, "general", key, t0)).Required()

		_, ok := cache.WasSeen(ctx, "general", key, t0.Add(time.Minute))
		gt.Bool(t, ok).False()
	})

	t.Run("scoped by channel", func(t *testing.T) {
		cache := usecase.NewDedupCache(memory.New().Seen(), time.Minute)
		gt.NoError(t, cache.MarkSeen(ctx, "general", key, t0)).Required()

		_, ok := cache.WasSeen(ctx, "random", key, t0)
		gt.Bool(t, ok).False()
		_, ok = cache.WasSeen(ctx, "general", types.IssueKey("PROJ-2"), t0)
		gt.Bool(t, ok).False()
	})

	t.Run("mark again extends window", func(t *testing.T) {
		cache := usecase.NewDedupCache(memory.New().Seen(), time.Minute)
		gt.NoError(t, cache.MarkSeen(ctx, "general", key, t0)).Required()
		gt.NoError(t, cache.MarkSeen(ctx, "general", key, t0.Add(30*time.Second))).Required()

		seenAt, ok := cache.WasSeen(ctx, "general", key, t0.Add(80*time.Second))
		gt.Bool(t, ok).True()
		gt.Value(t, seenAt).Equal(t0.Add(30 * time.Second))
	})

	t.Run("non-positive blackout uses default", func(t *testing.T) {
		cache := usecase.NewDedupCache(memory.New().Seen(), 0)
		gt.Value(t, cache.Blackout()).Equal(usecase.DefaultBlackout)
	})

	t.Run("store failure with fail-open policy", func(t *testing.T) {
		cache := usecase.NewDedupCache(failingSeenRepository{}, time.Minute)
		_, ok := cache.WasSeen(ctx, "general", key, t0)
		gt.Bool(t, ok).False()
	})

	t.Run("store failure with fail-closed policy", func(t *testing.T) {
		cache := usecase.NewDedupCache(failingSeenRepository{}, time.Minute, usecase.WithFailurePolicy(types.DedupFailClosed))
		_, ok := cache.WasSeen(ctx, "general", key, t0)
		gt.Bool(t, ok).True()
	})

	t.Run("mark seen failure is returned", func(t *testing.T) {
		cache := usecase.NewDedupCache(failingSeenRepository{}, time.Minute)
		gt.Error(t, cache.MarkSeen(ctx, "general", key, t0)).Is(errBoom)
	})

	t.Run("prune removes expired records", func(t *testing.T) {
		cache := usecase.NewDedupCache(memory.New().Seen(), time.Minute)
		gt.NoError(t, cache.MarkSeen(ctx, "general", key, t0)).Required()
		gt.NoError(t, cache.MarkSeen(ctx, "general", types.IssueKey("PROJ-2"), t0.Add(30*time.Second))).Required()

		n, err := cache.Prune(ctx, t0.Add(80*time.Second))
		gt.NoError(t, err).Required()
		gt.Value(t, n).Equal(1)
	})
}
