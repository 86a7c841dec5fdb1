package store_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/Clark-Hu/popcorn-palace/internal/store"
	"github.com/Clark-Hu/popcorn-palace/internal/store/storetest"
)

func TestStoreHealthAndStats(t *testing.T) {
	st := storetest.NewStore(t, store.Options{
		MaxConns:               4,
		ConnTimeout:            5 * time.Second,
		StatementCacheCapacity: 32,
		Logger:                 log.New(io.Discard, "", 0),
	})

	if err := st.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	stats := st.Stats()
	if stats.Max != 4 {
		t.Fatalf("Max = %d, want 4", stats.Max)
	}
	if stats.Total < 1 || stats.Idle+stats.Acquired != stats.Total {
		t.Fatalf("inconsistent stats %+v", stats)
	}
}

func TestNilStore(t *testing.T) {
	var st *store.Store
	if err := st.HealthCheck(context.Background()); err == nil {
		t.Fatalf("expected error from nil store")
	}
	if got := st.Stats(); got != (store.PoolStats{}) {
		t.Fatalf("Stats = %+v, want zero", got)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := store.New(context.Background(), "://nope", store.Options{Logger: log.New(io.Discard, "", 0)}); err == nil {
		t.Fatalf("expected parse error")
	}
}
