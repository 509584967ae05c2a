package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"userhub/internal/apperror"
	"userhub/internal/model"

	"github.com/stretchr/testify/require"
)

func TestMemoryInsertAndGet(t *testing.T) {
	s := NewMemoryUserStore()
	ctx := context.Background()

	u, err := s.Insert(ctx, &model.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	require.Equal(t, 1, u.ID)
	require.False(t, u.CreatedAt.IsZero())

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, *u, *got)

	_, err = s.GetByID(ctx, 42)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMemoryDuplicates(t *testing.T) {
	s := NewMemoryUserStore()
	ctx := context.Background()
	_, err := s.Insert(ctx, &model.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = s.Insert(ctx, &model.User{Username: "alice", Email: "other@x.com"})
	require.ErrorIs(t, err, apperror.ErrDuplicateKey)

	_, err = s.Insert(ctx, &model.User{Username: "bob", Email: "a@x.com"})
	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, "email", ae.Field)

	users, err := s.List(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestMemoryConcurrentDuplicate(t *testing.T) {
	s := NewMemoryUserStore()
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Insert(ctx, &model.User{Username: "same", Email: fmt.Sprintf("u%d@x.com", i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, apperror.ErrDuplicateKey)
	}
	require.Equal(t, 1, ok)

	users, err := s.List(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestMemoryListOrderAndFilters(t *testing.T) {
	s := NewMemoryUserStore()
	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Insert(ctx, &model.User{
			Username: fmt.Sprintf("u%d", i),
			Email:    fmt.Sprintf("u%d@x.com", i),
			IsAdmin:  i%2 == 0,
		})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		require.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt))
	}
	require.Equal(t, "u4", all[0].Username)

	nonAdmin, err := s.List(ctx, true, 0)
	require.NoError(t, err)
	require.Len(t, nonAdmin, 2)
	for _, u := range nonAdmin {
		require.False(t, u.IsAdmin)
	}

	capped, err := s.List(ctx, false, 3)
	require.NoError(t, err)
	require.Len(t, capped, 3)
}

func TestMemoryInsertCanceled(t *testing.T) {
	s := NewMemoryUserStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Insert(ctx, &model.User{Username: "a", Email: "a@x.com"})
	require.ErrorIs(t, err, apperror.ErrStore)
}
