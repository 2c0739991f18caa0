package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type refresherFunc func(ctx context.Context) error

func (f refresherFunc) RefreshCategories(ctx context.Context) error { return f(ctx) }

func TestSchedulerRefreshesOnStart(t *testing.T) {
	called := make(chan struct{}, 1)
	s := New(refresherFunc(func(ctx context.Context) error {
		select {
		case called <- struct{}{}:
		default:
		}
		return nil
	}), time.Hour, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("catalog refresh did not run at start")
	}
}

func TestSchedulerSurvivesRefreshError(t *testing.T) {
	called := make(chan struct{}, 1)
	s := New(refresherFunc(func(ctx context.Context) error {
		select {
		case called <- struct{}{}:
		default:
		}
		return errors.New("schema unavailable")
	}), time.Hour, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("catalog refresh did not run at start")
	}
}
