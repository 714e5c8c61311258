package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskRunnerInline(t *testing.T) {
	r := NewTaskRunner(0, 0)
	ran := false
	r.Enqueue("inline", func(ctx context.Context) error {
		ran = true
		return nil
	})
	assert.True(t, ran)
	r.Shutdown(context.Background())
}

func TestTaskRunnerPoolDrainsOnShutdown(t *testing.T) {
	r := NewTaskRunner(3, 16)
	var n int32
	for i := 0; i < 10; i++ {
		r.Enqueue("count", func(ctx context.Context) error {
			atomic.AddInt32(&n, 1)
			return nil
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.Shutdown(ctx)
	assert.EqualValues(t, 10, atomic.LoadInt32(&n))
}

func TestTaskRunnerSurvivesFailures(t *testing.T) {
	r := NewTaskRunner(1, 4)
	var after int32
	r.Enqueue("boom", func(ctx context.Context) error { panic("boom") })
	r.Enqueue("fail", func(ctx context.Context) error { return errors.New("nope") })
	r.Enqueue("after", func(ctx context.Context) error {
		atomic.StoreInt32(&after, 1)
		return nil
	})
	r.Shutdown(context.Background())
	assert.EqualValues(t, 1, atomic.LoadInt32(&after))
}
