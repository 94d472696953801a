package shutdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"photo-restorer/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestShutdownRunsInReverseOrderOnce(t *testing.T) {
	m := NewManager(logger.NewNop(), time.Second)

	var mu sync.Mutex
	var order []string
	record := func(name string) Component {
		return ComponentFunc(func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		})
	}

	m.Register("first", record("first"))
	m.Register("second", record("second"))
	m.Register("failing", ComponentFunc(func(context.Context) error { return errors.New("boom") }))
	m.Register("third", record("third"))

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Error(t, m.Context().Err())

	select {
	case <-m.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestShutdownTimesOutSlowComponent(t *testing.T) {
	m := NewManager(logger.NewNop(), 20*time.Millisecond)
	release := make(chan struct{})
	defer close(release)

	var ranAfter bool
	m.Register("after", ComponentFunc(func(context.Context) error {
		ranAfter = true
		return nil
	}))
	m.Register("slow", ComponentFunc(func(context.Context) error {
		<-release
		return nil
	}))

	start := time.Now()
	m.Shutdown()

	assert.True(t, ranAfter)
	assert.Less(t, time.Since(start), time.Second)
}
