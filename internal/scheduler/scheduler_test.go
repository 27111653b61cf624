package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestScheduleFiresOnce(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var fired int32
	done := make(chan struct{})

	s.Schedule(1, time.Now(), func() {
		atomic.AddInt32(&fired, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not fire")
	}

	// Give a hypothetical second invocation time to show up
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
	assert.Equal(t, 0, s.Pending())
}

func TestScheduleReplacesDuplicateID(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var first, second int32
	done := make(chan struct{})

	s.Schedule(7, time.Now().Add(time.Hour), func() {
		atomic.AddInt32(&first, 1)
	})
	s.Schedule(7, time.Now(), func() {
		atomic.AddInt32(&second, 1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("replacement job did not fire")
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestCancel(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	s.Schedule(3, time.Now().Add(time.Hour), func() {
		t.Error("cancelled job fired")
	})
	assert.Equal(t, 1, s.Pending())

	s.Cancel(3)
	assert.Equal(t, 0, s.Pending())
}

func TestStopCancelsAll(t *testing.T) {
	s := New(zap.NewNop())

	for id := int64(1); id <= 3; id++ {
		s.Schedule(id, time.Now().Add(time.Hour), func() {})
	}
	assert.Equal(t, 3, s.Pending())

	s.Stop()
	assert.Equal(t, 0, s.Pending())
}
