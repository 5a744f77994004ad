package deferred

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ---------------------------------------------------------------------------
// ManualScheduler
// ---------------------------------------------------------------------------

func TestManualScheduler_RunsInDueOrder(t *testing.T) {
	s := NewManualScheduler()
	var got []string
	s.Submit(30*time.Millisecond, func() { got = append(got, "c") })
	s.Submit(10*time.Millisecond, func() { got = append(got, "a") })
	s.Submit(10*time.Millisecond, func() { got = append(got, "b") })

	s.Advance(5 * time.Millisecond)
	assert.Empty(t, got)
	s.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, got)
	s.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Zero(t, s.Pending())
}

func TestManualScheduler_CancelAndReplace(t *testing.T) {
	s := NewManualScheduler()
	var got []int
	tok := s.Submit(10*time.Millisecond, func() { got = append(got, 1) })
	assert.True(t, s.Cancel(tok))
	assert.False(t, s.Cancel(tok))

	tok = s.Submit(10*time.Millisecond, func() { got = append(got, 2) })
	s.Replace(tok, 10*time.Millisecond, func() { got = append(got, 3) })
	s.Advance(time.Second)
	assert.Equal(t, []int{3}, got)
}

func TestManualScheduler_CallbackMaySchedule(t *testing.T) {
	s := NewManualScheduler()
	var got []int
	s.Submit(10*time.Millisecond, func() {
		got = append(got, 1)
		s.Submit(10*time.Millisecond, func() { got = append(got, 2) })
	})
	s.Advance(15 * time.Millisecond)
	assert.Equal(t, []int{1}, got)
	s.Advance(5 * time.Millisecond)
	assert.Equal(t, []int{1, 2}, got)
}

// ---------------------------------------------------------------------------
// TimerScheduler
// ---------------------------------------------------------------------------

func TestTimerScheduler_Fires(t *testing.T) {
	s := NewTimerScheduler()
	defer s.Close()

	done := make(chan struct{})
	s.Submit(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback did not run")
	}
}

func TestTimerScheduler_ReplaceDropsOld(t *testing.T) {
	s := NewTimerScheduler()
	defer s.Close()

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})
	tok := s.Submit(50*time.Millisecond, func() {
		mu.Lock()
		got = append(got, 1)
		mu.Unlock()
	})
	s.Replace(tok, 5*time.Millisecond, func() {
		mu.Lock()
		got = append(got, 2)
		mu.Unlock()
		close(done)
	})
	<-done
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{2}, got)
}

func TestTimerScheduler_Close(t *testing.T) {
	s := NewTimerScheduler()
	ran := make(chan struct{}, 1)
	s.Submit(20*time.Millisecond, func() { ran <- struct{}{} })
	require.Equal(t, 1, s.Pending())
	s.Close()
	assert.Zero(t, s.Pending())

	s.Submit(time.Millisecond, func() { ran <- struct{}{} })
	select {
	case <-ran:
		t.Fatal("callback ran after Close")
	case <-time.After(60 * time.Millisecond):
	}
}

// ---------------------------------------------------------------------------
// Value
// ---------------------------------------------------------------------------

func TestValue_SettlesAfterDelay(t *testing.T) {
	s := NewManualScheduler()
	v := NewValue(s, "", WithDelay[string](100*time.Millisecond))

	v.Set("a")
	assert.Equal(t, "a", v.Urgent())
	assert.Equal(t, "", v.Deferred())
	assert.True(t, v.IsPending())

	s.Advance(99 * time.Millisecond)
	assert.True(t, v.IsPending())
	s.Advance(time.Millisecond)
	assert.Equal(t, "a", v.Deferred())
	assert.False(t, v.IsPending())
}

func TestValue_BurstCoalescesToNewest(t *testing.T) {
	s := NewManualScheduler()
	var seen []string
	v := NewValue(s, "", WithDelay[string](100*time.Millisecond), OnSettle(func(x string) {
		seen = append(seen, x)
	}))

	v.Set("v1")
	s.Advance(50 * time.Millisecond)
	v.Set("v2")
	s.Advance(50 * time.Millisecond)
	// v1's settle would have been due now; it was replaced.
	assert.Equal(t, "", v.Deferred())
	s.Advance(50 * time.Millisecond)

	assert.Equal(t, "v2", v.Deferred())
	assert.Equal(t, []string{"v2"}, seen, "deferred must never pass through v1")
	assert.Zero(t, s.Pending())
}

func TestValue_ResetDiscardsInFlight(t *testing.T) {
	s := NewManualScheduler()
	v := NewValue(s, 0, WithDelay[int](10*time.Millisecond))
	v.Set(1)
	v.Reset(7)
	assert.Equal(t, 7, v.Urgent())
	assert.Equal(t, 7, v.Deferred())
	s.Advance(time.Second)
	assert.Equal(t, 7, v.Deferred())
}

func TestValue_DeferredOnlyTakesUrgentHistory(t *testing.T) {
	s := NewTimerScheduler()
	defer s.Close()

	var mu sync.Mutex
	written := map[int]bool{0: true}
	settled := make(chan int, 100)
	v := NewValue(s, 0, WithDelay[int](2*time.Millisecond), OnSettle(func(x int) { settled <- x }))

	for i := 1; i <= 50; i++ {
		mu.Lock()
		written[i] = true
		mu.Unlock()
		v.Set(i)
		if i%10 == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}

	require.Eventually(t, func() bool { return !v.IsPending() }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 50, v.Deferred())

	mu.Lock()
	defer mu.Unlock()
	var got []int
	for {
		select {
		case x := <-settled:
			assert.True(t, written[x], "settled on %d which was never written", x)
			got = append(got, x)
			continue
		case <-time.After(50 * time.Millisecond):
		}
		break
	}
	assert.Contains(t, got, 50)
}

func TestValue_ConcurrentWriters(t *testing.T) {
	s := NewTimerScheduler()
	defer s.Close()
	v := NewValue(s, 0, WithDelay[int](time.Millisecond))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				v.Set(w*1000 + i)
				_ = v.IsPending()
			}
		}(w)
	}
	wg.Wait()
	require.Eventually(t, func() bool { return !v.IsPending() }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, v.Urgent(), v.Deferred())
}
