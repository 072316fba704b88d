package clock

import (
	"context"
	"testing"
	"time"
)

func TestFakeAdvanceFires(t *testing.T) {
	start := time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)
	f := NewFake(start)

	timer := f.NewTimer(5 * time.Second)

	f.Advance(4 * time.Second)
	select {
	case <-timer.C():
		t.Fatal("timer fired before deadline")
	default:
	}

	f.Advance(time.Second)
	select {
	case got := <-timer.C():
		if want := start.Add(5 * time.Second); !got.Equal(want) {
			t.Errorf("fired at %v, want %v", got, want)
		}
	default:
		t.Fatal("timer did not fire at deadline")
	}

	if f.Waiters() != 0 {
		t.Errorf("Waiters() = %d, want 0", f.Waiters())
	}
}

func TestFakeStop(t *testing.T) {
	f := NewFake(time.Now())

	timer := f.NewTimer(time.Second)
	if f.Waiters() != 1 {
		t.Fatalf("Waiters() = %d, want 1", f.Waiters())
	}

	if !timer.Stop() {
		t.Error("Stop() = false, want true for pending timer")
	}
	if timer.Stop() {
		t.Error("second Stop() = true, want false")
	}

	f.Advance(time.Minute)
	select {
	case <-timer.C():
		t.Error("stopped timer fired")
	default:
	}
}

func TestFakeZeroDuration(t *testing.T) {
	f := NewFake(time.Now())
	timer := f.NewTimer(0)

	select {
	case <-timer.C():
	default:
		t.Fatal("zero duration timer did not fire immediately")
	}
}

func TestFakeSetDoesNotFire(t *testing.T) {
	start := time.Now()
	f := NewFake(start)
	timer := f.NewTimer(time.Second)

	f.Set(start.Add(time.Hour))
	if !f.Now().Equal(start.Add(time.Hour)) {
		t.Errorf("Now() = %v after Set", f.Now())
	}
	select {
	case <-timer.C():
		t.Error("Set fired a timer")
	default:
	}
}

func TestFakeBlockUntil(t *testing.T) {
	f := NewFake(time.Now())

	go func() {
		time.Sleep(10 * time.Millisecond)
		f.NewTimer(time.Second)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := f.BlockUntil(ctx, 1); err != nil {
		t.Fatalf("BlockUntil() error = %v", err)
	}

	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	if err := f.BlockUntil(short, 2); err == nil {
		t.Error("BlockUntil(2) = nil, want deadline error")
	}
}

func TestRealClock(t *testing.T) {
	c := Real()
	before := time.Now()
	if c.Now().Before(before) {
		t.Error("Real().Now() is before time.Now()")
	}

	timer := c.NewTimer(time.Millisecond)
	select {
	case <-timer.C():
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
}
