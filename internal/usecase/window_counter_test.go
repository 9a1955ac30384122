package usecase_test

import (
	"testing"
	"time"

	"github.com/satelink/econledger/internal/usecase"
)

func TestWindowCounter_FiresOncePerWindow(t *testing.T) {
	clock := newFakeClock()
	c := usecase.NewWindowCounter(time.Minute, 3, clock.Now)

	fired := 0
	for i := 0; i < 10; i++ {
		if _, fire := c.Hit("k"); fire {
			fired++
		}
	}

	if fired != 1 {
		t.Fatalf("expected exactly one fire, got %d", fired)
	}
}

func TestWindowCounter_ResetsAfterWindow(t *testing.T) {
	clock := newFakeClock()
	c := usecase.NewWindowCounter(time.Minute, 2, clock.Now)

	c.Hit("k")
	if _, fire := c.Hit("k"); !fire {
		t.Fatal("expected fire at threshold")
	}

	// exactly one window later the entry is still live
	clock.Advance(time.Minute)
	if count, fire := c.Hit("k"); fire || count != 3 {
		t.Fatalf("expected count 3 without fire, got %d fire=%v", count, fire)
	}

	clock.Advance(time.Millisecond)
	if count, _ := c.Hit("k"); count != 1 {
		t.Fatalf("expected counting to restart, got %d", count)
	}

	if _, fire := c.Hit("k"); !fire {
		t.Fatal("expected a new fire in the new window")
	}
}

func TestWindowCounter_PrunesIdleKeys(t *testing.T) {
	clock := newFakeClock()
	c := usecase.NewWindowCounter(time.Minute, 5, clock.Now)

	c.Hit("a")
	c.Hit("b")
	clock.Advance(2 * time.Minute)
	c.Hit("c")

	if c.Len() != 1 {
		t.Fatalf("expected idle keys to be pruned, tracking %d", c.Len())
	}
}

func TestWindowCounter_KeysAreIndependent(t *testing.T) {
	c := usecase.NewWindowCounter(time.Minute, 2, nil)

	c.Hit("a")
	if _, fire := c.Hit("b"); fire {
		t.Fatal("expected keys to be counted separately")
	}
}
