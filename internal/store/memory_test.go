package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/lemonle/internal/game"
)

func TestCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	s, err := st.Create(ctx, game.MustWord("LEMON"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := uuid.Parse(s.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", s.ID, err)
	}
	if s.Engine.Solution().String() != "LEMON" {
		t.Errorf("solution = %s", s.Engine.Solution())
	}

	got, err := st.Get(ctx, s.ID)
	if err != nil || got != s {
		t.Fatalf("Get = %p, %v; want %p", got, err, s)
	}
	if err := st.Delete(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := st.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete unknown = %v", err)
	}
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	old, _ := st.Create(ctx, game.MustWord("LEMON"))
	fresh, _ := st.Create(ctx, game.MustWord("LEMON"))

	old.Lock()
	old.lastSeen = time.Now().Add(-2 * time.Hour)
	old.Unlock()

	if n := st.Sweep(ctx, time.Hour); n != 1 {
		t.Fatalf("Sweep = %d, want 1", n)
	}
	if _, err := st.Get(ctx, old.ID); !errors.Is(err, ErrNotFound) {
		t.Error("idle session survived sweep")
	}
	if _, err := st.Get(ctx, fresh.ID); err != nil {
		t.Error("fresh session was swept")
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d, want 1", st.Len())
	}
}

func TestConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := st.Create(ctx, game.MustWord("LEMON"))
			if err != nil {
				t.Error(err)
				return
			}
			s.Lock()
			for _, b := range []byte("LEMON") {
				s.Engine.AddLetter(b)
			}
			s.Engine.Submit()
			s.Touch()
			s.Unlock()
		}()
	}
	wg.Wait()
	if st.Len() != 20 {
		t.Errorf("Len = %d, want 20", st.Len())
	}
}
