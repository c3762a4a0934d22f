package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/eugenenazirov/keypad-calculator/internal/calculator"
)

func TestNewMemoryStorageReturnsBlankState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()

	got, err := store.GetState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != calculator.NewState() {
		t.Fatalf("expected blank state, got %+v", got)
	}
}

func TestSetStateUpdatesState(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage()
	want := calculator.State{Left: "12.5", Operator: "×", Right: "-3"}
	if err := store.SetState(want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSetStateRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	testCases := []calculator.State{
		{},
		{Left: "1", Operator: "^"},
		{Left: "1.2.3"},
		{Left: "4-"},
	}

	for idx, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("case_%d", idx), func(t *testing.T) {
			store := NewMemoryStorage()
			if err := store.SetState(tc); !errors.Is(err, calculator.ErrInvalidState) {
				t.Fatalf("expected ErrInvalidState for %+v, got %v", tc, err)
			}
			got, _ := store.GetState()
			if got != calculator.NewState() {
				t.Fatalf("state changed after rejected update: %+v", got)
			}
		})
	}
}

func TestMemoryStorageConcurrentAccess(t *testing.T) {
	store := NewMemoryStorage()
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(offset int) {
			defer wg.Done()
			state := calculator.State{Left: fmt.Sprint(offset), Operator: "+"}
			if err := store.SetState(state); err != nil {
				t.Errorf("SetState failed: %v", err)
			}
		}(i)

		go func() {
			defer wg.Done()
			if _, err := store.GetState(); err != nil {
				t.Errorf("GetState failed: %v", err)
			}
		}()
	}

	wg.Wait()

	// final read should succeed
	if _, err := store.GetState(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
