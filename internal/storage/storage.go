package storage

import (
	"sync"

	"github.com/eugenenazirov/keypad-calculator/internal/calculator"
)

// Storage provides access to the active calculation.
type Storage interface {
	GetState() (calculator.State, error)
	SetState(state calculator.State) error
}

// MemoryStorage keeps the active calculation in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu    sync.RWMutex
	state calculator.State
}

// NewMemoryStorage initialises storage with a blank calculation.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		state: calculator.NewState(),
	}
}

// GetState returns a copy of the stored state.
func (s *MemoryStorage) GetState() (calculator.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state, nil
}

// SetState validates and stores the provided state.
func (s *MemoryStorage) SetState(state calculator.State) error {
	if err := calculator.ValidateState(state); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	return nil
}
