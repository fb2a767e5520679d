package mock

import (
	"sync"

	"postview/app/models"
	"postview/app/repositories"
)

// StateRepository is an in-memory repositories.StateRepository
type StateRepository struct {
	states map[string]models.State
	mutex  sync.RWMutex
}

func NewStateRepository() *StateRepository {
	return &StateRepository{
		states: make(map[string]models.State),
	}
}

func (m *StateRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.states = make(map[string]models.State)
}

func (m *StateRepository) Get(key string) (*models.State, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	state, exists := m.states[key]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &state, nil
}

func (m *StateRepository) Update(key string, fn func(state *models.State) error) (*models.State, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	state := m.states[key]
	if err := fn(&state); err != nil {
		return nil, err
	}
	m.states[key] = state
	return &state, nil
}

func (m *StateRepository) Delete(key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.states[key]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.states, key)
	return nil
}
