package repositories

import "postview/app/models"

// StateRepository defines the interface for per-session UI state persistence
type StateRepository interface {
	// Get returns ErrNotFound when the key has no stored state.
	Get(key string) (*models.State, error)
	// Update runs fn on the stored state (zero state when absent) and saves the
	// result atomically.
	Update(key string, fn func(state *models.State) error) (*models.State, error)
	Delete(key string) error
}
