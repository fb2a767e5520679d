package store

import (
	"context"
	"errors"
	"fmt"

	"postview/app/models"
	"postview/app/repositories"

	"github.com/sirupsen/logrus"
)

// SelectPost records the chosen post identifier
func SelectPost(id string) models.Action {
	return models.Action{Type: models.ActionSelectPost, Payload: id}
}

// Push changes the current location
func Push(url string) models.Action {
	return models.Action{Type: models.ActionPush, Payload: url}
}

// Reduce applies action to state. Unknown actions leave the state unchanged.
func Reduce(state models.State, action models.Action) models.State {
	switch action.Type {
	case models.ActionSelectPost:
		state.Post.Selected = action.Payload
	case models.ActionPush:
		state.Router.Location = action.Payload
	}
	return state
}

// Store holds per-session UI state
type Store struct {
	repo   repositories.StateRepository
	logger logrus.FieldLogger
}

// New creates a new Store
func New(repo repositories.StateRepository, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{repo: repo, logger: logger.WithField("component", "store")}
}

// State returns the state of session key; a session with no state yields the zero State
func (s *Store) State(ctx context.Context, key string) (models.State, error) {
	if err := ctx.Err(); err != nil {
		return models.State{}, err
	}
	state, err := s.repo.Get(key)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.State{}, nil
	}
	if err != nil {
		return models.State{}, fmt.Errorf("failed to load state: %w", err)
	}
	return *state, nil
}

// Dispatch reduces action into the session's state and persists the result
func (s *Store) Dispatch(ctx context.Context, key string, action models.Action) (models.State, error) {
	if err := ctx.Err(); err != nil {
		return models.State{}, err
	}
	state, err := s.repo.Update(key, func(state *models.State) error {
		*state = Reduce(*state, action)
		return nil
	})
	if err != nil {
		return models.State{}, fmt.Errorf("failed to dispatch %s: %w", action.Type, err)
	}
	s.logger.WithFields(logrus.Fields{
		"action":  action.Type,
		"payload": action.Payload,
	}).Debug("action dispatched")
	return *state, nil
}
