package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leadr-dev/leadr-auth/internal/auth/domain"
	"github.com/leadr-dev/leadr-auth/internal/auth/store"
)

// GameService manages the registry of games allowed to open device sessions.
type GameService struct {
	store store.Store
	now   func() time.Time
}

func NewGameService(st store.Store) *GameService {
	return &GameService{store: st, now: time.Now}
}

// CreateGame registers a new game and returns it with a freshly minted id.
func (s *GameService) CreateGame(ctx context.Context, name string) (domain.Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Game{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	game := domain.Game{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Games().CreateGame(ctx, game); err != nil {
		return domain.Game{}, fmt.Errorf("store game: %w", err)
	}
	return game, nil
}

// GetGame returns a game by id.
func (s *GameService) GetGame(ctx context.Context, id string) (domain.Game, error) {
	game, err := s.store.Games().GetGameByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Game{}, ErrGameNotFound
		}
		return domain.Game{}, err
	}
	return game, nil
}
