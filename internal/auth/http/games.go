package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/leadr-dev/leadr-auth/internal/auth/service"
	"github.com/leadr-dev/leadr-auth/pkg/httpx"
	"github.com/leadr-dev/leadr-auth/pkg/leadrsdk"
	"github.com/leadr-dev/leadr-auth/pkg/slogx"
)

// GamesHandler serves the operator surface for the game registry.
// Guarded by a shared admin token rather than device credentials.
type GamesHandler struct {
	GameService *service.GameService
	AdminToken  string
}

func (h *GamesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if !h.authorized(r) {
		leadrsdk.ErrAdminForbidden.WriteError(w)
		return
	}

	var req leadrsdk.CreateGameRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		leadrsdk.ErrValidation.WithMessage("invalid JSON body").WriteError(w)
		return
	}

	game, err := h.GameService.CreateGame(ctx, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			leadrsdk.ErrValidation.WithMessage(err.Error()).WriteError(w)
			return
		}
		log.Error("game create failed", "err", err)
		leadrsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, leadrsdk.GameResponse{
		ID:        game.ID,
		Name:      game.Name,
		CreatedAt: game.CreatedAt,
	})
}

func (h *GamesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if !h.authorized(r) {
		leadrsdk.ErrAdminForbidden.WriteError(w)
		return
	}

	game, err := h.GameService.GetGame(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			leadrsdk.ErrGameNotFound.WriteError(w)
			return
		}
		log.Error("game get failed", "err", err)
		leadrsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, leadrsdk.GameResponse{
		ID:        game.ID,
		Name:      game.Name,
		CreatedAt: game.CreatedAt,
	})
}

func (h *GamesHandler) authorized(r *http.Request) bool {
	if h.AdminToken == "" {
		return false
	}
	provided := r.Header.Get(leadrsdk.AdminTokenHeader)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.AdminToken)) == 1
}
