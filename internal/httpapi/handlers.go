package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DoyleJ11/reds-and-greens/internal/engine"
	"github.com/DoyleJ11/reds-and-greens/internal/lobby"
	"github.com/DoyleJ11/reds-and-greens/pkg/types"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	maxBodyBytes   = 16 << 10
	accountTimeout = 2 * time.Second
)

// Games runs a command against the current game.
type Games interface {
	Do(ctx context.Context, cmd engine.Command) (lobby.Result, error)
}

// Accounts remembers the names players have joined with.
type Accounts interface {
	Register(ctx context.Context, username string) (bool, error)
}

// PlayGame serves POST /games. Rejections by the game are answered with 200
// and an error tag; only malformed requests and server faults use 4xx/5xx.
func PlayGame(games Games, accounts Accounts, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqLog := log.With(zap.String("request_id", middleware.GetReqID(r.Context())))

		cmd, err := decodeCommand(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			reqLog.Debug("rejecting request", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, types.ErrorResponse{ErrorMessage: http.StatusText(http.StatusBadRequest)})
			return
		}

		res, err := games.Do(r.Context(), cmd)
		if err != nil {
			if tag, ok := errorTag(err); ok {
				writeJSON(w, http.StatusOK, types.Response{Status: false, ErrorMessage: tag})
				return
			}
			reqLog.Error("game command failed",
				zap.String("command", string(cmd.Type)),
				zap.String("player", cmd.PlayerName),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{ErrorMessage: http.StatusText(http.StatusInternalServerError)})
			return
		}

		if cmd.Type == engine.CmdJoinGame && accounts != nil {
			registerAccount(r.Context(), accounts, cmd.PlayerName, reqLog)
		}

		writeJSON(w, http.StatusOK, types.Response{
			Status:    true,
			GameState: toGameState(res.State),
			Version:   res.Version,
		})
	}
}

// registerAccount is best effort: the player is already seated.
func registerAccount(ctx context.Context, accounts Accounts, name string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, accountTimeout)
	defer cancel()

	created, err := accounts.Register(ctx, name)
	if err != nil {
		log.Warn("could not register account", zap.String("player", name), zap.Error(err))
		return
	}
	if created {
		log.Info("registered account", zap.String("player", name))
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func Version(release string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Version string `json:"version"`
		}{Version: release})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
