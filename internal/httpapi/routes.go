package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/IdrisKulubi/spark-and-tell/internal/registry"
	"github.com/IdrisKulubi/spark-and-tell/internal/ws"
)

// SetupRoutes builds the router with the registry injected.
func SetupRoutes(reg *registry.Registry, baseURL string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(reg, log))
	r.Post("/rooms/join", JoinRoom(reg))
	r.Get("/rooms/{roomID}/state", RoomState(reg))
	r.Post("/rooms/{roomID}/start", StartGame(reg))
	r.Post("/rooms/{roomID}/roll", RollDice(reg))
	r.Post("/rooms/{roomID}/answer-complete", CompleteAnswer(reg))
	r.Post("/rooms/{roomID}/sparks", AwardSparks(reg))
	r.Post("/rooms/{roomID}/power-up", UsePowerUp(reg))
	r.Post("/rooms/{roomID}/next-turn", NextTurn(reg))
	r.Post("/rooms/{roomID}/reset", ResetGame(reg))
	r.Post("/rooms/{roomID}/leave", LeaveRoom(reg))
	r.Get("/codes/{code}/qr", JoinQR(baseURL))

	r.Get("/ws", ws.Handler(reg, log))
	r.Get("/healthz", Healthz)

	return r
}
