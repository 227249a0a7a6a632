package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/IdrisKulubi/spark-and-tell/internal/game"
	"github.com/IdrisKulubi/spark-and-tell/internal/registry"
	"github.com/IdrisKulubi/spark-and-tell/internal/room"
)

const maxNameLen = 50

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		status = http.StatusNotFound
	case errors.Is(err, room.ErrRoomFull),
		errors.Is(err, room.ErrNeedsSecondPlayer),
		errors.Is(err, game.ErrPowerUpExhausted),
		errors.Is(err, game.ErrGameOver):
		status = http.StatusConflict
	case errors.Is(err, game.ErrNoCategories):
		status = http.StatusBadRequest
	case errors.Is(err, room.ErrRoomInactive):
		status = http.StatusGone
	case errors.Is(err, room.ErrNotHost), errors.Is(err, room.ErrNotAuthorized):
		status = http.StatusForbidden
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad json"})
		return false
	}
	return true
}

func validName(name string) bool {
	return name != "" && len(name) <= maxNameLen
}

func CreateRoom(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			HostName string `json:"hostName"`
		}
		if !decode(w, r, &req) {
			return
		}
		if !validName(req.HostName) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "hostName must be 1-50 characters"})
			return
		}

		res, err := reg.CreateRoom(req.HostName)
		if err != nil {
			log.Error("create room failed", zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func JoinRoom(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RoomCode  string `json:"roomCode"`
			GuestName string `json:"guestName"`
		}
		if !decode(w, r, &req) {
			return
		}
		if len(req.RoomCode) != 6 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "roomCode must be 6 characters"})
			return
		}
		if !validName(req.GuestName) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "guestName must be 1-50 characters"})
			return
		}

		res, err := reg.JoinRoom(req.RoomCode, req.GuestName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func RoomState(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")
		playerID := r.URL.Query().Get("playerId")

		snap, err := reg.GetRoomState(roomID, playerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func StartGame(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlayerID string            `json:"playerId"`
			Settings game.GameSettings `json:"settings"`
		}
		if !decode(w, r, &req) {
			return
		}
		if len(req.Settings.SelectedCategories) == 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "at least one category must be selected"})
			return
		}
		for _, c := range req.Settings.SelectedCategories {
			if !c.Valid() {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid category"})
				return
			}
		}

		if err := reg.StartGame(chi.URLParam(r, "roomID"), req.PlayerID, req.Settings); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

func RollDice(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlayerID string        `json:"playerId"`
			Category game.Category `json:"category"`
		}
		if !decode(w, r, &req) {
			return
		}
		if !req.Category.Valid() {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid category"})
			return
		}

		if err := reg.RollDice(chi.URLParam(r, "roomID"), req.PlayerID, req.Category); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

func CompleteAnswer(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlayerID string `json:"playerId"`
		}
		if !decode(w, r, &req) {
			return
		}
		if err := reg.CompleteAnswer(chi.URLParam(r, "roomID"), req.PlayerID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

func AwardSparks(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlayerID   string           `json:"playerId"`
			SparkTypes []game.SparkType `json:"sparkTypes"`
			AwardedTo  string           `json:"awardedTo"`
		}
		if !decode(w, r, &req) {
			return
		}
		if err := reg.AwardSparks(chi.URLParam(r, "roomID"), req.PlayerID, req.SparkTypes, req.AwardedTo); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

func UsePowerUp(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlayerID string           `json:"playerId"`
			PowerUp  game.PowerUpType `json:"powerUp"`
		}
		if !decode(w, r, &req) {
			return
		}
		if game.PowerUpCap(req.PowerUp) == 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown power-up"})
			return
		}
		if err := reg.UsePowerUp(chi.URLParam(r, "roomID"), req.PlayerID, req.PowerUp); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

func NextTurn(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlayerID string `json:"playerId"`
		}
		if !decode(w, r, &req) {
			return
		}
		if err := reg.NextTurn(chi.URLParam(r, "roomID"), req.PlayerID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

func ResetGame(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlayerID string `json:"playerId"`
		}
		if !decode(w, r, &req) {
			return
		}
		if err := reg.ResetGame(chi.URLParam(r, "roomID"), req.PlayerID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

func LeaveRoom(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlayerID string `json:"playerId"`
		}
		if !decode(w, r, &req) {
			return
		}
		reg.LeaveRoom(chi.URLParam(r, "roomID"), req.PlayerID)
		writeJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

// JoinQR renders the join link for a room code as a QR PNG so the second
// player can scan it instead of typing the code.
func JoinQR(baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if len(code) != 6 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "roomCode must be 6 characters"})
			return
		}

		png, err := qrcode.Encode(baseURL+"/join/"+code, qrcode.Medium, 256)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to render qr code"})
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
