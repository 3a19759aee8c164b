package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cbodonnell/simon/pkg/log"
	"github.com/cbodonnell/simon/pkg/network"
	"github.com/cbodonnell/simon/pkg/presentation"
	"github.com/cbodonnell/simon/pkg/repositories"
	"github.com/gorilla/mux"
)

// MaxHighscoreLimit caps the limit query parameter
const MaxHighscoreLimit = 100

type remoteInputRequest struct {
	Color string `json:"color"`
}

type difficultyRequest struct {
	Level string `json:"level"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type acceptedResponse struct {
	Accepted bool   `json:"accepted"`
	Level    string `json:"level,omitempty"`
}

func HandleListHighscores(repository repositories.Repository, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := parseLimit(r, defaultLimit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		scores, err := repository.TopScores(r.Context(), limit)
		if err != nil {
			log.Error("failed to list highscores: %v", err)
			http.Error(w, "Failed to list highscores", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, scores)
	}
}

func HandlePlayerHighscores(repository repositories.Repository, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		limit, err := parseLimit(r, defaultLimit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		scores, err := repository.PlayerScores(r.Context(), name, limit)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Player not found", http.StatusNotFound)
				return
			}
			log.Error("failed to list highscores for %s: %v", name, err)
			http.Error(w, "Failed to list highscores", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, scores)
	}
}

func HandleGetState(game network.GameController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := game.Snapshot(r.Context())
		if err != nil {
			log.Error("failed to get game state: %v", err)
			http.Error(w, "Failed to get game state", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, snapshot)
	}
}

func HandleRemoteInput(game network.GameController, sink presentation.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &remoteInputRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		c, ok := game.SubmitRemoteInput(req.Color)
		if !ok {
			http.Error(w, fmt.Sprintf("Unknown color %q", req.Color), http.StatusBadRequest)
			return
		}
		network.EchoRemotePress(sink, c)
		writeJSON(w, http.StatusAccepted, acceptedResponse{Accepted: true})
	}
}

func HandleChangeDifficulty(game network.GameController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &difficultyRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		level, ok := game.SetDifficulty(req.Level)
		if !ok {
			http.Error(w, fmt.Sprintf("Unknown difficulty %q", req.Level), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, acceptedResponse{Accepted: true, Level: level})
	}
}

func HandleSubmitName(game network.GameController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &nameRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if !game.SubmitNameForScore(req.Name) {
			http.Error(w, "Name was not accepted", http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusAccepted, acceptedResponse{Accepted: true})
	}
}

func parseLimit(r *http.Request, defaultLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > MaxHighscoreLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", MaxHighscoreLimit)
	}
	return limit, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
