package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/laddr/internal/domain"
	"github.com/vadiminshakov/laddr/internal/services/tracker"
	"github.com/vadiminshakov/laddr/internal/storage"
	"github.com/vadiminshakov/laddr/pkg/currency"
)

// Tracker is the slice of the tracker the handlers need.
type Tracker interface {
	Create(ctx context.Context, req tracker.CreateRequest) (*domain.Ladder, error)
	Tap(ctx context.Context, id string) (tracker.TapResult, error)
	Loss(ctx context.Context, id string) (*domain.Ladder, error)
	Delete(ctx context.Context, id string) error
	Select(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Ladder, error)
	List(ctx context.Context) ([]*domain.Ladder, error)
}

type stepResponse struct {
	Day         int    `json:"day"`
	Stake       string `json:"stake"`
	Profit      string `json:"profit"`
	NextBalance string `json:"next_balance"`
	IsGoalDay   bool   `json:"is_goal_day"`
}

type ladderResponse struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	StartStake       string         `json:"start_stake"`
	GoalAmount       string         `json:"goal_amount"`
	Odds             string         `json:"odds"`
	CurrentAmount    string         `json:"current_amount"`
	CurrentStepIndex int            `json:"current_step_index"`
	State            string         `json:"state"`
	CashoutAvailable bool           `json:"cashout_available"`
	LastUpdated      time.Time      `json:"last_updated"`
	Steps            []stepResponse `json:"steps"`
}

type tapResponse struct {
	Status      string          `json:"status"`
	GoalReached bool            `json:"goal_reached,omitempty"`
	Ladder      *ladderResponse `json:"ladder,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func renderLadder(l *domain.Ladder) *ladderResponse {
	steps := make([]stepResponse, 0, len(l.Steps))
	for _, step := range l.Steps {
		steps = append(steps, stepResponse{
			Day:         step.DayNumber,
			Stake:       currency.USD(step.Stake),
			Profit:      currency.USD(step.Profit),
			NextBalance: currency.USD(step.NextBalance),
			IsGoalDay:   step.IsGoalDay,
		})
	}

	return &ladderResponse{
		ID:               l.ID,
		Name:             l.Name,
		StartStake:       currency.USD(l.StartStake),
		GoalAmount:       currency.USD(l.GoalAmount),
		Odds:             l.Odds,
		CurrentAmount:    currency.USD(l.CurrentAmount),
		CurrentStepIndex: l.CurrentStepIndex,
		State:            l.State().String(),
		CashoutAvailable: l.CashoutAvailable(),
		LastUpdated:      l.LastUpdated,
		Steps:            steps,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}

// writeError maps the error taxonomy to HTTP statuses: bad input is 400,
// a non-converging projection 422, already-complete 409, unknown id 404,
// anything else (persistence) 500. No error here is fatal to the process.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case domain.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotConverging):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAlreadyComplete):
		status = http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
		s.log.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req tracker.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ladder, err := s.tracker.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, renderLadder(ladder))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ladders, err := s.tracker.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]*ladderResponse, 0, len(ladders))
	for _, l := range ladders {
		out = append(out, renderLadder(l))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ladder, err := s.tracker.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderLadder(ladder))
}

func (s *Server) handleWinTap(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracker.Tap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if !res.Applied {
		s.writeJSON(w, http.StatusAccepted, tapResponse{Status: "pending_confirmation"})
		return
	}

	s.writeJSON(w, http.StatusOK, tapResponse{
		Status:      "win_applied",
		GoalReached: res.GoalReached,
		Ladder:      renderLadder(res.Ladder),
	})
}

func (s *Server) handleLoss(w http.ResponseWriter, r *http.Request) {
	ladder, err := s.tracker.Loss(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, renderLadder(ladder))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Select(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEventStream streams ladder events over SSE by polling the journal.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "event journal not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// comment heartbeat every 30s so proxies keep the connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(eventPollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendEvents := func() error {
		records, err := s.events.EventsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Event)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: ladder\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendEvents(); err != nil {
		http.Error(w, "failed to load events", http.StatusInternalServerError)
		s.log.Error("event stream initial load", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendEvents(); err != nil {
				s.log.Error("event stream poll", zap.Error(err))
			}
		}
	}
}
