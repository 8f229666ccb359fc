package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/Harshitk-cp/echosim/internal/domain"
	"github.com/Harshitk-cp/echosim/internal/service"
	"github.com/Harshitk-cp/echosim/internal/session"
	"github.com/Harshitk-cp/echosim/internal/simulation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type SimulationHandler struct {
	svc *service.SimulationService
}

func NewSimulationHandler(svc *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{svc: svc}
}

// createSimulationRequest is a flat params object. Omitted fields take
// their defaults. A positive step_delay starts the runner immediately.
type createSimulationRequest struct {
	domain.Params
	StepDelay float64 `json:"step_delay"`
}

type stepRequest struct {
	Steps int `json:"steps"`
}

type startRequest struct {
	StepDelay float64 `json:"step_delay"`
}

type simulationResponse struct {
	ID        uuid.UUID      `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Params    domain.Params  `json:"params"`
	Seed      uint64         `json:"seed"`
	TimeStep  int            `json:"time_step"`
	Running   bool           `json:"running"`
	StepDelay float64        `json:"step_delay,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
	Metrics   domain.Metrics `json:"metrics"`
}

type stepResponse struct {
	TimeStep int                     `json:"time_step"`
	Results  []simulation.StepResult `json:"results"`
	Metrics  domain.Metrics          `json:"metrics"`
}

func newSimulationResponse(s *session.Session) simulationResponse {
	return simulationResponse{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Params:    s.Params(),
		Seed:      s.Seed(),
		TimeStep:  s.TimeStep(),
		Running:   s.Running(),
		StepDelay: s.StepDelay().Seconds(),
		Warnings:  s.Warnings(),
		Metrics:   s.Metrics(),
	}
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func secondsToDuration(s float64) (time.Duration, bool) {
	if math.IsNaN(s) || s < 0 || s > 3600 {
		return 0, false
	}
	return time.Duration(s * float64(time.Second)), true
}

func parseSessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid simulation id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *SimulationHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.DefaultParams())
}

func (h *SimulationHandler) Create(w http.ResponseWriter, r *http.Request) {
	req := createSimulationRequest{Params: domain.DefaultParams()}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	delay, ok := secondsToDuration(req.StepDelay)
	if !ok {
		writeError(w, http.StatusBadRequest, "step_delay must be between 0 and 3600 seconds")
		return
	}

	sess, err := h.svc.Create(r.Context(), req.Params, delay)
	if err != nil {
		writeServiceError(w, err, "failed to create simulation")
		return
	}

	writeJSON(w, http.StatusCreated, newSimulationResponse(sess))
}

func (h *SimulationHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to list simulations")
		return
	}

	out := make([]simulationResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, newSimulationResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SimulationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to get simulation")
		return
	}
	writeJSON(w, http.StatusOK, newSimulationResponse(sess))
}

func (h *SimulationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "failed to delete simulation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SimulationHandler) Step(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	req := stepRequest{Steps: 1}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := h.svc.Step(r.Context(), id, req.Steps)
	if err != nil {
		writeServiceError(w, err, "simulation step failed")
		return
	}

	m, err := h.svc.Metrics(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to get metrics")
		return
	}
	writeJSON(w, http.StatusOK, stepResponse{
		TimeStep: m.TimeStep,
		Results:  results,
		Metrics:  m,
	})
}

func (h *SimulationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.svc.Reset(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to reset simulation")
		return
	}
	writeJSON(w, http.StatusOK, newSimulationResponse(sess))
}

func (h *SimulationHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	var req startRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	delay, ok := secondsToDuration(req.StepDelay)
	if !ok {
		writeError(w, http.StatusBadRequest, "step_delay must be between 0 and 3600 seconds")
		return
	}

	sess, err := h.svc.Start(r.Context(), id, delay)
	if err != nil {
		writeServiceError(w, err, "failed to start simulation")
		return
	}
	writeJSON(w, http.StatusOK, newSimulationResponse(sess))
}

func (h *SimulationHandler) Pause(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.svc.Pause(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to pause simulation")
		return
	}
	writeJSON(w, http.StatusOK, newSimulationResponse(sess))
}

func (h *SimulationHandler) State(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	snap, err := h.svc.State(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to get state")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SimulationHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	m, err := h.svc.Metrics(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to get metrics")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *SimulationHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	history, err := h.svc.History(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to get history")
		return
	}
	writeJSON(w, http.StatusOK, history)
}
