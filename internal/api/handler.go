package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/keypad-calculator/internal/calculator"
	"github.com/eugenenazirov/keypad-calculator/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const defaultMaxBatchCommands = 256

// Handler wires calculator and storage dependencies into HTTP handlers.
type Handler struct {
	calculator calculator.Calculator
	storage    storage.Storage
	logger     *zap.Logger

	clock    func() time.Time
	maxBatch int

	// mu serializes load/apply/save so commands reach the engine one at a time.
	mu        sync.Mutex
	updatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMaxBatchCommands limits how many keys one request may carry.
func WithMaxBatchCommands(limit int) HandlerOption {
	return func(h *Handler) {
		if limit > 0 {
			h.maxBatch = limit
		}
	}
}

// WithHandlerLogger sets the logger used for command tracing.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(calc calculator.Calculator, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		calculator: calc,
		storage:    store,
		logger:     zap.NewNop(),
		maxBatch:   defaultMaxBatchCommands,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.updatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	_ = r
	h.mu.Lock()
	defer h.mu.Unlock()

	state, err := h.storage.GetState()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.newStateResponse(state, 0))
}

func (h *Handler) handlePostCommands(w http.ResponseWriter, r *http.Request) {
	var req commandsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Commands) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid commands", "commands must contain at least one key")
		return
	}
	if len(req.Commands) > h.maxBatch {
		writeError(w, http.StatusBadRequest, "Invalid commands",
			fmt.Sprintf("at most %d commands may be sent per request", h.maxBatch))
		return
	}

	cmds, err := calculator.ParseCommands(req.Commands)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid commands", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	state, err := h.storage.GetState()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	next, err := h.applyAll(r.Context(), state, cmds)
	if err != nil {
		if errors.Is(err, calculator.ErrMalformedOperand) {
			writeError(w, http.StatusUnprocessableEntity, "Cannot compute", err.Error(),
				"Clear the calculator with \"c\" before starting a new calculation")
			return
		}
		writeInternalError(w, err)
		return
	}

	if err := h.save(next); err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.newStateResponse(next, len(cmds)))
}

func (h *Handler) handleDeleteState(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state, err := h.storage.GetState()
	if err != nil {
		writeInternalError(w, err)
		return
	}
	next, err := h.applyAll(r.Context(), state, []calculator.Command{calculator.ClearKey})
	if err != nil {
		writeInternalError(w, err)
		return
	}
	if err := h.save(next); err != nil {
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.newStateResponse(next, 1))
}

// applyAll runs cmds in order against state. The batch is all-or-nothing:
// on error the caller must not persist anything.
func (h *Handler) applyAll(ctx context.Context, state calculator.State, cmds []calculator.Command) (calculator.State, error) {
	requestID := requestIDFromContext(ctx)
	for i, cmd := range cmds {
		next, err := h.calculator.Apply(state, cmd)
		if err != nil {
			h.logger.Warn("command rejected",
				zap.Stringer("command", cmd),
				zap.Int("index", i),
				zap.String("display", state.Display()),
				zap.String("request_id", requestID),
				zap.Error(err),
			)
			return state, fmt.Errorf("command %d (%s): %w", i, cmd, err)
		}
		state = next
	}
	h.logger.Debug("commands applied",
		zap.Int("count", len(cmds)),
		zap.String("display", state.Display()),
		zap.String("request_id", requestID),
	)
	return state, nil
}

func (h *Handler) save(state calculator.State) error {
	if err := h.storage.SetState(state); err != nil {
		return err
	}
	h.updatedAt = h.clock()
	return nil
}

func (h *Handler) newStateResponse(state calculator.State, applied int) stateResponse {
	return stateResponse{
		Display:     state.Display(),
		Left:        state.Left,
		Operator:    state.Operator,
		Right:       state.Right,
		ResultShown: state.ResultShown,
		Applied:     applied,
		UpdatedAt:   h.updatedAt,
	}
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type commandsRequest struct {
	Commands []string `json:"commands"`
}

type stateResponse struct {
	Display     string    `json:"display"`
	Left        string    `json:"left"`
	Operator    string    `json:"operator"`
	Right       string    `json:"right"`
	ResultShown bool      `json:"resultShown"`
	Applied     int       `json:"applied,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
