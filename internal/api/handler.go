package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eugenenazirov/fee-simulator/internal/packer"
	"github.com/eugenenazirov/fee-simulator/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const defaultResponseTopN = 12

// Handler wires packer and mempool store dependencies into HTTP handlers.
type Handler struct {
	packer  packer.Packer
	storage storage.Store

	defaultBlockSize int64
	topN             int
	clock            func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithTopN bounds how many included transactions simulation responses list.
func WithTopN(topN int) HandlerOption {
	return func(h *Handler) {
		if topN > 0 {
			h.topN = topN
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
// defaultBlockSize is used when a simulate request does not carry its own.
func NewHandler(p packer.Packer, store storage.Store, defaultBlockSize int64, opts ...HandlerOption) *Handler {
	h := &Handler{
		packer:           p,
		storage:          store,
		defaultBlockSize: defaultBlockSize,
		topN:             defaultResponseTopN,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
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

func (h *Handler) handleGetMempool(w http.ResponseWriter, r *http.Request) {
	_ = r
	candidates, err := h.storage.Candidates()
	if err != nil {
		if errors.Is(err, storage.ErrEmptyMempool) {
			writeJSON(w, http.StatusOK, mempoolResponse{Count: 0})
			return
		}
		writeInternalError(w, err)
		return
	}

	var totalSize, totalFee int64
	for _, c := range candidates {
		totalSize += c.Size
		totalFee += c.Fee
	}

	resp := mempoolResponse{
		Count:     len(candidates),
		TotalSize: totalSize,
		TotalFee:  totalFee,
		UpdatedAt: h.storage.UpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutMempool(w http.ResponseWriter, r *http.Request) {
	var req mempoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Candidates) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid mempool", "candidates must contain at least one transaction")
		return
	}

	candidates := make([]packer.Candidate, 0, len(req.Candidates))
	for _, tx := range req.Candidates {
		candidate, err := packer.NewCandidate(tx.TxID, tx.Fee, tx.VSize)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid candidate", err.Error())
			return
		}
		candidates = append(candidates, candidate)
	}

	if err := h.storage.Replace(candidates); err != nil {
		if errors.Is(err, storage.ErrInvalidCandidates) {
			writeError(w, http.StatusBadRequest, "Invalid mempool", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	resp := mempoolResponse{
		Count:     len(candidates),
		UpdatedAt: h.storage.UpdatedAt(),
		Message:   "Mempool replaced successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	req := simulateRequest{BlockSize: h.defaultBlockSize}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
			return
		}
		if req.BlockSize == 0 {
			req.BlockSize = h.defaultBlockSize
		}
	}

	if req.BlockSize < 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "blockSize must be non-negative")
		return
	}

	candidates, err := h.storage.Candidates()
	if err != nil {
		if errors.Is(err, storage.ErrEmptyMempool) {
			writeError(w, http.StatusUnprocessableEntity, "Nothing to simulate", "mempool store is empty; load candidates first")
			return
		}
		writeInternalError(w, err)
		return
	}

	start := time.Now()
	result, packErr := h.packer.Pack(req.BlockSize, candidates)
	elapsed := time.Since(start)

	if packErr != nil {
		switch {
		case errors.Is(packErr, packer.ErrInvalidCapacity):
			writeError(w, http.StatusBadRequest, "Invalid request", packErr.Error())
		case errors.Is(packErr, packer.ErrInvalidCandidate):
			// The store validates on write, so this points at a bug.
			writeInternalError(w, packErr)
		default:
			writeInternalError(w, packErr)
		}
		return
	}

	topN := h.topN
	if len(result.Included) < topN {
		topN = len(result.Included)
	}
	top := make([]includedTx, 0, topN)
	for i := 0; i < topN; i++ {
		c := result.Included[i]
		top = append(top, includedTx{
			Rank:     i + 1,
			TxID:     c.ID,
			Rate:     c.Rate,
			VSize:    c.Size,
			Priority: packer.EstimatePriority(i, len(result.Included)).String(),
		})
	}

	fillPct := 0.0
	if req.BlockSize > 0 {
		fillPct = float64(result.TotalSize) / float64(req.BlockSize) * 100
	}

	resp := simulateResponse{
		BlockSize:         req.BlockSize,
		Included:          len(result.Included),
		Excluded:          len(result.Excluded),
		TotalFee:          result.TotalFee,
		TotalSize:         result.TotalSize,
		AverageRate:       result.AverageRate,
		FillPercent:       fillPct,
		Top:               top,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	if len(result.Excluded) > 0 {
		rate := result.Excluded[0].Rate
		resp.FirstExcludedRate = &rate
	}
	writeJSON(w, http.StatusOK, resp)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type mempoolTx struct {
	TxID  string `json:"txid"`
	Fee   int64  `json:"fee"`
	VSize int64  `json:"vsize"`
}

type mempoolRequest struct {
	Candidates []mempoolTx `json:"candidates"`
}

type mempoolResponse struct {
	Count     int       `json:"count"`
	TotalSize int64     `json:"totalSize,omitempty"`
	TotalFee  int64     `json:"totalFee,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
	Message   string    `json:"message,omitempty"`
}

type simulateRequest struct {
	BlockSize int64 `json:"blockSize"`
}

type includedTx struct {
	Rank     int     `json:"rank"`
	TxID     string  `json:"txid"`
	Rate     float64 `json:"rate"`
	VSize    int64   `json:"vsize"`
	Priority string  `json:"priority"`
}

type simulateResponse struct {
	BlockSize         int64        `json:"blockSize"`
	Included          int          `json:"included"`
	Excluded          int          `json:"excluded"`
	TotalFee          int64        `json:"totalFee"`
	TotalSize         int64        `json:"totalSize"`
	AverageRate       float64      `json:"averageRate"`
	FillPercent       float64      `json:"fillPercent"`
	Top               []includedTx `json:"top"`
	FirstExcludedRate *float64     `json:"firstExcludedRate,omitempty"`
	CalculationTimeMs int64        `json:"calculationTimeMs"`
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
