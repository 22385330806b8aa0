package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/birthprofile/internal/adapters/mq/queue"
	"github.com/okian/birthprofile/internal/adapters/mq/worker"
	"github.com/okian/birthprofile/internal/domain/types"
	"github.com/okian/birthprofile/pkg/logger"
)

// DefaultMaxBatchItems bounds the number of inputs in one batch request.
const DefaultMaxBatchItems = 100

// BatchDiagnoser computes many profiles and returns them in input order.
type BatchDiagnoser interface {
	DiagnoseBatch(ctx context.Context, inputs []types.BirthInput) ([]queue.Result, error)
}

// BatchHandler handles batch diagnosis requests.
type BatchHandler struct {
	deps     BatchDiagnoser
	maxBody  int64
	maxItems int
	logger   logger.Logger
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps BatchDiagnoser, maxBody int64, maxItems int, l logger.Logger) *BatchHandler {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxBatchItems
	}
	if l == nil {
		l = logger.Discard()
	}
	return &BatchHandler{deps: deps, maxBody: maxBody, maxItems: maxItems, logger: l}
}

// HandleBatch handles POST /api/diagnose/batch requests. The body is a JSON
// array of birth inputs; the response holds one item per input, in order.
func (h *BatchHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.diagnose_batch"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var inputs []types.BirthInput
	if status, code, err := decodeBody(w, r, h.maxBody, &inputs, op); err != nil {
		writeError(w, status, code, err)
		return
	}
	if len(inputs) == 0 || len(inputs) > h.maxItems {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, fmt.Errorf("batch must hold 1 to %d inputs, got %d", h.maxItems, len(inputs))))
		return
	}

	results, err := h.deps.DiagnoseBatch(r.Context(), inputs)
	if err != nil {
		if errors.Is(err, worker.ErrUnavailable) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, "busy", WrapKind(op, ErrBusy, err))
			return
		}
		h.logger.Error(r.Context(), "batch failed",
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Int("items", len(inputs)),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal", NewKind(op, ErrInternal))
		return
	}

	items := make([]types.BatchItem, len(results))
	for i, res := range results {
		if res.Err == nil {
			p := res.Profile
			items[i].Profile = &p
			continue
		}
		status, code, kindErr := classify(op, res.Err)
		if status == http.StatusInternalServerError {
			h.logger.Error(r.Context(), "batch item failed",
				logger.String("request_id", RequestIDFrom(r.Context())),
				logger.Int("item", i),
				logger.Error(res.Err),
			)
		}
		items[i].Error = &types.ItemError{Code: code, Message: kindErr.Error()}
	}
	writeJSON(w, http.StatusOK, items)
}
