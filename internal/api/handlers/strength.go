// Package handlers contains the HTTP handlers for the API server.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/dkrao/fiipulse/internal/contracts"
	"github.com/dkrao/fiipulse/internal/pipeline"
	"github.com/dkrao/fiipulse/pkg/logger"
)

// StrengthHandler handles strength and backtest API endpoints.
type StrengthHandler struct {
	pipeline *pipeline.Pipeline
	logger   *logger.Logger
}

// NewStrengthHandler creates a new strength handler.
func NewStrengthHandler(p *pipeline.Pipeline, log *logger.Logger) *StrengthHandler {
	return &StrengthHandler{pipeline: p, logger: log}
}

// labelView is the JSON rendering of one composition result. Labels go out
// as display strings; the raw ordinals stay internal.
type labelView struct {
	Date        string  `json:"date"`
	Institution string  `json:"institution"`
	Segment     string  `json:"segment"`
	NetOI       float64 `json:"net_oi"`
	Change      float64 `json:"change"`
	OILabel     string  `json:"oi_label,omitempty"`
	ChangeLabel string  `json:"change_label,omitempty"`
	Final       string  `json:"final"`
}

func toViews(results []contracts.CompositionResult) []labelView {
	views := make([]labelView, 0, len(results))
	for _, r := range results {
		v := labelView{
			Date:        r.Date.Format("2006-01-02"),
			Institution: string(r.Institution),
			Segment:     string(r.Segment),
			NetOI:       r.NetOI,
			Change:      r.Change,
			Final:       r.FinalString(),
		}
		if r.Segment != contracts.SegmentNetOptions {
			v.OILabel = r.OILabel.String()
			v.ChangeLabel = r.ChangeLabel.String()
		}
		views = append(views, v)
	}
	return views
}

// GetLatest returns the labels for the most recent evaluated date.
// GET /api/strength/latest
func (h *StrengthHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	results, err := h.pipeline.LatestStrength(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest strength")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve strength labels")
		return
	}
	if len(results) == 0 {
		respondError(w, http.StatusNotFound, "No strength labels available")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":   results[0].Date.Format("2006-01-02"),
		"labels": toViews(results),
	})
}

// GetByDate returns the labels stored for one trading date.
// GET /api/strength/{date}
func (h *StrengthHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	dateStr := mux.Vars(r)["date"]
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	results, err := h.pipeline.StrengthByDate(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load strength by date")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve strength labels")
		return
	}
	if len(results) == 0 {
		respondError(w, http.StatusNotFound, "No strength labels for "+dateStr)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":   dateStr,
		"labels": toViews(results),
	})
}

// Evaluate recomputes and stores labels for the latest collected date.
// POST /api/strength/evaluate
func (h *StrengthHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	results, err := h.pipeline.EvaluateLatest(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Evaluation failed")
		respondError(w, http.StatusInternalServerError, "Evaluation failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":   results[0].Date.Format("2006-01-02"),
		"labels": toViews(results),
	})
}

// RunBacktest scores prediction accuracy over a lookback window.
// GET /api/backtest?lookback=60
func (h *StrengthHandler) RunBacktest(w http.ResponseWriter, r *http.Request) {
	lookback := 0
	if s := r.URL.Query().Get("lookback"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 2 {
			respondError(w, http.StatusBadRequest, "lookback must be an integer >= 2")
			return
		}
		lookback = n
	}

	report, err := h.pipeline.Backtest(r.Context(), lookback)
	if err != nil {
		h.logger.WithError(err).Error("Backtest failed")
		respondError(w, http.StatusInternalServerError, "Backtest failed")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// CollectRequest is the body for a collection request. Dates are
// YYYY-MM-DD; both default to today.
type CollectRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Collect fetches and stores participant data for a date range.
// POST /api/data/collect
func (h *StrengthHandler) Collect(w http.ResponseWriter, r *http.Request) {
	var req CollectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	from, to := today, today
	var err error
	if req.From != "" {
		if from, err = time.Parse("2006-01-02", req.From); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid from date")
			return
		}
	}
	if req.To != "" {
		if to, err = time.Parse("2006-01-02", req.To); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid to date")
			return
		}
	}
	if to.Before(from) {
		respondError(w, http.StatusBadRequest, "to must not precede from")
		return
	}

	saved, err := h.pipeline.Collect(r.Context(), from, to)
	if err != nil {
		h.logger.WithError(err).Error("Collection failed")
		respondError(w, http.StatusInternalServerError, "Collection failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
		"saved": saved,
	})
}
