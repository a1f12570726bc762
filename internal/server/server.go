// Package server exposes the cost engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/platewise/costoracle/internal/model"
)

// Estimator is the engine surface the server exposes.
type Estimator interface {
	GetCostEstimate(ctx context.Context, target model.Target) (*model.CostEstimate, bool, error)
	GetCostEstimateLite(ctx context.Context, target model.Target) (*model.CostEstimate, error)
}

// Server routes estimation requests to the engine.
type Server struct {
	estimator Estimator
}

// New creates a Server over the given estimator.
func New(estimator Estimator) *Server {
	return &Server{estimator: estimator}
}

// estimateRequest is the POST /v1/estimate body.
type estimateRequest struct {
	IngredientName string `json:"ingredient_name"`
	LocationName   string `json:"location_name"`
	LocationCode   string `json:"location_code"`
	LifecycleStage string `json:"lifecycle_stage,omitempty"`
	Year           int    `json:"year,omitempty"`
	Lite           bool   `json:"lite,omitempty"`
}

// estimateResponse wraps the estimate with request bookkeeping.
type estimateResponse struct {
	RequestID string              `json:"request_id"`
	FromCache bool                `json:"from_cache"`
	Estimate  *model.CostEstimate `json:"estimate"`
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/v1/estimate", s.handleEstimate)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.IngredientName == "" || req.LocationCode == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ingredient_name and location_code are required"})
		return
	}

	target := model.Target{
		IngredientName: req.IngredientName,
		LocationName:   req.LocationName,
		LocationCode:   req.LocationCode,
		LifecycleStage: req.LifecycleStage,
		Year:           req.Year,
	}

	var (
		estimate  *model.CostEstimate
		fromCache bool
		err       error
	)
	if req.Lite {
		estimate, err = s.estimator.GetCostEstimateLite(r.Context(), target)
	} else {
		estimate, fromCache, err = s.estimator.GetCostEstimate(r.Context(), target)
	}
	if err != nil {
		zap.L().Error("server: estimate failed",
			zap.String("request_id", requestID),
			zap.String("target", target.Key()),
			zap.Error(err),
		)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":      "estimation failed",
			"request_id": requestID,
		})
		return
	}

	zap.L().Info("server: estimate served",
		zap.String("request_id", requestID),
		zap.String("target", target.Key()),
		zap.Bool("from_cache", fromCache),
		zap.Bool("lite", req.Lite),
	)
	writeJSON(w, http.StatusOK, estimateResponse{
		RequestID: requestID,
		FromCache: fromCache,
		Estimate:  estimate,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}
