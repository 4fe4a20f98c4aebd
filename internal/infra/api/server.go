package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"hotspot-voucher-manager/internal/domain"
	"hotspot-voucher-manager/internal/domain/model"
	"hotspot-voucher-manager/internal/infra/logging"
	"hotspot-voucher-manager/internal/usecase"
)

// Server exposes the voucher engine's call surface over HTTP. It holds no
// voucher state of its own; every response is re-derived from the engine's
// current snapshot.
type Server struct {
	vouchers *usecase.VoucherUseCase
	bundles  *usecase.BundleUseCase
	log      *zerolog.Logger
}

func NewServer(vouchers *usecase.VoucherUseCase, bundles *usecase.BundleUseCase, logger *zerolog.Logger) *Server {
	srvLog := logger.With().Str("component", "api").Logger()
	return &Server{vouchers: vouchers, bundles: bundles, log: &srvLog}
}

// Register attaches all routes to the router.
func (s *Server) Register(r chi.Router) {
	r.Use(s.requestID)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/bundles", s.handleListBundles)
		r.Put("/bundles/{id}", s.handleSaveBundle)

		r.Get("/vouchers", s.handleListVouchers)
		r.Post("/vouchers", s.handleCreateBatch)
		r.Post("/vouchers/clear-expired", s.handleClearExpired)
		r.Post("/vouchers/clear-used", s.handleClearUsed)
		r.Post("/vouchers/{id}/activate", s.handleActivate)
		r.Post("/vouchers/{id}/use", s.handleMarkUsed)
		r.Delete("/vouchers/{id}", s.handleDelete)

		r.Get("/stats", s.handleStats)
		r.Get("/print", s.handlePrint)
	})
}

// requestID stamps every request with a ulid for log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ulid.Make().String()
		ctx := logging.WithRequestID(r.Context(), id)
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleListBundles(w http.ResponseWriter, r *http.Request) {
	bundles, err := s.bundles.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": bundles})
}

func (s *Server) handleSaveBundle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name            string `json:"name"`
		DurationMinutes int    `json:"durationMinutes"`
		Price           int64  `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
		return
	}
	bundle, err := model.NewBundle(chi.URLParam(r, "id"), body.Name, body.DurationMinutes, body.Price)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.bundles.Save(r.Context(), bundle); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleListVouchers(w http.ResponseWriter, r *http.Request) {
	status := model.VoucherStatus(r.URL.Query().Get("status"))
	switch status {
	case "", model.VoucherStatusAvailable, model.VoucherStatusActive,
		model.VoucherStatusUsed, model.VoucherStatusExpired:
	default:
		s.writeError(w, r, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidArgument, status))
		return
	}
	vouchers, err := s.vouchers.List(r.Context(), status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": vouchers})
}

func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BundleID string `json:"bundleId"`
		Count    int    `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err))
		return
	}
	created, err := s.vouchers.CreateBatch(r.Context(), body.BundleID, body.Count)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"items": created})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	v, err := s.vouchers.Activate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleMarkUsed(w http.ResponseWriter, r *http.Request) {
	v, err := s.vouchers.MarkUsed(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.vouchers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearExpired(w http.ResponseWriter, r *http.Request) {
	n, err := s.vouchers.ClearExpired(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *Server) handleClearUsed(w http.ResponseWriter, r *http.Request) {
	n, err := s.vouchers.ClearUsed(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.vouchers.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// handlePrint renders a plain-text sheet of unused codes, one ticket per
// line, for handing out at the shop.
func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	vouchers, err := s.vouchers.List(r.Context(), model.VoucherStatusAvailable)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "HOTSPOT MTAANI — VOUCHER SHEET")
	fmt.Fprintln(w, "==============================")
	for _, v := range vouchers {
		fmt.Fprintf(w, "%s  %-22s %6d Tzs\n", v.Code, v.BundleName, v.Price)
	}
	fmt.Fprintf(w, "------------------------------\n%d vouchers\n", len(vouchers))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

// writeError maps domain errors onto HTTP statuses. Not-found and invalid
// transitions are ordinary outcomes for the caller to react to; a full store
// is the one condition that must reach the operator loudly.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrStorageFull):
		status = http.StatusInsufficientStorage
	}
	if status == http.StatusInternalServerError {
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
