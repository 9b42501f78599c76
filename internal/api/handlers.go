package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"energy-agent/internal/forecast"
	"energy-agent/internal/history"
	"energy-agent/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

type errorResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"languages": s.catalog.Languages(),
	})
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.run(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.run(w, r)
	if !ok {
		return
	}
	lang := s.negotiate(r.Header.Get("Accept-Language"), rec.Language)
	s.writeJSON(w, http.StatusOK, models.APIResponse{
		Message: s.catalog.Lookup(lang).Success,
		Data:    rec,
		Status:  http.StatusOK,
	})
}

// run decodes the request, runs the agent and publishes the result. It writes
// the error response itself and reports whether the caller should continue.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (*models.Recommendation, bool) {
	log := s.logger.WithField("request_id", r.Header.Get(headerRequestID))

	var req models.OptimizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warnf("Rejecting malformed request: %v", err)
		s.metrics.ObserveError("bad_request")
		s.writeError(w, http.StatusBadRequest, "BadRequest", "invalid request body: "+err.Error())
		return nil, false
	}

	start := time.Now()
	rec, err := s.recommender.Run(r.Context(), req)
	if err != nil {
		status, code, kind := classify(err)
		log.WithFields(logrus.Fields{"status": status, "kind": kind}).Errorf("Recommendation failed: %v", err)
		s.metrics.ObserveError(kind)
		detail := err.Error()
		if status == http.StatusInternalServerError {
			detail = "Internal Agent Error: " + detail
		}
		s.writeError(w, status, code, detail)
		return nil, false
	}
	s.metrics.ObserveRun(string(rec.ActionType), time.Since(start))

	s.publish(log, *rec)
	return rec, true
}

func (s *Server) publish(log *logrus.Entry, rec models.Recommendation) {
	if s.publisher == nil {
		return
	}
	ctx := context.Background()
	if s.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.publishTimeout)
		defer cancel()
	}
	err := s.publisher.Publish(ctx, rec)
	s.metrics.ObservePublish(err)
	if err != nil {
		log.Warnf("Publishing recommendation %s failed: %v", rec.RecommendationID, err)
	}
}

func classify(err error) (status int, code, kind string) {
	switch {
	case errors.Is(err, forecast.ErrEmptyInput):
		return http.StatusServiceUnavailable, "InputDataMissing", "input_missing"
	case errors.Is(err, history.ErrHistoryUnavailable):
		return http.StatusServiceUnavailable, "HistoryUnavailable", "history_unavailable"
	default:
		return http.StatusInternalServerError, "InternalError", "internal"
	}
}

// negotiate picks the first Accept-Language entry the catalog knows, then
// the request's own language.
func (s *Server) negotiate(acceptLanguage, selected string) string {
	if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
		for _, tag := range tags {
			base, _ := tag.Base()
			if s.catalog.Has(base.String()) {
				return base.String()
			}
		}
	}
	if s.catalog.Has(selected) {
		return selected
	}
	return ""
}

// writeJSON encodes before writing the status; a value that cannot be encoded
// is answered with a 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Errorf("Failed to encode %d response: %v", status, err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{
			Status: status,
			Error:  "InternalError",
			Detail: "Internal Agent Error: " + err.Error(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Warnf("Failed to write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, detail string) {
	s.writeJSON(w, status, errorResponse{Status: status, Error: code, Detail: detail})
}
