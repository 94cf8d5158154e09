package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hyperjump/meigen/internal/ingest"
	"github.com/hyperjump/meigen/internal/models"
	"github.com/hyperjump/meigen/internal/search"
)

type scrapeResponse struct {
	Success     bool   `json:"success"`
	TotalQuotes int    `json:"total_quotes"`
	Message     string `json:"message"`
}

type searchResponse struct {
	Success bool                  `json:"success"`
	Results []models.SearchResult `json:"results"`
	Total   int                   `json:"total"`
}

type statsResponse struct {
	Success bool                `json:"success"`
	Stats   models.StatsSummary `json:"stats"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("scrape request")
	n, err := s.orchestrator.Rebuild(r.Context())
	if err != nil {
		if errors.Is(err, ingest.ErrRebuildInProgress) {
			s.respondError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("scrape failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to scrape quotes")
		return
	}
	s.respondJSON(w, http.StatusOK, scrapeResponse{
		Success:     true,
		TotalQuotes: n,
		Message:     "Successfully scraped " + strconv.Itoa(n) + " quotes",
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request",
		zap.String("type", req.Mode.String()),
		zap.String("query", req.Query),
		zap.Int("limit", req.Limit),
	)
	results, err := s.router.Search(r.Context(), req)
	if err != nil {
		if errors.Is(err, search.ErrNoCorpus) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, searchResponse{
		Success: true,
		Results: results,
		Total:   len(results),
	})
}

// parseSearchRequest maps query parameters onto a SearchRequest. Both type
// and query are required; a missing or unknown type is a validation failure.
func parseSearchRequest(r *http.Request) (*models.SearchRequest, error) {
	q := r.URL.Query()

	typ := q.Get("type")
	if typ == "" {
		return nil, errors.New("type parameter is required (keyword, author, tag, or semantic)")
	}
	mode, err := models.ParseSearchMode(typ)
	if err != nil {
		return nil, err
	}

	req := &models.SearchRequest{
		Mode:  mode,
		Query: q.Get("query"),
	}
	if exact := q.Get("exact"); exact != "" {
		v, err := strconv.ParseBool(exact)
		if err != nil {
			return nil, errors.New("exact must be a boolean")
		}
		req.Exact = v
	}
	if limit := q.Get("limit"); limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil || v <= 0 {
			return nil, errors.New("limit must be a positive integer")
		}
		req.Limit = v
	}
	if req.Query == "" {
		return nil, errors.New("query parameter is required")
	}
	return req, nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.router.Stats()
	if err != nil {
		if errors.Is(err, search.ErrNoCorpus) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, statsResponse{Success: true, Stats: stats})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
