package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/kaiwa/internal/indexer"
	"github.com/hyperjump/kaiwa/internal/models"
	"github.com/hyperjump/kaiwa/internal/search"
	"github.com/hyperjump/kaiwa/internal/storage"
	"go.uber.org/zap"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	opts := req.Options
	if opts.MaxResults <= 0 {
		opts.MaxResults = s.config.Search.DefaultMaxResults
	}
	if limit := s.config.Search.MaxResultsLimit; limit > 0 && opts.MaxResults > limit {
		opts.MaxResults = limit
	}
	if err := opts.Normalize(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Filters.Query), zap.Int("max_results", opts.MaxResults))

	convs, err := s.indexer.Conversations(r.Context())
	if err != nil {
		s.logger.Error("search: load conversations failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	response, err := s.engine.Search(r.Context(), convs, &req.Filters, opts)
	if err != nil {
		s.logger.Warn("search aborted", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := search.DefaultSuggestions
	if raw := q.Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "max must be a non-negative integer")
			return
		}
		limit = n
	}
	fuzzy, _ := strconv.ParseBool(q.Get("fuzzy"))

	convs, err := s.indexer.Conversations(r.Context())
	if err != nil {
		s.logger.Error("suggestions: load conversations failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var suggestions []string
	if fuzzy {
		suggestions = s.engine.FuzzySuggest(convs, q.Get("q"), limit)
	} else {
		suggestions = s.engine.Suggest(convs, q.Get("q"), limit)
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (s *Server) handleRebuildIndex(w http.ResponseWriter, r *http.Request) {
	stats, err := s.indexer.Rebuild(r.Context())
	if err != nil {
		s.logger.Error("rebuild failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("index rebuilt", zap.Int("entries", stats.Entries), zap.Uint64("version", stats.Version))
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleClearIndex(w http.ResponseWriter, r *http.Request) {
	s.engine.ClearIndex()
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleIndexStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	convCount, err := s.storage.CountConversations(ctx)
	if err != nil {
		s.logger.Error("stats: count conversations failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	msgCount, err := s.storage.CountMessages(ctx)
	if err != nil {
		s.logger.Error("stats: count messages failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]any{
		"index":         s.engine.IndexStats(),
		"conversations": convCount,
		"messages":      msgCount,
	}
	if path := s.config.Storage.DatabasePath; path != "" {
		if diskBytes, err := storage.DiskUsageBytes(path); err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	convs, err := indexer.DecodeConversations(r.Body)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := s.indexer.ImportConversations(r.Context(), convs)
	if err != nil {
		s.logger.Error("import failed", zap.Int("imported", n), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]any{"imported": n, "status": "indexed"})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conv, err := s.storage.GetConversation(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		s.logger.Error("get conversation failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete conversation request", zap.String("id", id))
	err := s.indexer.DeleteConversation(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
