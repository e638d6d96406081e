package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/newagedev/animalcompare/internal/model"
)

const (
	defaultFavouritesLimit = 10
	defaultHistoryPageSize = 20
	maxPageSize            = 100
)

// CompareService is the consumer-facing boundary the API publishes upward.
type CompareService interface {
	NextPair(ctx context.Context, cat model.Category) (model.Pair, error)
	Commit(ctx context.Context, winnerBacklogID, loserBacklogID int64) error
	Favourites(ctx context.Context, cat model.Category, limit int) ([]model.FavouriteAnimal, error)
	History(ctx context.Context, cat model.Category, page, pageSize int) ([]model.ComparisonRecord, error)
	DeleteComparison(ctx context.Context, id int64) error
}

// ---------------------------------------------------------------------------
// GET /api/categories
// ---------------------------------------------------------------------------

type categoryResponse struct {
	Name        model.Category `json:"name"`
	DisplayName string         `json:"display_name"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := model.AllCategories()
	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = categoryResponse{Name: c, DisplayName: c.DisplayName()}
	}
	writeJSON(w, http.StatusOK, out)
}

// ---------------------------------------------------------------------------
// GET /api/categories/{category}/pair
// ---------------------------------------------------------------------------

func (s *Server) handleNextPair(w http.ResponseWriter, r *http.Request) {
	cat, err := model.ParseCategory(r.PathValue("category"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown category")
		return
	}

	pair, err := s.compare.NextPair(r.Context(), cat)
	if errors.Is(err, model.ErrEmptyBacklog) {
		// Not a failure: replenishment is already running. The client
		// shows a loading state and retries.
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "loading"})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read backlog")
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// ---------------------------------------------------------------------------
// POST /api/categories/{category}/comparisons
// ---------------------------------------------------------------------------

type commitRequest struct {
	WinnerBacklogID int64 `json:"winner_backlog_id"`
	LoserBacklogID  int64 `json:"loser_backlog_id"`
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	if _, err := model.ParseCategory(r.PathValue("category")); err != nil {
		writeError(w, http.StatusNotFound, "unknown category")
		return
	}

	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.WinnerBacklogID == 0 || req.LoserBacklogID == 0 {
		writeError(w, http.StatusBadRequest, "winner_backlog_id and loser_backlog_id are required")
		return
	}

	err := s.compare.Commit(r.Context(), req.WinnerBacklogID, req.LoserBacklogID)
	if errors.Is(err, model.ErrBacklogEntryGone) {
		writeError(w, http.StatusConflict, "pair no longer in backlog")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record comparison")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// ---------------------------------------------------------------------------
// GET /api/favourites?category=&limit=
// ---------------------------------------------------------------------------

func (s *Server) handleFavourites(w http.ResponseWriter, r *http.Request) {
	cat, ok := optionalCategory(w, r)
	if !ok {
		return
	}
	limit := queryInt(r, "limit", defaultFavouritesLimit)
	if limit < 1 || limit > maxPageSize {
		limit = defaultFavouritesLimit
	}

	favs, err := s.compare.Favourites(r.Context(), cat, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read favourites")
		return
	}
	if favs == nil {
		favs = []model.FavouriteAnimal{}
	}
	writeJSON(w, http.StatusOK, favs)
}

// ---------------------------------------------------------------------------
// GET /api/history?category=&page=&page_size=
// ---------------------------------------------------------------------------

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	cat, ok := optionalCategory(w, r)
	if !ok {
		return
	}
	page := queryInt(r, "page", 0)
	if page < 0 {
		page = 0
	}
	pageSize := queryInt(r, "page_size", defaultHistoryPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultHistoryPageSize
	}

	records, err := s.compare.History(r.Context(), cat, page, pageSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	if records == nil {
		records = []model.ComparisonRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// ---------------------------------------------------------------------------
// DELETE /api/comparisons/{id}
// ---------------------------------------------------------------------------

func (s *Server) handleDeleteComparison(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comparison id")
		return
	}

	// Idempotent: deleting an id that no longer exists succeeds the same
	// way, so retried UI actions are safe.
	if err := s.compare.DeleteComparison(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete comparison")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// optionalCategory parses the category query parameter; empty means all.
// On an unknown category it writes a 404 and returns ok=false.
func optionalCategory(w http.ResponseWriter, r *http.Request) (model.Category, bool) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		return "", true
	}
	cat, err := model.ParseCategory(raw)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown category")
		return "", false
	}
	return cat, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
