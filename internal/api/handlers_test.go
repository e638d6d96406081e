package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/newagedev/animalcompare/internal/model"
)

// mockCompare implements CompareService with canned responses.
type mockCompare struct {
	pair        model.Pair
	pairErr     error
	commitErr   error
	commits     []commitCall
	deleted     []int64
	favourites  []model.FavouriteAnimal
	history     []model.ComparisonRecord
	historyArgs []historyCall
}

type commitCall struct {
	Winner, Loser int64
}

type historyCall struct {
	Cat      model.Category
	Page     int
	PageSize int
}

func (m *mockCompare) NextPair(_ context.Context, _ model.Category) (model.Pair, error) {
	return m.pair, m.pairErr
}

func (m *mockCompare) Commit(_ context.Context, winner, loser int64) error {
	m.commits = append(m.commits, commitCall{Winner: winner, Loser: loser})
	return m.commitErr
}

func (m *mockCompare) Favourites(_ context.Context, _ model.Category, _ int) ([]model.FavouriteAnimal, error) {
	return m.favourites, nil
}

func (m *mockCompare) History(_ context.Context, cat model.Category, page, pageSize int) ([]model.ComparisonRecord, error) {
	m.historyArgs = append(m.historyArgs, historyCall{Cat: cat, Page: page, PageSize: pageSize})
	return m.history, nil
}

func (m *mockCompare) DeleteComparison(_ context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func doRequest(t *testing.T, mock *mockCompare, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	srv := New(mock, "*")
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleCategories(t *testing.T) {
	rec := doRequest(t, &mockCompare{}, http.MethodGet, "/api/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var cats []categoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cats) != 3 {
		t.Errorf("len(cats) = %d, want 3", len(cats))
	}
}

func TestHandleNextPair(t *testing.T) {
	t.Run("pair available", func(t *testing.T) {
		mock := &mockCompare{pair: model.Pair{
			First:  model.AnimalInBacklog{BacklogID: 1, Animal: model.Animal{ID: 10, URL: "https://random.dog/a.jpg", Type: model.CategoryDog}},
			Second: model.AnimalInBacklog{BacklogID: 2, Animal: model.Animal{ID: 11, URL: "https://random.dog/b.jpg", Type: model.CategoryDog}},
		}}
		rec := doRequest(t, mock, http.MethodGet, "/api/categories/dog/pair", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var pair model.Pair
		if err := json.Unmarshal(rec.Body.Bytes(), &pair); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if pair.First.BacklogID != 1 || pair.Second.BacklogID != 2 {
			t.Errorf("pair backlog ids = (%d, %d), want (1, 2)", pair.First.BacklogID, pair.Second.BacklogID)
		}
	})

	t.Run("empty backlog is a loading state", func(t *testing.T) {
		mock := &mockCompare{pairErr: model.ErrEmptyBacklog}
		rec := doRequest(t, mock, http.MethodGet, "/api/categories/dog/pair", "")
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "loading") {
			t.Errorf("body = %q, want loading status", rec.Body.String())
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		rec := doRequest(t, &mockCompare{}, http.MethodGet, "/api/categories/unicorn/pair", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandleCommit(t *testing.T) {
	t.Run("records the outcome", func(t *testing.T) {
		mock := &mockCompare{}
		rec := doRequest(t, mock, http.MethodPost, "/api/categories/dog/comparisons",
			`{"winner_backlog_id": 5, "loser_backlog_id": 7}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", rec.Code)
		}
		if len(mock.commits) != 1 || mock.commits[0] != (commitCall{Winner: 5, Loser: 7}) {
			t.Errorf("commits = %+v, want one (5, 7)", mock.commits)
		}
	})

	t.Run("stale pair conflicts", func(t *testing.T) {
		mock := &mockCompare{commitErr: model.ErrBacklogEntryGone}
		rec := doRequest(t, mock, http.MethodPost, "/api/categories/dog/comparisons",
			`{"winner_backlog_id": 5, "loser_backlog_id": 7}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("missing ids", func(t *testing.T) {
		rec := doRequest(t, &mockCompare{}, http.MethodPost, "/api/categories/dog/comparisons",
			`{"winner_backlog_id": 5}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		rec := doRequest(t, &mockCompare{}, http.MethodPost, "/api/categories/dog/comparisons", "{not json")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandleHistory_Defaults(t *testing.T) {
	mock := &mockCompare{}
	rec := doRequest(t, mock, http.MethodGet, "/api/history?category=cat&page=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(mock.historyArgs) != 1 {
		t.Fatalf("history calls = %d, want 1", len(mock.historyArgs))
	}
	got := mock.historyArgs[0]
	want := historyCall{Cat: model.CategoryCat, Page: 2, PageSize: defaultHistoryPageSize}
	if got != want {
		t.Errorf("history args = %+v, want %+v", got, want)
	}

	// Empty list encodes as [], not null.
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %q, want []", rec.Body.String())
	}
}

func TestHandleFavourites_UnknownCategory(t *testing.T) {
	rec := doRequest(t, &mockCompare{}, http.MethodGet, "/api/favourites?category=unicorn", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDeleteComparison(t *testing.T) {
	t.Run("deletes by id", func(t *testing.T) {
		mock := &mockCompare{}
		rec := doRequest(t, mock, http.MethodDelete, "/api/comparisons/42", "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if len(mock.deleted) != 1 || mock.deleted[0] != 42 {
			t.Errorf("deleted = %v, want [42]", mock.deleted)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		rec := doRequest(t, &mockCompare{}, http.MethodDelete, "/api/comparisons/abc", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}
