package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/saulotoledo/strings-database/internal/platform/errors"
	stringshttp "github.com/saulotoledo/strings-database/internal/services/strings/api/http"
	"github.com/saulotoledo/strings-database/internal/services/strings/query"
	"github.com/saulotoledo/strings-database/internal/services/strings/storage/memory"
)

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()

	api := stringshttp.NewHandler(query.NewService(memory.NewStore()), stringshttp.Config{})
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "localhost:8080", "ftp://example.com", "://bad"} {
		if _, err := New(raw); err == nil {
			t.Fatalf("New(%q): expected error", raw)
		}
	}
}

func TestSaveGetAndList(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)
	ctx := context.Background()
	for _, value := range []string{"c", "a", "b"} {
		if _, err := c.Save(ctx, value); err != nil {
			t.Fatalf("save %q: %v", value, err)
		}
	}

	got, err := c.Get(ctx, 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Value != "a" {
		t.Fatalf("value = %q, want %q", got.Value, "a")
	}

	page, err := c.List(ctx, ListOptions{Sort: []string{"value,desc"}, Size: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalElements != 3 || page.TotalPages != 2 || len(page.Content) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Content[0].ID != 1 || page.Content[1].ID != 3 {
		t.Fatalf("content = %+v", page.Content)
	}
	if len(page.Sort) != 1 || page.Sort[0] != (SortOrder{Property: "value", Direction: "DESC"}) {
		t.Fatalf("sort = %+v", page.Sort)
	}

	empty := ""
	page, err = c.List(ctx, ListOptions{Filter: &empty, OrderBy: "id desc"})
	if err != nil {
		t.Fatalf("list with empty filter: %v", err)
	}
	if page.TotalElements != 3 || page.Content[0].ID != 3 {
		t.Fatalf("page = %+v", page)
	}

	zzz := "zzz"
	page, err = c.List(ctx, ListOptions{Filter: &zzz})
	if err != nil {
		t.Fatalf("list zzz: %v", err)
	}
	if !page.Empty || page.TotalElements != 0 {
		t.Fatalf("page = %+v", page)
	}
}

func TestErrorsAreTyped(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, WithLanguage("pt-BR"))
	ctx := context.Background()

	_, err := c.Get(ctx, 404)
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = c.Save(ctx, "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Code != apperrors.CodeValueBlank || apiErr.Rule != "blank" {
		t.Fatalf("api error = %+v", apiErr)
	}
	if apiErr.Message != "O valor do texto é obrigatório" {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if apperrors.CodeOf(err) != apperrors.CodeValueBlank {
		t.Fatalf("code of = %q", apperrors.CodeOf(err))
	}

	_, err = c.List(ctx, ListOptions{Page: -1})
	if apperrors.CodeOf(err) != apperrors.CodeInvalidPage {
		t.Fatalf("code of = %q", apperrors.CodeOf(err))
	}
}

func TestNonJSONErrorsKeepStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.Get(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Code != apperrors.CodeUnknown || apiErr.Message != "upstream down" {
		t.Fatalf("api error = %+v", apiErr)
	}
}

func TestWithTimeoutBoundsRequests(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := New(srv.URL, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Get(context.Background(), 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
