package stringsctl

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	apperrors "github.com/saulotoledo/strings-database/internal/platform/errors"
	stringshttp "github.com/saulotoledo/strings-database/internal/services/strings/api/http"
	server "github.com/saulotoledo/strings-database/internal/services/strings/app"
	"github.com/saulotoledo/strings-database/internal/services/strings/query"
	"github.com/saulotoledo/strings-database/internal/services/strings/storage/memory"
)

func newAPI(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(stringshttp.NewHandler(query.NewService(memory.NewStore()), stringshttp.Config{}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, addr string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	err := Run(context.Background(), append([]string{"--addr", addr}, args...), &out,
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
		kong.Writers(&out, &out),
	)
	return out.String(), err
}

func TestSaveGetList(t *testing.T) {
	t.Parallel()

	addr := newAPI(t)
	for _, value := range []string{"alpha one", "beta two", "alpha three"} {
		out, err := run(t, addr, "save", value)
		if err != nil {
			t.Fatalf("save %q: %v", value, err)
		}
		if !strings.Contains(out, `"`+value+`"`) {
			t.Fatalf("save output = %q", out)
		}
	}

	out, err := run(t, addr, "get", "2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, `"beta two"`) {
		t.Fatalf("get output = %q", out)
	}

	out, err = run(t, addr, "list", "--filter", "alpha", "--sort", "value,desc")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	three := strings.Index(out, `"alpha three"`)
	one := strings.Index(out, `"alpha one"`)
	if three < 0 || one < 0 || three > one {
		t.Fatalf("list output not sorted desc: %q", out)
	}
	if strings.Contains(out, "beta") {
		t.Fatalf("list output ignored filter: %q", out)
	}
	if !strings.Contains(out, "page 1 of 1, 2 total") {
		t.Fatalf("list footer missing: %q", out)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	_, err := run(t, newAPI(t), "get", "9")
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestSaveBlankReturnsValidationError(t *testing.T) {
	t.Parallel()

	_, err := run(t, newAPI(t), "save", " ")
	if apperrors.CodeOf(err) != apperrors.CodeValueBlank {
		t.Fatalf("err = %v, want VALUE_BLANK", err)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	if _, err := run(t, newAPI(t), "get", "abc"); err == nil {
		t.Fatal("expected parse error for non-integer id")
	}
	if _, err := run(t, "not a url", "list"); err == nil {
		t.Fatal("expected invalid address error")
	}
}

func TestHealthReportsServing(t *testing.T) {
	srv, err := server.New(context.Background(), server.Config{
		HTTPAddr:   "127.0.0.1:0",
		HealthAddr: "127.0.0.1:0",
		Store:      server.StoreMemory,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	runCtx, cancel := context.WithCancel(context.Background())
	serveDone := make(chan error, 1)
	go func() { serveDone <- srv.Serve(runCtx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-serveDone; err != nil {
			t.Fatalf("serve: %v", err)
		}
	})

	out, err := run(t, "http://"+srv.Addr(), "health", "--health-addr", srv.HealthAddr(), "--wait")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out, "SERVING") {
		t.Fatalf("health output = %q", out)
	}

	if _, err := run(t, "http://"+srv.Addr(), "health", "--health-addr", srv.HealthAddr(), "--service", "other.Service"); err == nil {
		t.Fatal("expected unknown service error")
	}
}
