// Package server wires the strings runtime: storage, the HTTP API and the
// gRPC health endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/saulotoledo/strings-database/internal/platform/timeouts"
	stringshttp "github.com/saulotoledo/strings-database/internal/services/strings/api/http"
	"github.com/saulotoledo/strings-database/internal/services/strings/query"
	"github.com/saulotoledo/strings-database/internal/services/strings/storage"
	"github.com/saulotoledo/strings-database/internal/services/strings/storage/memory"
	stringspostgres "github.com/saulotoledo/strings-database/internal/services/strings/storage/postgres"
	stringssqlite "github.com/saulotoledo/strings-database/internal/services/strings/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/netutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Storage backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// HealthServiceName is the health-checked service name besides "".
const HealthServiceName = "stringsdb.v1.Strings"

// Config configures a Server.
type Config struct {
	// HTTPAddr is the API listen address.
	HTTPAddr string
	// HealthAddr is the gRPC health listen address; empty disables it.
	HealthAddr string
	// Store selects the backend: sqlite (default), postgres or memory.
	Store       string
	DBPath      string
	PostgresURL string

	DefaultPageSize int
	MaxPageSize     int
	// MaxConnections caps concurrent HTTP connections; 0 is unlimited.
	MaxConnections int
}

// Server hosts the strings HTTP API, the health endpoint and the storage
// lifecycle.
type Server struct {
	httpListener   net.Listener
	httpServer     *http.Server
	healthListener net.Listener
	grpcServer     *grpc.Server
	health         *health.Server
	closeStore     func() error
}

// New opens storage and binds the listeners described by cfg.
func New(ctx context.Context, cfg Config) (*Server, error) {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &Server{closeStore: closeStore}

	httpListener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}
	if cfg.MaxConnections > 0 {
		httpListener = netutil.LimitListener(httpListener, cfg.MaxConnections)
	}
	s.httpListener = httpListener

	api := stringshttp.NewHandler(query.NewService(store), stringshttp.Config{
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})
	s.httpServer = &http.Server{
		Handler:           otelhttp.NewHandler(api, "stringsdb.http"),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	if strings.TrimSpace(cfg.HealthAddr) != "" {
		healthListener, err := net.Listen("tcp", cfg.HealthAddr)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("listen on %s: %w", cfg.HealthAddr, err)
		}
		s.healthListener = healthListener
		s.grpcServer = grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
		s.health = health.NewServer()
		grpc_health_v1.RegisterHealthServer(s.grpcServer, s.health)
		s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		s.health.SetServingStatus(HealthServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	}

	return s, nil
}

// Addr returns the HTTP listener address.
func (s *Server) Addr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// HealthAddr returns the health listener address, or "" when disabled.
func (s *Server) HealthAddr() string {
	if s == nil || s.healthListener == nil {
		return ""
	}
	return s.healthListener.Addr().String()
}

// Run creates and serves a strings server until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve runs the HTTP and health servers until context cancellation or the
// first serve failure, then shuts both down.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("strings server listening at %v", s.httpListener.Addr())
	serveErr := make(chan error, 2)
	go func() {
		if err := s.httpServer.Serve(s.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("serve HTTP: %w", err)
			return
		}
		serveErr <- nil
	}()
	if s.grpcServer != nil {
		log.Printf("strings health listening at %v", s.healthListener.Addr())
		go func() {
			if err := s.grpcServer.Serve(s.healthListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				serveErr <- fmt.Errorf("serve gRPC health: %w", err)
				return
			}
			serveErr <- nil
		}()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}
	if shutdownErr := s.shutdown(); err == nil {
		err = shutdownErr
	}
	return err
}

func (s *Server) shutdown() error {
	if s.health != nil {
		s.health.Shutdown()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	err := s.httpServer.Shutdown(shutdownCtx)
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
	if err != nil {
		return fmt.Errorf("shutdown HTTP: %w", err)
	}
	return nil
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	if s.healthListener != nil {
		_ = s.healthListener.Close()
	}
	if s.closeStore != nil {
		if err := s.closeStore(); err != nil {
			log.Printf("close strings store: %v", err)
		}
		s.closeStore = nil
	}
}

func openStore(ctx context.Context, cfg Config) (storage.Store, func() error, error) {
	switch kind := strings.ToLower(strings.TrimSpace(cfg.Store)); kind {
	case "", StoreSQLite:
		path := strings.TrimSpace(cfg.DBPath)
		if path == "" {
			path = filepath.Join("data", "strings.db")
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := stringssqlite.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open strings sqlite store: %w", err)
		}
		return store, store.Close, nil
	case StorePostgres:
		store, err := stringspostgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open strings postgres store: %w", err)
		}
		return store, store.Close, nil
	case StoreMemory:
		return memory.NewStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
