// Package query orchestrates reads and writes of string entries: it
// validates saves, delegates to the store and maps records to projections.
package query

import (
	"context"
	"fmt"

	apperrors "github.com/saulotoledo/strings-database/internal/platform/errors"
	"github.com/saulotoledo/strings-database/internal/platform/pagination"
	"github.com/saulotoledo/strings-database/internal/services/strings/domain"
	"github.com/saulotoledo/strings-database/internal/services/strings/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/saulotoledo/strings-database/internal/services/strings/query"

// Service serves string entry queries over a store. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	store  storage.Store
	tracer trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(s *Service) {
		if provider != nil {
			s.tracer = provider.Tracer(tracerName)
		}
	}
}

// NewService builds a query service backed by store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetMany returns one page of projections. The store's total is carried as
// is, so it counts every match, not just the returned window.
func (s *Service) GetMany(ctx context.Context, filter storage.Filter, page pagination.Spec) (_ Page, err error) {
	ctx, span := s.tracer.Start(ctx, "strings.GetMany", trace.WithAttributes(
		attribute.Bool("strings.filter.present", filter.Present),
		attribute.Int("strings.page.index", page.Index),
		attribute.Int("strings.page.size", page.Size),
		attribute.Int("strings.sort.keys", len(page.Sort)),
	))
	defer func() { endSpan(span, err) }()

	if s.store == nil {
		return Page{}, errNotConfigured()
	}
	result, err := s.store.Scan(ctx, filter, page)
	if err != nil {
		return Page{}, apperrors.Wrap(apperrors.CodeStorageFailure, "scan strings", err)
	}

	items := make([]Projection, 0, len(result.Records))
	for _, record := range result.Records {
		items = append(items, ToProjection(record))
	}
	span.SetAttributes(
		attribute.Int("strings.result.count", len(items)),
		attribute.Int64("strings.result.total", result.Total),
	)
	return Page{
		Items: items,
		Index: page.Index,
		Size:  page.Size,
		Sort:  append([]pagination.SortKey(nil), page.Sort...),
		Total: result.Total,
	}, nil
}

// GetOne returns the projection for id; found is false when no record has it.
func (s *Service) GetOne(ctx context.Context, id int64) (_ Projection, found bool, err error) {
	ctx, span := s.tracer.Start(ctx, "strings.GetOne", trace.WithAttributes(
		attribute.Int64("strings.id", id),
	))
	defer func() { endSpan(span, err) }()

	if s.store == nil {
		return Projection{}, false, errNotConfigured()
	}
	record, found, err := s.store.Get(ctx, id)
	if err != nil {
		return Projection{}, false, apperrors.Wrap(apperrors.CodeStorageFailure, fmt.Sprintf("get string %d", id), err)
	}
	span.SetAttributes(attribute.Bool("strings.found", found))
	if !found {
		return Projection{}, false, nil
	}
	return ToProjection(record), true, nil
}

// Save validates request, persists it and returns the stored projection.
// An invalid value is rejected before the store is touched.
func (s *Service) Save(ctx context.Context, request SaveRequest) (_ Projection, err error) {
	ctx, span := s.tracer.Start(ctx, "strings.Save")
	defer func() { endSpan(span, err) }()

	if err := domain.ValidateValue(request.Value); err != nil {
		return Projection{}, err
	}
	if s.store == nil {
		return Projection{}, errNotConfigured()
	}
	created, err := s.store.Create(ctx, FromSaveRequest(request))
	if err != nil {
		return Projection{}, apperrors.Wrap(apperrors.CodeStorageFailure, "create string", err)
	}
	span.SetAttributes(attribute.Int64("strings.id", created.ID))
	return ToProjection(created), nil
}

func errNotConfigured() error {
	return apperrors.New(apperrors.CodeStorageFailure, "string store is not configured")
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
	}
	span.End()
}
