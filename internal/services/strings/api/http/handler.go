// Package stringshttp exposes the string query service as a JSON HTTP API.
package stringshttp

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	apperrors "github.com/saulotoledo/strings-database/internal/platform/errors"
	"github.com/saulotoledo/strings-database/internal/platform/errors/i18n"
	"github.com/saulotoledo/strings-database/internal/platform/httpx"
	"github.com/saulotoledo/strings-database/internal/platform/pagination"
	"github.com/saulotoledo/strings-database/internal/services/strings/query"
	"github.com/saulotoledo/strings-database/internal/services/strings/storage"
)

const (
	// CollectionPath is the route of the string collection.
	CollectionPath = "/strings"

	maxBodyBytes = 64 << 10
)

// Query parameters.
const (
	ParamFilter  = "filter"
	ParamPage    = "page"
	ParamSize    = "size"
	ParamSort    = "sort"
	ParamOrderBy = "order_by"
	ParamLang    = "lang"
)

// Service is the query surface the handler serves.
type Service interface {
	GetMany(ctx context.Context, filter storage.Filter, page pagination.Spec) (query.Page, error)
	GetOne(ctx context.Context, id int64) (query.Projection, bool, error)
	Save(ctx context.Context, request query.SaveRequest) (query.Projection, error)
}

// Config holds page size limits for listings.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Default page size limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 2000
)

// Handler routes string API requests.
type Handler struct {
	service   Service
	pageSizes pagination.PageSizeConfig
	router    http.Handler
}

// NewHandler builds the API handler. Zero limits fall back to the defaults.
func NewHandler(service Service, cfg Config) *Handler {
	h := &Handler{
		service: service,
		pageSizes: pagination.PageSizeConfig{
			Default: cfg.DefaultPageSize,
			Max:     cfg.MaxPageSize,
		},
	}
	if h.pageSizes.Default <= 0 {
		h.pageSizes.Default = DefaultPageSize
	}
	if h.pageSizes.Max <= 0 {
		h.pageSizes.Max = MaxPageSize
	}
	if h.pageSizes.Default > h.pageSizes.Max {
		h.pageSizes.Default = h.pageSizes.Max
	}

	router := mux.NewRouter()
	router.HandleFunc(CollectionPath, h.list).Methods(http.MethodGet)
	router.HandleFunc(CollectionPath, h.save).Methods(http.MethodPost)
	router.HandleFunc(CollectionPath+"/{id}", h.get).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, apperrors.New(apperrors.CodeNotFound, "route not found"))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})

	h.router = httpx.Chain(router, httpx.RequestID(), httpx.RecoverPanic())
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, page, err := h.parseListQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.service.GetMany(r.Context(), filter, page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, newPageDocument(result))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rawID := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.writeError(w, r, apperrors.WithMetadata(apperrors.CodeInvalidID, "parse id", map[string]string{"id": rawID}))
		return
	}
	projection, found, err := h.service.GetOne(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		h.writeError(w, r, apperrors.WithMetadata(apperrors.CodeNotFound, "string not found", map[string]string{"id": rawID}))
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, projection)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var request query.SaveRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&request); err != nil {
		h.writeError(w, r, apperrors.Wrap(apperrors.CodeMalformedRequest, "decode save request", err))
		return
	}
	projection, err := h.service.Save(r.Context(), request)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", CollectionPath+"/"+strconv.FormatInt(projection.ID, 10))
	_ = httpx.WriteJSON(w, http.StatusCreated, projection)
}

// parseListQuery builds the filter and page specification from the query
// string. A present but empty filter still counts as a filter.
func (h *Handler) parseListQuery(r *http.Request) (storage.Filter, pagination.Spec, error) {
	values := r.URL.Query()

	filter := storage.NoFilter()
	if raw, ok := values[ParamFilter]; ok && len(raw) > 0 {
		filter = storage.Contains(raw[0])
	}

	index, err := parseIntParam(values.Get(ParamPage), 0)
	if err != nil || index < 0 {
		return storage.Filter{}, pagination.Spec{}, invalidParam(apperrors.CodeInvalidPage, ParamPage, values.Get(ParamPage), err)
	}
	size, err := parseIntParam(values.Get(ParamSize), 0)
	if err != nil {
		return storage.Filter{}, pagination.Spec{}, invalidParam(apperrors.CodeInvalidPage, ParamSize, values.Get(ParamSize), err)
	}
	size = pagination.ClampPageSize(size, h.pageSizes)

	sortValues := values[ParamSort]
	orderBy := strings.TrimSpace(values.Get(ParamOrderBy))
	var keys []pagination.SortKey
	switch {
	case len(sortValues) > 0 && orderBy != "":
		return storage.Filter{}, pagination.Spec{}, invalidParam(apperrors.CodeInvalidSort, ParamOrderBy, orderBy,
			errors.New("sort and order_by are mutually exclusive"))
	case orderBy != "":
		keys, err = pagination.ParseOrderBy(orderBy, storage.SortConfig)
		if err != nil {
			return storage.Filter{}, pagination.Spec{}, invalidParam(apperrors.CodeInvalidSort, ParamOrderBy, orderBy, err)
		}
	default:
		keys, err = pagination.ParseSortParams(sortValues, storage.SortConfig)
		if err != nil {
			return storage.Filter{}, pagination.Spec{}, invalidParam(apperrors.CodeInvalidSort, ParamSort, strings.Join(sortValues, "&"), err)
		}
	}

	page, err := pagination.NewSpec(index, size, keys)
	if err != nil {
		return storage.Filter{}, pagination.Spec{}, invalidParam(apperrors.CodeInvalidPage, ParamPage, values.Get(ParamPage), err)
	}
	return filter, page, nil
}

func parseIntParam(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func invalidParam(code apperrors.Code, param, value string, cause error) error {
	if cause == nil {
		cause = errors.New("out of range")
	}
	return &apperrors.Error{
		Code:     code,
		Message:  "invalid " + param + " " + strconv.Quote(value),
		Metadata: map[string]string{"param": param, "value": value},
		Cause:    cause,
	}
}

type errorDocument struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
	Rule  string `json:"rule,omitempty"`
}

// writeError renders err in the caller's locale with the status its code
// maps to. Errors outside the platform taxonomy become storage failures.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	domainErr, ok := apperrors.As(err)
	if !ok {
		domainErr = apperrors.Wrap(apperrors.CodeStorageFailure, "unclassified failure", err)
	}
	status := domainErr.Code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Printf("request failed method=%s path=%s request_id=%s code=%s err=%v",
			r.Method, r.URL.Path, httpx.RequestIDOf(r), domainErr.Code, err)
	}

	catalog := i18n.Resolve(r.URL.Query().Get(ParamLang), r.Header.Get("Accept-Language"))
	w.Header().Set("Content-Language", catalog.Locale())
	_ = httpx.WriteJSON(w, status, errorDocument{
		Error: catalog.Format(domainErr.Code, domainErr.Metadata),
		Code:  string(domainErr.Code),
		Field: domainErr.Metadata["field"],
		Rule:  domainErr.Metadata["rule"],
	})
}
