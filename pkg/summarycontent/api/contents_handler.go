package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tendant/summary-content/pkg/summarycontent"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// SummaryFinder is the part of summarycontent.Aggregator the handler needs
type SummaryFinder interface {
	FindSummaryContents(ctx context.Context, filters summarycontent.Filters, args summarycontent.Args, paginateArgs *summarycontent.PaginateArgs) (*summarycontent.PaginatedSummaries, error)
}

// ContentsHandler serves the unified content listing
type ContentsHandler struct {
	finder          SummaryFinder
	defaultPageSize int
	maxPageSize     int
	validate        *validator.Validate
}

// HandlerOption configures a ContentsHandler
type HandlerOption func(*ContentsHandler)

// WithPageSizes sets the page size used when the caller sends none and the
// largest page size accepted.
func WithPageSizes(defaultSize, maxSize int) HandlerOption {
	return func(h *ContentsHandler) {
		if defaultSize > 0 {
			h.defaultPageSize = defaultSize
		}
		if maxSize > 0 {
			h.maxPageSize = maxSize
		}
	}
}

// NewContentsHandler creates a new contents handler
func NewContentsHandler(finder SummaryFinder, opts ...HandlerOption) *ContentsHandler {
	h := &ContentsHandler{
		finder:          finder,
		defaultPageSize: DefaultPageSize,
		maxPageSize:     MaxPageSize,
		validate:        validator.New(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.defaultPageSize > h.maxPageSize {
		h.defaultPageSize = h.maxPageSize
	}
	return h
}

// Routes returns the routes for contents
func (h *ContentsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListContents)

	return r
}

// ListContentsQuery holds the raw query parameters of a listing request
type ListContentsQuery struct {
	ProjectUUIDs     []string `validate:"omitempty,dive,uuid"`
	SpaceUUIDs       []string `validate:"omitempty,dive,uuid"`
	ContentTypes     []string `validate:"omitempty,dive,oneof=chart dashboard space"`
	ChartSource      string   `validate:"omitempty,oneof=dbt_explore sql"`
	Search           string   `validate:"max=255"`
	CreatedBy        []string `validate:"omitempty,dive,uuid"`
	ParentSpaceUUIDs []string `validate:"omitempty,dive,uuid"`
	RootSpaces       bool
	SortBy           string `validate:"omitempty,oneof=name space_name created_at last_updated_at views"`
	SortDirection    string `validate:"omitempty,oneof=asc desc ASC DESC"`
	Page             int    `validate:"gte=0"`
	PageSize         int    `validate:"gte=0"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes what went wrong
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListContents returns one page of summaries across every content type
func (h *ContentsHandler) ListContents(w http.ResponseWriter, r *http.Request) {
	query, err := parseListContentsQuery(r.URL.Query())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(query); err != nil {
		h.badRequest(w, r, err)
		return
	}

	paginateArgs, err := h.paginateArgs(query)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	result, err := h.finder.FindSummaryContents(r.Context(), query.filters(), query.args(), paginateArgs)
	if err != nil {
		if summarycontent.IsBadRequest(err) {
			h.badRequest(w, r, err)
			return
		}
		slog.Error("Failed to list contents", "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Failed to list contents")
		return
	}

	render.JSON(w, r, result)
}

func (h *ContentsHandler) paginateArgs(query ListContentsQuery) (*summarycontent.PaginateArgs, error) {
	args := &summarycontent.PaginateArgs{Page: query.Page, PageSize: query.PageSize}
	if args.Page == 0 {
		args.Page = 1
	}
	if args.PageSize == 0 {
		args.PageSize = h.defaultPageSize
	}
	if args.PageSize > h.maxPageSize {
		return nil, fmt.Errorf("page_size must not exceed %d", h.maxPageSize)
	}
	return args, nil
}

func (h *ContentsHandler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	slog.Warn("Invalid contents request", "query", r.URL.RawQuery, "error", err)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
		writeError(w, r, http.StatusBadRequest, "validation_error", strings.Join(fields, "; "))
		return
	}
	writeError(w, r, http.StatusBadRequest, "bad_request", err.Error())
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

func parseListContentsQuery(values url.Values) (ListContentsQuery, error) {
	query := ListContentsQuery{
		ProjectUUIDs:     listParam(values, "project_uuid"),
		SpaceUUIDs:       listParam(values, "space_uuid"),
		ContentTypes:     listParam(values, "content_type"),
		ChartSource:      values.Get("chart_source"),
		Search:           values.Get("search"),
		CreatedBy:        listParam(values, "created_by"),
		ParentSpaceUUIDs: listParam(values, "parent_space_uuid"),
		SortBy:           values.Get("sort_by"),
		SortDirection:    values.Get("sort_direction"),
	}

	var err error
	if v := values.Get("root_spaces"); v != "" {
		if query.RootSpaces, err = strconv.ParseBool(v); err != nil {
			return query, fmt.Errorf("invalid root_spaces %q", v)
		}
	}
	if v := values.Get("page"); v != "" {
		if query.Page, err = strconv.Atoi(v); err != nil || query.Page < 1 {
			return query, fmt.Errorf("invalid page %q", v)
		}
	}
	if v := values.Get("page_size"); v != "" {
		if query.PageSize, err = strconv.Atoi(v); err != nil || query.PageSize < 1 {
			return query, fmt.Errorf("invalid page_size %q", v)
		}
	}
	return query, nil
}

// listParam accepts both repeated parameters and comma separated values
func listParam(values url.Values, key string) []string {
	var out []string
	for _, v := range values[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (q ListContentsQuery) filters() summarycontent.Filters {
	filters := summarycontent.Filters{
		ProjectUUIDs:       parseUUIDs(q.ProjectUUIDs),
		SpaceUUIDs:         parseUUIDs(q.SpaceUUIDs),
		ChartSource:        summarycontent.ChartSource(q.ChartSource),
		Search:             q.Search,
		CreatedByUserUUIDs: parseUUIDs(q.CreatedBy),
		Space: summarycontent.SpaceFilters{
			ParentSpaceUUIDs: parseUUIDs(q.ParentSpaceUUIDs),
			RootSpaces:       q.RootSpaces,
		},
	}
	for _, t := range q.ContentTypes {
		filters.ContentTypes = append(filters.ContentTypes, summarycontent.ContentType(t))
	}
	return filters
}

func (q ListContentsQuery) args() summarycontent.Args {
	return summarycontent.Args{
		SortBy:        q.SortBy,
		SortDirection: summarycontent.SortDirection(q.SortDirection),
	}
}

// parseUUIDs expects ids already checked by the validator
func parseUUIDs(ids []string) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if parsed, err := uuid.Parse(id); err == nil {
			out = append(out, parsed)
		}
	}
	return out
}
