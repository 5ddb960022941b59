package summarycontent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/huandu/go-sqlbuilder"
)

// sortableColumns are the summary columns every branch populates and that
// may therefore be used as the caller's sort key.
var sortableColumns = map[string]struct{}{
	ColumnName:          {},
	ColumnSpaceName:     {},
	ColumnCreatedAt:     {},
	ColumnLastUpdatedAt: {},
	ColumnViews:         {},
}

// IsSortableColumn reports whether column may be passed as Args.SortBy.
func IsSortableColumn(column string) bool {
	_, ok := sortableColumns[column]
	return ok
}

// Aggregator builds and runs the unioned summary query.
type Aggregator struct {
	registry  *Registry
	paginator Paginator
}

// Option represents a functional option for configuring the aggregator
type Option func(*Aggregator)

// WithRegistry sets the content configurations the aggregator queries
func WithRegistry(registry *Registry) Option {
	return func(a *Aggregator) {
		a.registry = registry
	}
}

// WithPaginator sets the paginator that executes the summary query
func WithPaginator(paginator Paginator) Option {
	return func(a *Aggregator) {
		a.paginator = paginator
	}
}

// New creates a new aggregator with the given options
func New(options ...Option) (*Aggregator, error) {
	a := &Aggregator{}
	for _, option := range options {
		option(a)
	}

	if a.registry == nil {
		return nil, fmt.Errorf("%w: registry is required", ErrInvalidConfiguration)
	}
	if a.paginator == nil {
		return nil, fmt.Errorf("%w: paginator is required", ErrInvalidConfiguration)
	}

	return a, nil
}

// FindSummaryContents returns the summaries of every content type relevant to
// filters, ordered by content_type_rank and then by args (default
// last_updated_at DESC). paginateArgs may be nil to fetch every row.
//
// When no configuration matches the filters no query is issued and the result
// has empty Data and nil Pagination. A row that no configuration (or more than
// one) claims fails the whole call.
func (a *Aggregator) FindSummaryContents(ctx context.Context, filters Filters, args Args, paginateArgs *PaginateArgs) (*PaginatedSummaries, error) {
	orderBy, err := orderByClause(args)
	if err != nil {
		return nil, err
	}
	if paginateArgs != nil && (paginateArgs.Page < 1 || paginateArgs.PageSize < 1) {
		return nil, fmt.Errorf("%w: page %d, page size %d", ErrInvalidPagination, paginateArgs.Page, paginateArgs.PageSize)
	}

	matching := a.registry.Matching(filters)
	if len(matching) == 0 {
		return &PaginatedSummaries{Data: []Summary{}}, nil
	}

	query := buildUnionQuery(matching, filters, orderBy)

	result, err := a.paginator.Paginate(ctx, query, paginateArgs)
	if err != nil {
		return nil, err
	}

	data := make([]Summary, 0, len(result.Data))
	for _, row := range result.Data {
		summary, err := convertRow(matching, row)
		if err != nil {
			slog.Error("Failed to convert summary row", "uuid", row.UUID, "content_type", row.ContentType, "error", err)
			return nil, err
		}
		data = append(data, summary)
	}

	return &PaginatedSummaries{
		Data:       data,
		Pagination: result.Pagination,
	}, nil
}

func orderByClause(args Args) ([]string, error) {
	orderBy := []string{ColumnContentTypeRank + " ASC"}
	if args.SortBy == "" {
		orderBy = append(orderBy, ColumnLastUpdatedAt+" DESC")
	} else {
		if !IsSortableColumn(args.SortBy) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSortColumn, args.SortBy)
		}
		direction := args.SortDirection.Normalize()
		if direction == "" {
			direction = SortDesc
		}
		if direction != SortAsc && direction != SortDesc {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSortDirection, args.SortDirection)
		}
		orderBy = append(orderBy, fmt.Sprintf("%s %s", args.SortBy, direction))
	}
	// uuid keeps page boundaries stable when sort keys tie
	return append(orderBy, ColumnUUID+" ASC"), nil
}

func buildUnionQuery(configs []Configuration, filters Filters, orderBy []string) *sqlbuilder.SelectBuilder {
	branches := make([]sqlbuilder.Builder, 0, len(configs))
	for _, c := range configs {
		branches = append(branches, c.BuildSummaryQuery(filters))
	}
	union := sqlbuilder.UnionAll(branches...)
	union.SetFlavor(sqlbuilder.PostgreSQL)

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("*").From(sb.BuilderAs(union, "contents"))
	sb.OrderBy(orderBy...)
	return sb
}

func convertRow(configs []Configuration, row Row) (Summary, error) {
	var owner Configuration
	for _, c := range configs {
		if !c.ShouldRowBeConverted(row) {
			continue
		}
		if owner != nil {
			return Summary{}, &RowError{
				UUID:        row.UUID,
				ContentType: row.ContentType,
				Op:          "convert",
				Err:         fmt.Errorf("%w: %s and %s", ErrAmbiguousConfiguration, owner.Name(), c.Name()),
			}
		}
		owner = c
	}
	if owner == nil {
		return Summary{}, &RowError{
			UUID:        row.UUID,
			ContentType: row.ContentType,
			Op:          "convert",
			Err:         ErrNoMatchingConfiguration,
		}
	}

	summary, err := owner.ConvertSummaryRow(row)
	if err != nil {
		return Summary{}, &RowError{
			UUID:        row.UUID,
			ContentType: row.ContentType,
			Op:          "convert",
			Err:         fmt.Errorf("%s: %w", owner.Name(), err),
		}
	}
	return summary, nil
}
