package summarycontent

import (
	"context"

	"github.com/huandu/go-sqlbuilder"
)

// Configuration describes one content type taking part in the summary feed.
type Configuration interface {
	// Name is the unique registry key of the configuration
	Name() string

	// ContentType is the tag this configuration writes into content_type
	ContentType() ContentType

	// Rank is emitted as content_type_rank; lower ranks sort first
	Rank() int

	// ShouldQueryBeIncluded reports whether this type's sub-query belongs in
	// the union for the given filters. It must not perform I/O.
	ShouldQueryBeIncluded(filters Filters) bool

	// BuildSummaryQuery returns the sub-query producing this type's summary rows
	BuildSummaryQuery(filters Filters) *sqlbuilder.SelectBuilder

	// ShouldRowBeConverted reports whether a raw row was produced by this
	// configuration's sub-query
	ShouldRowBeConverted(row Row) bool

	// ConvertSummaryRow maps a raw row owned by this configuration to a Summary
	ConvertSummaryRow(row Row) (Summary, error)
}

// Paginator executes a summary query, optionally limited to one page.
type Paginator interface {
	// Paginate runs query. When args is nil every row is returned and the
	// result carries no pagination metadata.
	Paginate(ctx context.Context, query *sqlbuilder.SelectBuilder, args *PaginateArgs) (*PaginatedRows, error)
}

// PaginatedRows is what a Paginator returns: raw rows plus page metadata.
type PaginatedRows struct {
	Data       []Row
	Pagination *Pagination
}
