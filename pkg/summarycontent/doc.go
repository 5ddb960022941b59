// Package summarycontent provides a single sorted, paginated feed over content
// types that live in different tables (charts, dashboards, spaces).
//
// Each content type is described by a Configuration that knows how to build a
// summary sub-query and how to turn a raw result row back into a Summary. The
// Aggregator unions the sub-queries of every configuration relevant to the
// caller's filters into one statement, orders and paginates it through a
// Paginator, and hands each row back to the configuration that owns it.
//
// Union Contract
//
// Every branch of the union must select the same columns in the same order
// (SummaryColumns). Configurations fill a SummaryProjection rather than
// writing SELECT lists by hand; anything type-specific goes into the jsonb
// metadata column.
package summarycontent
