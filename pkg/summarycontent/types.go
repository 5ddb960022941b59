package summarycontent

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentType is the tag written into the content_type column of every summary row.
type ContentType string

// Content type constants (typed).
const (
	ContentTypeChart     ContentType = "chart"
	ContentTypeDashboard ContentType = "dashboard"
	ContentTypeSpace     ContentType = "space"
)

// IsValid reports whether t is a known content type.
func (t ContentType) IsValid() bool {
	switch t {
	case ContentTypeChart, ContentTypeDashboard, ContentTypeSpace:
		return true
	}
	return false
}

// ChartSource distinguishes charts built from a dbt explore from ad-hoc SQL charts.
type ChartSource string

// Chart source constants (typed).
const (
	ChartSourceDbtExplore ChartSource = "dbt_explore"
	ChartSourceSQL        ChartSource = "sql"
)

// SortDirection is the direction of the caller-requested sort key.
type SortDirection string

// Sort direction constants (typed).
const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Normalize upper-cases the direction so "asc" and "ASC" are equivalent.
func (d SortDirection) Normalize() SortDirection {
	return SortDirection(strings.ToUpper(string(d)))
}

// SpaceFilters only apply to space content.
type SpaceFilters struct {
	ParentSpaceUUIDs []uuid.UUID `json:"parent_space_uuids,omitempty"`
	RootSpaces       bool        `json:"root_spaces,omitempty"`
}

// Filters are type-agnostic criteria applied to every participating content type.
// A configuration may ignore a field it has no column for.
type Filters struct {
	ProjectUUIDs       []uuid.UUID   `json:"project_uuids,omitempty"`
	SpaceUUIDs         []uuid.UUID   `json:"space_uuids,omitempty"`
	ContentTypes       []ContentType `json:"content_types,omitempty"`
	ChartSource        ChartSource   `json:"chart_source,omitempty"`
	Search             string        `json:"search,omitempty"`
	CreatedByUserUUIDs []uuid.UUID   `json:"created_by_user_uuids,omitempty"`
	Space              SpaceFilters  `json:"space"`
}

// IncludesContentType reports whether t is requested. An empty ContentTypes
// list requests every type.
func (f Filters) IncludesContentType(t ContentType) bool {
	if len(f.ContentTypes) == 0 {
		return true
	}
	for _, ct := range f.ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// IncludesChartSource reports whether charts from source s are requested.
func (f Filters) IncludesChartSource(s ChartSource) bool {
	return f.ChartSource == "" || f.ChartSource == s
}

// Args controls the secondary ordering of the feed.
type Args struct {
	SortBy        string        `json:"sort_by,omitempty"`
	SortDirection SortDirection `json:"sort_direction,omitempty"`
}

// PaginateArgs selects a 1-based page of PageSize rows.
type PaginateArgs struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Offset returns the number of rows skipped before the requested page.
func (p PaginateArgs) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Pagination describes the page returned and the size of the full result.
type Pagination struct {
	Page           int `json:"page"`
	PageSize       int `json:"page_size"`
	TotalPageCount int `json:"total_page_count"`
	TotalResults   int `json:"total_results"`
}

// NewPagination computes page metadata for totalResults rows.
func NewPagination(args PaginateArgs, totalResults int) *Pagination {
	totalPages := 0
	if args.PageSize > 0 {
		totalPages = (totalResults + args.PageSize - 1) / args.PageSize
	}
	return &Pagination{
		Page:           args.Page,
		PageSize:       args.PageSize,
		TotalPageCount: totalPages,
		TotalResults:   totalResults,
	}
}

// PaginatedSummaries is the result of Aggregator.FindSummaryContents.
// Pagination is nil when no pagination was requested or when no content type
// matched the filters.
type PaginatedSummaries struct {
	Data       []Summary   `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// SpaceRef identifies the space a content item lives in.
type SpaceRef struct {
	UUID uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
}

// ProjectRef identifies the project a content item belongs to.
type ProjectRef struct {
	UUID uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
}

// OrganizationRef identifies the owning organization.
type OrganizationRef struct {
	UUID uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
}

// UserRef identifies the user who created or last updated a content item.
type UserRef struct {
	UUID      uuid.UUID `json:"uuid"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// DashboardRef points to the dashboard a chart was saved in.
type DashboardRef struct {
	UUID uuid.UUID `json:"uuid"`
	Name string    `json:"name"`
}

// Summary is the normalized projection of any content type.
type Summary struct {
	UUID            uuid.UUID       `json:"uuid"`
	ContentType     ContentType     `json:"content_type"`
	ContentTypeRank int             `json:"content_type_rank"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Description     *string         `json:"description,omitempty"`
	Space           SpaceRef        `json:"space"`
	Project         ProjectRef      `json:"project"`
	Organization    OrganizationRef `json:"organization"`
	CreatedAt       time.Time       `json:"created_at"`
	CreatedBy       *UserRef        `json:"created_by,omitempty"`
	LastUpdatedAt   time.Time       `json:"last_updated_at"`
	LastUpdatedBy   *UserRef        `json:"last_updated_by,omitempty"`
	Views           int64           `json:"views"`
	FirstViewedAt   *time.Time      `json:"first_viewed_at,omitempty"`
	Metadata        Metadata        `json:"metadata"`
}

// Metadata is the type-specific part of a Summary. The set of implementations
// is closed: ChartMetadata, DashboardMetadata and SpaceMetadata.
type Metadata interface {
	metadataContentType() ContentType
}

// ChartMetadata carries chart-only fields.
type ChartMetadata struct {
	Source    ChartSource   `json:"source"`
	ChartKind string        `json:"chart_kind,omitempty"`
	Dashboard *DashboardRef `json:"dashboard,omitempty"`
}

func (ChartMetadata) metadataContentType() ContentType { return ContentTypeChart }

// DashboardMetadata carries dashboard-only fields.
type DashboardMetadata struct {
	ChartCount int64 `json:"chart_count"`
}

func (DashboardMetadata) metadataContentType() ContentType { return ContentTypeDashboard }

// SpaceMetadata carries space-only fields.
type SpaceMetadata struct {
	IsPrivate       bool       `json:"is_private"`
	ParentSpaceUUID *uuid.UUID `json:"parent_space_uuid,omitempty"`
	Path            string     `json:"path"`
	ChartCount      int64      `json:"chart_count"`
	DashboardCount  int64      `json:"dashboard_count"`
}

func (SpaceMetadata) metadataContentType() ContentType { return ContentTypeSpace }
