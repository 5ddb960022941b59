package summarycontent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
)

// Summary row columns shared by every union branch.
const (
	ColumnUUID                       = "uuid"
	ColumnContentType                = "content_type"
	ColumnContentTypeRank            = "content_type_rank"
	ColumnSlug                       = "slug"
	ColumnName                       = "name"
	ColumnDescription                = "description"
	ColumnSpaceUUID                  = "space_uuid"
	ColumnSpaceName                  = "space_name"
	ColumnProjectUUID                = "project_uuid"
	ColumnProjectName                = "project_name"
	ColumnOrganizationUUID           = "organization_uuid"
	ColumnOrganizationName           = "organization_name"
	ColumnCreatedAt                  = "created_at"
	ColumnCreatedByUserUUID          = "created_by_user_uuid"
	ColumnCreatedByUserFirstName     = "created_by_user_first_name"
	ColumnCreatedByUserLastName      = "created_by_user_last_name"
	ColumnLastUpdatedAt              = "last_updated_at"
	ColumnLastUpdatedByUserUUID      = "last_updated_by_user_uuid"
	ColumnLastUpdatedByUserFirstName = "last_updated_by_user_first_name"
	ColumnLastUpdatedByUserLastName  = "last_updated_by_user_last_name"
	ColumnViews                      = "views"
	ColumnFirstViewedAt              = "first_viewed_at"
	ColumnMetadata                   = "metadata"
)

type summaryColumn struct {
	name     string
	nullExpr string // emitted when a branch has nothing for the column; empty means required
}

var summaryColumns = []summaryColumn{
	{ColumnUUID, ""},
	{ColumnContentType, ""},
	{ColumnContentTypeRank, ""},
	{ColumnSlug, "NULL::text"},
	{ColumnName, ""},
	{ColumnDescription, "NULL::text"},
	{ColumnSpaceUUID, "NULL::uuid"},
	{ColumnSpaceName, "NULL::text"},
	{ColumnProjectUUID, "NULL::uuid"},
	{ColumnProjectName, "NULL::text"},
	{ColumnOrganizationUUID, "NULL::uuid"},
	{ColumnOrganizationName, "NULL::text"},
	{ColumnCreatedAt, ""},
	{ColumnCreatedByUserUUID, "NULL::uuid"},
	{ColumnCreatedByUserFirstName, "NULL::text"},
	{ColumnCreatedByUserLastName, "NULL::text"},
	{ColumnLastUpdatedAt, ""},
	{ColumnLastUpdatedByUserUUID, "NULL::uuid"},
	{ColumnLastUpdatedByUserFirstName, "NULL::text"},
	{ColumnLastUpdatedByUserLastName, "NULL::text"},
	{ColumnViews, "0::bigint"},
	{ColumnFirstViewedAt, "NULL::timestamp"},
	{ColumnMetadata, "'{}'::jsonb"},
}

// SummaryColumns returns the ordered column set every union branch selects.
func SummaryColumns() []string {
	names := make([]string, len(summaryColumns))
	for i, c := range summaryColumns {
		names[i] = c.name
	}
	return names
}

// SummaryProjection holds the SQL expression a branch uses for each summary
// column. content_type and content_type_rank are supplied by Select. An empty
// optional expression is replaced by a typed NULL (or a neutral default) so
// the branch stays union-compatible.
type SummaryProjection struct {
	UUID                       string
	Slug                       string
	Name                       string
	Description                string
	SpaceUUID                  string
	SpaceName                  string
	ProjectUUID                string
	ProjectName                string
	OrganizationUUID           string
	OrganizationName           string
	CreatedAt                  string
	CreatedByUserUUID          string
	CreatedByUserFirstName     string
	CreatedByUserLastName      string
	LastUpdatedAt              string
	LastUpdatedByUserUUID      string
	LastUpdatedByUserFirstName string
	LastUpdatedByUserLastName  string
	Views                      string
	FirstViewedAt              string
	Metadata                   string
}

func (p SummaryProjection) expression(column string, contentType ContentType, rank int) string {
	switch column {
	case ColumnUUID:
		return p.UUID
	case ColumnContentType:
		return "'" + strings.ReplaceAll(string(contentType), "'", "''") + "'::text"
	case ColumnContentTypeRank:
		return fmt.Sprintf("%d", rank)
	case ColumnSlug:
		return p.Slug
	case ColumnName:
		return p.Name
	case ColumnDescription:
		return p.Description
	case ColumnSpaceUUID:
		return p.SpaceUUID
	case ColumnSpaceName:
		return p.SpaceName
	case ColumnProjectUUID:
		return p.ProjectUUID
	case ColumnProjectName:
		return p.ProjectName
	case ColumnOrganizationUUID:
		return p.OrganizationUUID
	case ColumnOrganizationName:
		return p.OrganizationName
	case ColumnCreatedAt:
		return p.CreatedAt
	case ColumnCreatedByUserUUID:
		return p.CreatedByUserUUID
	case ColumnCreatedByUserFirstName:
		return p.CreatedByUserFirstName
	case ColumnCreatedByUserLastName:
		return p.CreatedByUserLastName
	case ColumnLastUpdatedAt:
		return p.LastUpdatedAt
	case ColumnLastUpdatedByUserUUID:
		return p.LastUpdatedByUserUUID
	case ColumnLastUpdatedByUserFirstName:
		return p.LastUpdatedByUserFirstName
	case ColumnLastUpdatedByUserLastName:
		return p.LastUpdatedByUserLastName
	case ColumnViews:
		return p.Views
	case ColumnFirstViewedAt:
		return p.FirstViewedAt
	case ColumnMetadata:
		return p.Metadata
	}
	return ""
}

// Select writes the projection into sb as the full summary column list, in
// SummaryColumns order. It panics when a required column (uuid, name,
// created_at, last_updated_at) has no expression: that is a defect in the
// configuration, not a runtime condition.
func (p SummaryProjection) Select(sb *sqlbuilder.SelectBuilder, contentType ContentType, rank int) *sqlbuilder.SelectBuilder {
	cols := make([]string, 0, len(summaryColumns))
	for _, c := range summaryColumns {
		expr := p.expression(c.name, contentType, rank)
		if expr == "" {
			if c.nullExpr == "" {
				panic(fmt.Sprintf("summarycontent: %s projection has no expression for required column %s", contentType, c.name))
			}
			expr = c.nullExpr
		}
		cols = append(cols, sb.As(expr, c.name))
	}
	return sb.Select(cols...)
}

// Row is one raw result row of the union, before conversion.
type Row struct {
	UUID                       uuid.UUID
	ContentType                ContentType
	ContentTypeRank            int
	Slug                       *string
	Name                       string
	Description                *string
	SpaceUUID                  *uuid.UUID
	SpaceName                  *string
	ProjectUUID                *uuid.UUID
	ProjectName                *string
	OrganizationUUID           *uuid.UUID
	OrganizationName           *string
	CreatedAt                  time.Time
	CreatedByUserUUID          *uuid.UUID
	CreatedByUserFirstName     *string
	CreatedByUserLastName      *string
	LastUpdatedAt              time.Time
	LastUpdatedByUserUUID      *uuid.UUID
	LastUpdatedByUserFirstName *string
	LastUpdatedByUserLastName  *string
	Views                      int64
	FirstViewedAt              *time.Time
	Metadata                   json.RawMessage
}

// ScanTargets returns pointers to the row fields in SummaryColumns order.
func (r *Row) ScanTargets() []any {
	return []any{
		&r.UUID,
		&r.ContentType,
		&r.ContentTypeRank,
		&r.Slug,
		&r.Name,
		&r.Description,
		&r.SpaceUUID,
		&r.SpaceName,
		&r.ProjectUUID,
		&r.ProjectName,
		&r.OrganizationUUID,
		&r.OrganizationName,
		&r.CreatedAt,
		&r.CreatedByUserUUID,
		&r.CreatedByUserFirstName,
		&r.CreatedByUserLastName,
		&r.LastUpdatedAt,
		&r.LastUpdatedByUserUUID,
		&r.LastUpdatedByUserFirstName,
		&r.LastUpdatedByUserLastName,
		&r.Views,
		&r.FirstViewedAt,
		&r.Metadata,
	}
}

// BaseSummary maps the columns common to every content type. Configurations
// add their Metadata on top.
func (r Row) BaseSummary() Summary {
	s := Summary{
		UUID:            r.UUID,
		ContentType:     r.ContentType,
		ContentTypeRank: r.ContentTypeRank,
		Slug:            deref(r.Slug),
		Name:            r.Name,
		Description:     r.Description,
		CreatedAt:       r.CreatedAt,
		LastUpdatedAt:   r.LastUpdatedAt,
		Views:           r.Views,
		FirstViewedAt:   r.FirstViewedAt,
	}
	if r.SpaceUUID != nil {
		s.Space = SpaceRef{UUID: *r.SpaceUUID, Name: deref(r.SpaceName)}
	}
	if r.ProjectUUID != nil {
		s.Project = ProjectRef{UUID: *r.ProjectUUID, Name: deref(r.ProjectName)}
	}
	if r.OrganizationUUID != nil {
		s.Organization = OrganizationRef{UUID: *r.OrganizationUUID, Name: deref(r.OrganizationName)}
	}
	s.CreatedBy = userRef(r.CreatedByUserUUID, r.CreatedByUserFirstName, r.CreatedByUserLastName)
	s.LastUpdatedBy = userRef(r.LastUpdatedByUserUUID, r.LastUpdatedByUserFirstName, r.LastUpdatedByUserLastName)
	return s
}

func userRef(id *uuid.UUID, firstName, lastName *string) *UserRef {
	if id == nil {
		return nil
	}
	return &UserRef{UUID: *id, FirstName: deref(firstName), LastName: deref(lastName)}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
