package configurations

import (
	"github.com/huandu/go-sqlbuilder"
	"github.com/tendant/summary-content/pkg/summarycontent"
)

// SpaceConfiguration serves spaces (table spaces). A space summary's own
// space reference points at the space itself.
type SpaceConfiguration struct {
	rank int
}

// NewSpaceConfiguration creates the space configuration.
func NewSpaceConfiguration() *SpaceConfiguration {
	return &SpaceConfiguration{rank: RankSpace}
}

func (c *SpaceConfiguration) Name() string { return "space" }

func (c *SpaceConfiguration) ContentType() summarycontent.ContentType {
	return summarycontent.ContentTypeSpace
}

func (c *SpaceConfiguration) Rank() int { return c.rank }

func (c *SpaceConfiguration) ShouldQueryBeIncluded(filters summarycontent.Filters) bool {
	return filters.IncludesContentType(summarycontent.ContentTypeSpace)
}

func (c *SpaceConfiguration) BuildSummaryQuery(filters summarycontent.Filters) *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	summarycontent.SummaryProjection{
		UUID:                   "s.space_uuid",
		Slug:                   "s.slug",
		Name:                   "s.name",
		SpaceUUID:              "s.space_uuid",
		SpaceName:              "s.name",
		ProjectUUID:            "p.project_uuid",
		ProjectName:            "p.name",
		OrganizationUUID:       "o.organization_uuid",
		OrganizationName:       "o.organization_name",
		CreatedAt:              "s.created_at",
		CreatedByUserUUID:      "cu.user_uuid",
		CreatedByUserFirstName: "cu.first_name",
		CreatedByUserLastName:  "cu.last_name",
		// spaces are not versioned; creation is the last update
		LastUpdatedAt: "s.created_at",
		Metadata: `jsonb_build_object(
			'is_private', s.is_private,
			'parent_space_uuid', s.parent_space_uuid,
			'path', s.path,
			'chart_count',
			(SELECT COUNT(*) FROM saved_queries ssq WHERE ssq.space_id = s.space_id AND ssq.deleted_at IS NULL)
			+ (SELECT COUNT(*) FROM saved_sql sss WHERE sss.space_uuid = s.space_uuid AND sss.deleted_at IS NULL),
			'dashboard_count',
			(SELECT COUNT(*) FROM dashboards sd WHERE sd.space_id = s.space_id AND sd.deleted_at IS NULL))`,
	}.Select(sb, c.ContentType(), c.rank)

	sb.From("spaces s")
	sb.Join("projects p", "s.project_id = p.project_id")
	sb.Join("organizations o", "p.organization_id = o.organization_id")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "users cu", "s.created_by_user_uuid = cu.user_uuid")
	sb.Where("s.deleted_at IS NULL")

	applyCommonFilters(sb, filters, filterColumns{
		project:   "p.project_uuid",
		space:     "s.space_uuid",
		createdBy: "s.created_by_user_uuid",
		name:      "s.name",
	})

	if len(filters.Space.ParentSpaceUUIDs) > 0 {
		sb.Where(sb.In("s.parent_space_uuid", uuidArgs(filters.Space.ParentSpaceUUIDs)...))
	}
	if filters.Space.RootSpaces {
		sb.Where(sb.IsNull("s.parent_space_uuid"))
	}
	return sb
}

func (c *SpaceConfiguration) ShouldRowBeConverted(row summarycontent.Row) bool {
	return row.ContentType == summarycontent.ContentTypeSpace
}

func (c *SpaceConfiguration) ConvertSummaryRow(row summarycontent.Row) (summarycontent.Summary, error) {
	meta, err := metadataOf(row.Metadata)
	if err != nil {
		return summarycontent.Summary{}, err
	}

	space := summarycontent.SpaceMetadata{
		IsPrivate:      metadataBool(meta, "is_private"),
		Path:           metadataString(meta, "path"),
		ChartCount:     metadataInt(meta, "chart_count"),
		DashboardCount: metadataInt(meta, "dashboard_count"),
	}
	if id, ok := metadataUUID(meta, "parent_space_uuid"); ok {
		space.ParentSpaceUUID = &id
	}

	s := row.BaseSummary()
	s.Metadata = space
	return s, nil
}
