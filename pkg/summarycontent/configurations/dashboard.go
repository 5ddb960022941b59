package configurations

import (
	"github.com/huandu/go-sqlbuilder"
	"github.com/tendant/summary-content/pkg/summarycontent"
)

// DashboardConfiguration serves dashboards (table dashboards).
type DashboardConfiguration struct {
	rank int
}

// NewDashboardConfiguration creates the dashboard configuration.
func NewDashboardConfiguration() *DashboardConfiguration {
	return &DashboardConfiguration{rank: RankDashboard}
}

func (c *DashboardConfiguration) Name() string { return "dashboard" }

func (c *DashboardConfiguration) ContentType() summarycontent.ContentType {
	return summarycontent.ContentTypeDashboard
}

func (c *DashboardConfiguration) Rank() int { return c.rank }

// ShouldQueryBeIncluded ignores ChartSource: it only narrows charts.
func (c *DashboardConfiguration) ShouldQueryBeIncluded(filters summarycontent.Filters) bool {
	return filters.IncludesContentType(summarycontent.ContentTypeDashboard)
}

func (c *DashboardConfiguration) BuildSummaryQuery(filters summarycontent.Filters) *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	summarycontent.SummaryProjection{
		UUID:                       "d.dashboard_uuid",
		Slug:                       "d.slug",
		Name:                       "d.name",
		Description:                "d.description",
		SpaceUUID:                  "s.space_uuid",
		SpaceName:                  "s.name",
		ProjectUUID:                "p.project_uuid",
		ProjectName:                "p.name",
		OrganizationUUID:           "o.organization_uuid",
		OrganizationName:           "o.organization_name",
		CreatedAt:                  "d.created_at",
		CreatedByUserUUID:          "cu.user_uuid",
		CreatedByUserFirstName:     "cu.first_name",
		CreatedByUserLastName:      "cu.last_name",
		LastUpdatedAt:              "d.last_updated_at",
		LastUpdatedByUserUUID:      "uu.user_uuid",
		LastUpdatedByUserFirstName: "uu.first_name",
		LastUpdatedByUserLastName:  "uu.last_name",
		Views:                      "d.views_count::bigint",
		FirstViewedAt:              "d.first_viewed_at",
		Metadata: `jsonb_build_object(
			'chart_count',
			(SELECT COUNT(*) FROM saved_queries dsq WHERE dsq.dashboard_uuid = d.dashboard_uuid AND dsq.deleted_at IS NULL)
			+ (SELECT COUNT(*) FROM saved_sql dss WHERE dss.dashboard_uuid = d.dashboard_uuid AND dss.deleted_at IS NULL))`,
	}.Select(sb, c.ContentType(), c.rank)

	sb.From("dashboards d")
	sb.Join("spaces s", "d.space_id = s.space_id")
	sb.Join("projects p", "s.project_id = p.project_id")
	sb.Join("organizations o", "p.organization_id = o.organization_id")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "users cu", "d.created_by_user_uuid = cu.user_uuid")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "users uu", "d.last_updated_by_user_uuid = uu.user_uuid")
	sb.Where("d.deleted_at IS NULL")

	applyCommonFilters(sb, filters, filterColumns{
		project:     "p.project_uuid",
		space:       "s.space_uuid",
		createdBy:   "d.created_by_user_uuid",
		name:        "d.name",
		description: "d.description",
	})
	return sb
}

func (c *DashboardConfiguration) ShouldRowBeConverted(row summarycontent.Row) bool {
	return row.ContentType == summarycontent.ContentTypeDashboard
}

func (c *DashboardConfiguration) ConvertSummaryRow(row summarycontent.Row) (summarycontent.Summary, error) {
	meta, err := metadataOf(row.Metadata)
	if err != nil {
		return summarycontent.Summary{}, err
	}

	s := row.BaseSummary()
	s.Metadata = summarycontent.DashboardMetadata{
		ChartCount: metadataInt(meta, "chart_count"),
	}
	return s, nil
}
