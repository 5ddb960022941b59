package configurations

import (
	"github.com/huandu/go-sqlbuilder"
	"github.com/tendant/summary-content/pkg/summarycontent"
)

// SQLChartConfiguration serves ad-hoc SQL charts (table saved_sql).
type SQLChartConfiguration struct {
	rank int
}

// NewSQLChartConfiguration creates the SQL chart configuration.
func NewSQLChartConfiguration() *SQLChartConfiguration {
	return &SQLChartConfiguration{rank: RankChart}
}

func (c *SQLChartConfiguration) Name() string { return "sql_chart" }

func (c *SQLChartConfiguration) ContentType() summarycontent.ContentType {
	return summarycontent.ContentTypeChart
}

func (c *SQLChartConfiguration) Rank() int { return c.rank }

func (c *SQLChartConfiguration) ShouldQueryBeIncluded(filters summarycontent.Filters) bool {
	return filters.IncludesContentType(summarycontent.ContentTypeChart) &&
		filters.IncludesChartSource(summarycontent.ChartSourceSQL)
}

func (c *SQLChartConfiguration) BuildSummaryQuery(filters summarycontent.Filters) *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	summarycontent.SummaryProjection{
		UUID:                       "ss.saved_sql_uuid",
		Slug:                       "ss.slug",
		Name:                       "ss.name",
		Description:                "ss.description",
		SpaceUUID:                  "s.space_uuid",
		SpaceName:                  "s.name",
		ProjectUUID:                "p.project_uuid",
		ProjectName:                "p.name",
		OrganizationUUID:           "o.organization_uuid",
		OrganizationName:           "o.organization_name",
		CreatedAt:                  "ss.created_at",
		CreatedByUserUUID:          "cu.user_uuid",
		CreatedByUserFirstName:     "cu.first_name",
		CreatedByUserLastName:      "cu.last_name",
		LastUpdatedAt:              "ss.last_version_updated_at",
		LastUpdatedByUserUUID:      "uu.user_uuid",
		LastUpdatedByUserFirstName: "uu.first_name",
		LastUpdatedByUserLastName:  "uu.last_name",
		Views:                      "ss.views_count::bigint",
		FirstViewedAt:              "ss.first_viewed_at",
		Metadata: `jsonb_build_object(
			'source', 'sql',
			'chart_kind', ss.last_version_chart_kind,
			'dashboard_uuid', d.dashboard_uuid,
			'dashboard_name', d.name)`,
	}.Select(sb, c.ContentType(), c.rank)

	sb.From("saved_sql ss")
	sb.Join("spaces s", "ss.space_uuid = s.space_uuid")
	sb.Join("projects p", "s.project_id = p.project_id")
	sb.Join("organizations o", "p.organization_id = o.organization_id")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "dashboards d", "ss.dashboard_uuid = d.dashboard_uuid")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "users cu", "ss.created_by_user_uuid = cu.user_uuid")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "users uu", "ss.last_version_updated_by_user_uuid = uu.user_uuid")
	sb.Where("ss.deleted_at IS NULL")

	applyCommonFilters(sb, filters, filterColumns{
		project:     "p.project_uuid",
		space:       "s.space_uuid",
		createdBy:   "ss.created_by_user_uuid",
		name:        "ss.name",
		description: "ss.description",
	})
	return sb
}

func (c *SQLChartConfiguration) ShouldRowBeConverted(row summarycontent.Row) bool {
	return row.ContentType == summarycontent.ContentTypeChart &&
		metadataString(row.Metadata, "source") == string(summarycontent.ChartSourceSQL)
}

func (c *SQLChartConfiguration) ConvertSummaryRow(row summarycontent.Row) (summarycontent.Summary, error) {
	return convertChartRow(row, summarycontent.ChartSourceSQL)
}
