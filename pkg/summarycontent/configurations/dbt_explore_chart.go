package configurations

import (
	"github.com/huandu/go-sqlbuilder"
	"github.com/tendant/summary-content/pkg/summarycontent"
)

// DbtExploreChartConfiguration serves charts saved from a dbt explore
// (table saved_queries).
type DbtExploreChartConfiguration struct {
	rank int
}

// NewDbtExploreChartConfiguration creates the dbt explore chart configuration.
func NewDbtExploreChartConfiguration() *DbtExploreChartConfiguration {
	return &DbtExploreChartConfiguration{rank: RankChart}
}

func (c *DbtExploreChartConfiguration) Name() string { return "dbt_explore_chart" }

func (c *DbtExploreChartConfiguration) ContentType() summarycontent.ContentType {
	return summarycontent.ContentTypeChart
}

func (c *DbtExploreChartConfiguration) Rank() int { return c.rank }

func (c *DbtExploreChartConfiguration) ShouldQueryBeIncluded(filters summarycontent.Filters) bool {
	return filters.IncludesContentType(summarycontent.ContentTypeChart) &&
		filters.IncludesChartSource(summarycontent.ChartSourceDbtExplore)
}

func (c *DbtExploreChartConfiguration) BuildSummaryQuery(filters summarycontent.Filters) *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	summarycontent.SummaryProjection{
		UUID:                       "sq.saved_query_uuid",
		Slug:                       "sq.slug",
		Name:                       "sq.name",
		Description:                "sq.description",
		SpaceUUID:                  "s.space_uuid",
		SpaceName:                  "s.name",
		ProjectUUID:                "p.project_uuid",
		ProjectName:                "p.name",
		OrganizationUUID:           "o.organization_uuid",
		OrganizationName:           "o.organization_name",
		CreatedAt:                  "sq.created_at",
		CreatedByUserUUID:          "cu.user_uuid",
		CreatedByUserFirstName:     "cu.first_name",
		CreatedByUserLastName:      "cu.last_name",
		LastUpdatedAt:              "sq.last_version_updated_at",
		LastUpdatedByUserUUID:      "uu.user_uuid",
		LastUpdatedByUserFirstName: "uu.first_name",
		LastUpdatedByUserLastName:  "uu.last_name",
		Views:                      "sq.views_count::bigint",
		FirstViewedAt:              "sq.first_viewed_at",
		Metadata: `jsonb_build_object(
			'source', 'dbt_explore',
			'chart_kind', sq.last_version_chart_kind,
			'dashboard_uuid', d.dashboard_uuid,
			'dashboard_name', d.name)`,
	}.Select(sb, c.ContentType(), c.rank)

	sb.From("saved_queries sq")
	sb.Join("spaces s", "sq.space_id = s.space_id")
	sb.Join("projects p", "s.project_id = p.project_id")
	sb.Join("organizations o", "p.organization_id = o.organization_id")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "dashboards d", "sq.dashboard_uuid = d.dashboard_uuid")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "users cu", "sq.created_by_user_uuid = cu.user_uuid")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "users uu", "sq.last_version_updated_by_user_uuid = uu.user_uuid")
	sb.Where("sq.deleted_at IS NULL")

	applyCommonFilters(sb, filters, filterColumns{
		project:     "p.project_uuid",
		space:       "s.space_uuid",
		createdBy:   "sq.created_by_user_uuid",
		name:        "sq.name",
		description: "sq.description",
	})
	return sb
}

func (c *DbtExploreChartConfiguration) ShouldRowBeConverted(row summarycontent.Row) bool {
	return row.ContentType == summarycontent.ContentTypeChart &&
		metadataString(row.Metadata, "source") == string(summarycontent.ChartSourceDbtExplore)
}

func (c *DbtExploreChartConfiguration) ConvertSummaryRow(row summarycontent.Row) (summarycontent.Summary, error) {
	return convertChartRow(row, summarycontent.ChartSourceDbtExplore)
}

// convertChartRow is shared by both chart sources: their metadata layout is identical.
func convertChartRow(row summarycontent.Row, source summarycontent.ChartSource) (summarycontent.Summary, error) {
	meta, err := metadataOf(row.Metadata)
	if err != nil {
		return summarycontent.Summary{}, err
	}

	chart := summarycontent.ChartMetadata{
		Source:    source,
		ChartKind: metadataString(meta, "chart_kind"),
	}
	if id, ok := metadataUUID(meta, "dashboard_uuid"); ok {
		chart.Dashboard = &summarycontent.DashboardRef{
			UUID: id,
			Name: metadataString(meta, "dashboard_name"),
		}
	}

	s := row.BaseSummary()
	s.Metadata = chart
	return s, nil
}
