package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/summary-content/pkg/summarycontent"
	"github.com/tendant/summary-content/pkg/summarycontent/configurations"
)

func newAggregator(t *testing.T, paginator summarycontent.Paginator) *summarycontent.Aggregator {
	t.Helper()
	registry, err := configurations.NewRegistry()
	require.NoError(t, err)
	agg, err := summarycontent.New(
		summarycontent.WithRegistry(registry),
		summarycontent.WithPaginator(paginator),
	)
	require.NoError(t, err)
	return agg
}

func names(summaries []summarycontent.Summary) []string {
	out := make([]string, len(summaries))
	for i, s := range summaries {
		out[i] = s.Name
	}
	return out
}

func TestPaginator_DefaultOrdering(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		ctx := context.Background()
		s := newSeed(t, db)
		p := s.project("analytics")
		sp := s.space(p, "Marketing", nil, 1, nil)
		s.dashboard(sp, "Old dashboard", 2)
		s.dashboard(sp, "New dashboard", 20)
		s.dbtChart(sp, "Revenue", 5, nil, nil)
		s.sqlChart(sp, "Raw orders", 10)
		s.dbtChart(sp, "Churn", 15, nil, nil)

		agg := newAggregator(t, NewWithPool(db.Pool))
		result, err := agg.FindSummaryContents(ctx, summarycontent.Filters{}, summarycontent.Args{}, nil)
		require.NoError(t, err)

		assert.Nil(t, result.Pagination)
		assert.Equal(t, []string{
			"Marketing",
			"New dashboard", "Old dashboard",
			"Churn", "Raw orders", "Revenue",
		}, names(result.Data))

		for i := 1; i < len(result.Data); i++ {
			assert.LessOrEqual(t, result.Data[i-1].ContentTypeRank, result.Data[i].ContentTypeRank)
		}
	})
}

func TestPaginator_CustomSort(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		ctx := context.Background()
		s := newSeed(t, db)
		p := s.project("analytics")
		sp := s.space(p, "Marketing", nil, 1, nil)
		s.dbtChart(sp, "Bravo", 1, nil, nil)
		s.sqlChart(sp, "Alpha", 2)
		s.dbtChart(sp, "Charlie", 3, nil, nil)
		s.dashboard(sp, "Zulu", 4)

		agg := newAggregator(t, NewWithPool(db.Pool))
		result, err := agg.FindSummaryContents(ctx,
			summarycontent.Filters{ContentTypes: []summarycontent.ContentType{summarycontent.ContentTypeChart, summarycontent.ContentTypeDashboard}},
			summarycontent.Args{SortBy: "name", SortDirection: "asc"},
			nil,
		)
		require.NoError(t, err)

		// rank still dominates the caller's sort key
		require.Len(t, result.Data, 4)
		assert.Equal(t, "Zulu", result.Data[0].Name)
		assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, names(result.Data[1:]))
	})
}

func TestPaginator_Pagination(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		ctx := context.Background()
		s := newSeed(t, db)
		p := s.project("analytics")
		sp := s.space(p, "Marketing", nil, 1, nil)
		s.dashboard(sp, "Dashboard 1", 1)
		s.dashboard(sp, "Dashboard 2", 2)
		s.dbtChart(sp, "Chart 1", 3, nil, nil)
		s.dbtChart(sp, "Chart 2", 4, nil, nil)
		s.sqlChart(sp, "Chart 3", 5)

		agg := newAggregator(t, NewWithPool(db.Pool))
		filters := summarycontent.Filters{
			ContentTypes: []summarycontent.ContentType{summarycontent.ContentTypeDashboard, summarycontent.ContentTypeChart},
		}

		first, err := agg.FindSummaryContents(ctx, filters, summarycontent.Args{}, &summarycontent.PaginateArgs{Page: 1, PageSize: 2})
		require.NoError(t, err)
		require.NotNil(t, first.Pagination)
		assert.Equal(t, summarycontent.Pagination{Page: 1, PageSize: 2, TotalPageCount: 3, TotalResults: 5}, *first.Pagination)
		assert.Equal(t, []string{"Dashboard 2", "Dashboard 1"}, names(first.Data))

		last, err := agg.FindSummaryContents(ctx, filters, summarycontent.Args{}, &summarycontent.PaginateArgs{Page: 3, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"Chart 1"}, names(last.Data))
		assert.Equal(t, 3, last.Pagination.Page)

		beyond, err := agg.FindSummaryContents(ctx, filters, summarycontent.Args{}, &summarycontent.PaginateArgs{Page: 9, PageSize: 2})
		require.NoError(t, err)
		assert.Empty(t, beyond.Data)
		assert.Equal(t, 5, beyond.Pagination.TotalResults)
	})
}

func TestPaginator_TwoTypesByRank(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		ctx := context.Background()
		s := newSeed(t, db)
		p := s.project("analytics")
		a := s.space(p, "Space A", nil, 1, nil)
		b := s.space(p, "Space B", nil, 3, nil)
		s.space(p, "Space C", nil, 2, nil)
		s.dashboard(a, "Dashboard A", 30)
		s.dashboard(b, "Dashboard B", 40)

		agg := newAggregator(t, NewWithPool(db.Pool))
		result, err := agg.FindSummaryContents(ctx,
			summarycontent.Filters{ContentTypes: []summarycontent.ContentType{summarycontent.ContentTypeSpace, summarycontent.ContentTypeDashboard}},
			summarycontent.Args{},
			nil,
		)
		require.NoError(t, err)

		// dashboards are newer but spaces rank first
		assert.Equal(t, []string{"Space B", "Space C", "Space A", "Dashboard B", "Dashboard A"}, names(result.Data))
	})
}

func TestPaginator_Conversion(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		ctx := context.Background()
		s := newSeed(t, db)
		p := s.project("analytics")
		author := s.user("Ada", "Lovelace")
		root := s.space(p, "Root", nil, 1, &author)
		child := s.space(p, "Child", &root.UUID, 2, nil)
		dash := s.dashboard(root, "Overview", 3)
		chartID := s.dbtChart(root, "Revenue", 4, &dash, &author)
		s.sqlChart(child, "Raw orders", 5)

		agg := newAggregator(t, NewWithPool(db.Pool))
		result, err := agg.FindSummaryContents(ctx, summarycontent.Filters{}, summarycontent.Args{}, nil)
		require.NoError(t, err)
		require.Len(t, result.Data, 5)

		byName := map[string]summarycontent.Summary{}
		for _, summary := range result.Data {
			byName[summary.Name] = summary
		}

		chart := byName["Revenue"]
		assert.Equal(t, chartID, chart.UUID)
		assert.Equal(t, summarycontent.ContentTypeChart, chart.ContentType)
		assert.Equal(t, int64(7), chart.Views)
		assert.Equal(t, p.ProjectUUID, chart.Project.UUID)
		assert.Equal(t, "analytics", chart.Project.Name)
		assert.Equal(t, p.OrganizationUUID, chart.Organization.UUID)
		assert.Equal(t, root.UUID, chart.Space.UUID)
		require.NotNil(t, chart.CreatedBy)
		assert.Equal(t, "Ada", chart.CreatedBy.FirstName)
		chartMeta, ok := chart.Metadata.(summarycontent.ChartMetadata)
		require.True(t, ok)
		assert.Equal(t, summarycontent.ChartSourceDbtExplore, chartMeta.Source)
		assert.Equal(t, "vertical_bar", chartMeta.ChartKind)
		require.NotNil(t, chartMeta.Dashboard)
		assert.Equal(t, dash, chartMeta.Dashboard.UUID)
		assert.Equal(t, "Overview", chartMeta.Dashboard.Name)

		sqlChart := byName["Raw orders"]
		sqlMeta, ok := sqlChart.Metadata.(summarycontent.ChartMetadata)
		require.True(t, ok)
		assert.Equal(t, summarycontent.ChartSourceSQL, sqlMeta.Source)
		assert.Nil(t, sqlMeta.Dashboard)
		assert.Nil(t, sqlChart.CreatedBy)
		require.NotNil(t, sqlChart.Description)
		assert.Equal(t, "select 1", *sqlChart.Description)

		dashMeta, ok := byName["Overview"].Metadata.(summarycontent.DashboardMetadata)
		require.True(t, ok)
		assert.Equal(t, int64(1), dashMeta.ChartCount)

		rootMeta, ok := byName["Root"].Metadata.(summarycontent.SpaceMetadata)
		require.True(t, ok)
		assert.False(t, rootMeta.IsPrivate)
		assert.Nil(t, rootMeta.ParentSpaceUUID)
		assert.Equal(t, int64(1), rootMeta.ChartCount)
		assert.Equal(t, int64(1), rootMeta.DashboardCount)
		assert.Equal(t, root.UUID, byName["Root"].Space.UUID)
		assert.Nil(t, byName["Root"].Description)

		childMeta, ok := byName["Child"].Metadata.(summarycontent.SpaceMetadata)
		require.True(t, ok)
		require.NotNil(t, childMeta.ParentSpaceUUID)
		assert.Equal(t, root.UUID, *childMeta.ParentSpaceUUID)
		assert.True(t, childMeta.IsPrivate)
		assert.Equal(t, int64(1), childMeta.ChartCount)
	})
}

func TestPaginator_Filters(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		ctx := context.Background()
		s := newSeed(t, db)
		p1 := s.project("first")
		p2 := s.project("second")
		author := s.user("Grace", "Hopper")
		root := s.space(p1, "Root", nil, 1, &author)
		child := s.space(p1, "Nested", &root.UUID, 2, nil)
		other := s.space(p2, "Elsewhere", nil, 3, nil)
		s.dbtChart(root, "Revenue 100%", 4, nil, &author)
		s.dbtChart(child, "Revenue by region", 5, nil, nil)
		s.sqlChart(root, "Orders", 6)
		s.dashboard(other, "Other dashboard", 7)
		deleted := s.dashboard(root, "Deleted dashboard", 8)
		s.exec(`UPDATE dashboards SET deleted_at = NOW() WHERE dashboard_uuid = $1`, deleted)

		agg := newAggregator(t, NewWithPool(db.Pool))
		find := func(filters summarycontent.Filters) []string {
			t.Helper()
			result, err := agg.FindSummaryContents(ctx, filters, summarycontent.Args{SortBy: "name", SortDirection: summarycontent.SortAsc}, nil)
			require.NoError(t, err)
			return names(result.Data)
		}

		assert.Equal(t, []string{"Elsewhere", "Other dashboard"},
			find(summarycontent.Filters{ProjectUUIDs: []uuid.UUID{p2.ProjectUUID}}))

		assert.Equal(t, []string{"Orders"},
			find(summarycontent.Filters{ChartSource: summarycontent.ChartSourceSQL, ContentTypes: []summarycontent.ContentType{summarycontent.ContentTypeChart}}))

		// % is matched literally
		assert.Equal(t, []string{"Revenue 100%"},
			find(summarycontent.Filters{Search: "100%"}))

		assert.Equal(t, []string{"Revenue 100%", "Revenue by region"},
			find(summarycontent.Filters{Search: "revenue"}))

		assert.Equal(t, []string{"Root", "Revenue 100%"},
			find(summarycontent.Filters{CreatedByUserUUIDs: []uuid.UUID{author}}))

		assert.Equal(t, []string{"Elsewhere", "Root"},
			find(summarycontent.Filters{ContentTypes: []summarycontent.ContentType{summarycontent.ContentTypeSpace}, Space: summarycontent.SpaceFilters{RootSpaces: true}}))

		assert.Equal(t, []string{"Nested"},
			find(summarycontent.Filters{ContentTypes: []summarycontent.ContentType{summarycontent.ContentTypeSpace}, Space: summarycontent.SpaceFilters{ParentSpaceUUIDs: []uuid.UUID{root.UUID}}}))

		assert.Equal(t, []string{"Nested", "Revenue by region"},
			find(summarycontent.Filters{SpaceUUIDs: []uuid.UUID{child.UUID}}))

		assert.NotContains(t, find(summarycontent.Filters{}), "Deleted dashboard")
	})
}

func TestPaginator_Transaction(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		ctx := context.Background()
		s := newSeed(t, db)
		p := s.project("analytics")
		sp := s.space(p, "Marketing", nil, 1, nil)
		s.dashboard(sp, "Overview", 2)

		tx, err := db.Pool.Begin(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback(ctx) }()

		agg := newAggregator(t, New(tx))
		result, err := agg.FindSummaryContents(ctx, summarycontent.Filters{}, summarycontent.Args{}, &summarycontent.PaginateArgs{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"Marketing", "Overview"}, names(result.Data))
		assert.Equal(t, 2, result.Pagination.TotalResults)
		assert.Equal(t, 1, result.Pagination.TotalPageCount)
	})
}

func TestPaginator_MissingTable(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		ctx := context.Background()
		_, err := db.Pool.Exec(ctx, "ALTER TABLE saved_sql RENAME TO saved_sql_renamed")
		require.NoError(t, err)
		defer func() {
			_, err := db.Pool.Exec(ctx, "ALTER TABLE saved_sql_renamed RENAME TO saved_sql")
			require.NoError(t, err)
		}()

		agg := newAggregator(t, NewWithPool(db.Pool))
		_, err = agg.FindSummaryContents(ctx, summarycontent.Filters{}, summarycontent.Args{}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database migration required")
	})
}
