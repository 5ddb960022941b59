package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tendant/summary-content/pkg/summarycontent"
	"github.com/tendant/summary-content/pkg/summarycontent/config"
)

// listOptions holds the flags of the list command
type listOptions struct {
	projects      []string
	spaces        []string
	types         []string
	chartSource   string
	search        string
	createdBy     []string
	parentSpaces  []string
	rootSpaces    bool
	sortBy        string
	sortDirection string
	page          int
	pageSize      int
	all           bool
	output        string
}

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content summaries",
		Long:  `List spaces, dashboards and charts ordered by content type rank and the chosen sort key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := opts.filters()
			if err != nil {
				return err
			}
			if !validOutput(opts.output) {
				return fmt.Errorf("unsupported output %q (use table, json or yaml)", opts.output)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			aggregator, pool, err := cfg.BuildAggregator(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			result, err := aggregator.FindSummaryContents(cmd.Context(), filters, opts.args(), opts.paginateArgs())
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}

			return writeSummaries(cmd.OutOrStdout(), opts.output, result)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&opts.projects, "project", nil, "project uuid (repeatable)")
	flags.StringSliceVar(&opts.spaces, "space", nil, "space uuid (repeatable)")
	flags.StringSliceVar(&opts.types, "type", nil, "content type: chart, dashboard or space (repeatable)")
	flags.StringVar(&opts.chartSource, "chart-source", "", "chart source: dbt_explore or sql")
	flags.StringVar(&opts.search, "search", "", "case-insensitive name or description search")
	flags.StringSliceVar(&opts.createdBy, "created-by", nil, "creator user uuid (repeatable)")
	flags.StringSliceVar(&opts.parentSpaces, "parent-space", nil, "only spaces nested in this space (repeatable)")
	flags.BoolVar(&opts.rootSpaces, "root-spaces", false, "only top-level spaces")
	flags.StringVar(&opts.sortBy, "sort-by", "", "name, space_name, created_at, last_updated_at or views")
	flags.StringVar(&opts.sortDirection, "sort-direction", "", "asc or desc (default desc)")
	flags.IntVar(&opts.page, "page", 1, "page number")
	flags.IntVar(&opts.pageSize, "page-size", 25, "page size")
	flags.BoolVar(&opts.all, "all", false, "return every row without pagination")
	flags.StringVarP(&opts.output, "output", "o", "table", "output format: table, json or yaml")

	return cmd
}

func (o listOptions) filters() (summarycontent.Filters, error) {
	var err error
	filters := summarycontent.Filters{
		ChartSource: summarycontent.ChartSource(o.chartSource),
		Search:      o.search,
		Space:       summarycontent.SpaceFilters{RootSpaces: o.rootSpaces},
	}
	if filters.ProjectUUIDs, err = parseUUIDFlag("project", o.projects); err != nil {
		return filters, err
	}
	if filters.SpaceUUIDs, err = parseUUIDFlag("space", o.spaces); err != nil {
		return filters, err
	}
	if filters.CreatedByUserUUIDs, err = parseUUIDFlag("created-by", o.createdBy); err != nil {
		return filters, err
	}
	if filters.Space.ParentSpaceUUIDs, err = parseUUIDFlag("parent-space", o.parentSpaces); err != nil {
		return filters, err
	}
	for _, t := range o.types {
		ct := summarycontent.ContentType(t)
		if !ct.IsValid() {
			return filters, fmt.Errorf("invalid --type %q", t)
		}
		filters.ContentTypes = append(filters.ContentTypes, ct)
	}
	switch filters.ChartSource {
	case "", summarycontent.ChartSourceDbtExplore, summarycontent.ChartSourceSQL:
	default:
		return filters, fmt.Errorf("invalid --chart-source %q", o.chartSource)
	}
	return filters, nil
}

func (o listOptions) args() summarycontent.Args {
	return summarycontent.Args{
		SortBy:        o.sortBy,
		SortDirection: summarycontent.SortDirection(o.sortDirection),
	}
}

func (o listOptions) paginateArgs() *summarycontent.PaginateArgs {
	if o.all {
		return nil
	}
	return &summarycontent.PaginateArgs{Page: o.page, PageSize: o.pageSize}
}

func parseUUIDFlag(name string, values []string) ([]uuid.UUID, error) {
	if len(values) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s %q: %w", name, v, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// NewPingCommand creates the ping command
func NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the database connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := config.PingPostgres(cfg.DatabaseURL, cfg.DBSchema); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok (schema %s)\n", cfg.DBSchema)
			return nil
		},
	}
}
