package configurations

import "github.com/tendant/summary-content/pkg/summarycontent"

// Content type ranks. Lower ranks sort first; both chart sources share a rank
// so they interleave by the secondary sort key.
const (
	RankSpace     = 1
	RankDashboard = 2
	RankChart     = 3
)

// Default returns the built-in configurations in registry order.
func Default() []summarycontent.Configuration {
	return []summarycontent.Configuration{
		NewSQLChartConfiguration(),
		NewDbtExploreChartConfiguration(),
		NewDashboardConfiguration(),
		NewSpaceConfiguration(),
	}
}

// NewRegistry creates a registry over the built-in configurations.
func NewRegistry() (*summarycontent.Registry, error) {
	return summarycontent.NewRegistry(Default()...)
}
