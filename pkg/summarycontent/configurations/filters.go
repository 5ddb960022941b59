package configurations

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/tendant/summary-content/pkg/summarycontent"
)

// filterColumns names the source columns a configuration exposes to the
// type-agnostic filters. An empty name means the filter does not apply.
type filterColumns struct {
	project     string
	space       string
	createdBy   string
	name        string
	description string
}

func applyCommonFilters(sb *sqlbuilder.SelectBuilder, filters summarycontent.Filters, cols filterColumns) {
	if len(filters.ProjectUUIDs) > 0 && cols.project != "" {
		sb.Where(sb.In(cols.project, uuidArgs(filters.ProjectUUIDs)...))
	}
	if len(filters.SpaceUUIDs) > 0 && cols.space != "" {
		sb.Where(sb.In(cols.space, uuidArgs(filters.SpaceUUIDs)...))
	}
	if len(filters.CreatedByUserUUIDs) > 0 && cols.createdBy != "" {
		sb.Where(sb.In(cols.createdBy, uuidArgs(filters.CreatedByUserUUIDs)...))
	}
	if search := strings.TrimSpace(filters.Search); search != "" && cols.name != "" {
		pattern := "%" + escapeLike(search) + "%"
		conds := []string{fmt.Sprintf("%s ILIKE %s", cols.name, sb.Var(pattern))}
		if cols.description != "" {
			conds = append(conds, fmt.Sprintf("%s ILIKE %s", cols.description, sb.Var(pattern)))
		}
		sb.Where(sb.Or(conds...))
	}
}

// uuidArgs boxes ids for sb.In. sqlbuilder.Flatten would also flatten each
// uuid.UUID, which is a byte array.
func uuidArgs(ids []uuid.UUID) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
