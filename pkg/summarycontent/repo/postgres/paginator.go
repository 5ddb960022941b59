package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/summary-content/pkg/summarycontent"
	"golang.org/x/sync/errgroup"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Paginator implements summarycontent.Paginator using PostgreSQL
type Paginator struct {
	db DBTX
	// concurrent allows the count and page queries to run in parallel; only
	// safe when db hands out separate connections
	concurrent bool
}

// New creates a paginator over a single connection or transaction
func New(db DBTX) *Paginator {
	return &Paginator{db: db}
}

// NewWithPool creates a paginator with connection pool
func NewWithPool(pool *pgxpool.Pool) *Paginator {
	return &Paginator{db: pool, concurrent: true}
}

var _ summarycontent.Paginator = (*Paginator)(nil)

// Paginate runs query. With args it also counts every matching row and
// limits the result to the requested page.
func (p *Paginator) Paginate(ctx context.Context, query *sqlbuilder.SelectBuilder, args *summarycontent.PaginateArgs) (*summarycontent.PaginatedRows, error) {
	if args == nil {
		sql, sqlArgs := query.Build()
		rows, err := p.queryRows(ctx, sql, sqlArgs)
		if err != nil {
			return nil, err
		}
		return &summarycontent.PaginatedRows{Data: rows}, nil
	}

	// build the count before limiting the shared query builder
	cb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	cb.Select("COUNT(*)").From(cb.BuilderAs(query, "counted"))
	countSQL, countArgs := cb.Build()

	query.Limit(args.PageSize).Offset(args.Offset())
	pageSQL, pageArgs := query.Build()

	var (
		total int64
		rows  []summarycontent.Row
	)
	count := func(ctx context.Context) error {
		if err := p.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return p.handlePostgresError("count summary rows", err)
		}
		return nil
	}
	page := func(ctx context.Context) error {
		var err error
		rows, err = p.queryRows(ctx, pageSQL, pageArgs)
		return err
	}

	if p.concurrent {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return count(gctx) })
		g.Go(func() error { return page(gctx) })
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		if err := count(ctx); err != nil {
			return nil, err
		}
		if err := page(ctx); err != nil {
			return nil, err
		}
	}

	return &summarycontent.PaginatedRows{
		Data:       rows,
		Pagination: summarycontent.NewPagination(*args, int(total)),
	}, nil
}

func (p *Paginator) queryRows(ctx context.Context, sql string, args []interface{}) ([]summarycontent.Row, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, p.handlePostgresError("query summary rows", err)
	}
	defer rows.Close()

	results := []summarycontent.Row{}
	for rows.Next() {
		var row summarycontent.Row
		if err := rows.Scan(row.ScanTargets()...); err != nil {
			return nil, p.handlePostgresError("scan summary row", err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, p.handlePostgresError("iterate summary rows", err)
	}

	return results, nil
}

// Error handling helper
func (p *Paginator) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("%s: table does not exist - database migration required: %w", operation, err)
		case "42703": // undefined_column
			return fmt.Errorf("%s: column %s does not exist - database migration required: %w", operation, pgErr.ColumnName, err)
		case "42804", "42P18": // datatype_mismatch, indeterminate_datatype
			return fmt.Errorf("%s: summary branches are not union-compatible: %w", operation, err)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}
