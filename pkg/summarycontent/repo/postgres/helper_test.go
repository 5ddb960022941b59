package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

const testSchema = "summary_content_test"

// TestDB represents a test database connection
type TestDB struct {
	Pool *pgxpool.Pool
}

// NewTestDB connects to TEST_DATABASE_URL with search_path set to the test schema
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database test")
	}

	ctx := context.Background()

	// the schema has to exist before connections start using it
	conn, err := pgx.Connect(ctx, connString)
	require.NoError(t, err, "Failed to connect to test database")
	_, err = conn.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+testSchema)
	require.NoError(t, err, "Failed to create test schema")
	require.NoError(t, conn.Close(ctx))

	cfg, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET search_path TO "+testSchema)
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err, "Failed to create pool")
	require.NoError(t, pool.Ping(ctx), "Failed to ping test database")

	return &TestDB{Pool: pool}
}

// Setup creates the content tables the summary configurations read from
func (db *TestDB) Setup(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS organizations (
			organization_id SERIAL PRIMARY KEY,
			organization_uuid UUID NOT NULL UNIQUE,
			organization_name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			project_id SERIAL PRIMARY KEY,
			project_uuid UUID NOT NULL UNIQUE,
			name TEXT NOT NULL,
			organization_id INT NOT NULL REFERENCES organizations(organization_id)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id SERIAL PRIMARY KEY,
			user_uuid UUID NOT NULL UNIQUE,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS spaces (
			space_id SERIAL PRIMARY KEY,
			space_uuid UUID NOT NULL UNIQUE,
			name TEXT NOT NULL,
			slug TEXT,
			project_id INT NOT NULL REFERENCES projects(project_id),
			is_private BOOLEAN NOT NULL DEFAULT FALSE,
			parent_space_uuid UUID,
			path TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			created_by_user_uuid UUID,
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS dashboards (
			dashboard_id SERIAL PRIMARY KEY,
			dashboard_uuid UUID NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT,
			slug TEXT,
			space_id INT NOT NULL REFERENCES spaces(space_id),
			views_count INT NOT NULL DEFAULT 0,
			first_viewed_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			created_by_user_uuid UUID,
			last_updated_at TIMESTAMP NOT NULL,
			last_updated_by_user_uuid UUID,
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS saved_queries (
			saved_query_id SERIAL PRIMARY KEY,
			saved_query_uuid UUID NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT,
			slug TEXT,
			space_id INT NOT NULL REFERENCES spaces(space_id),
			dashboard_uuid UUID,
			last_version_chart_kind TEXT,
			views_count INT NOT NULL DEFAULT 0,
			first_viewed_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			created_by_user_uuid UUID,
			last_version_updated_at TIMESTAMP NOT NULL,
			last_version_updated_by_user_uuid UUID,
			deleted_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS saved_sql (
			saved_sql_uuid UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			slug TEXT,
			space_uuid UUID NOT NULL REFERENCES spaces(space_uuid),
			dashboard_uuid UUID,
			last_version_chart_kind TEXT,
			views_count INT NOT NULL DEFAULT 0,
			first_viewed_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			created_by_user_uuid UUID,
			last_version_updated_at TIMESTAMP NOT NULL,
			last_version_updated_by_user_uuid UUID,
			deleted_at TIMESTAMP
		)`,
	}
	for _, stmt := range statements {
		_, err := db.Pool.Exec(ctx, stmt)
		require.NoError(t, err, "Failed to create table")
	}
}

// Cleanup removes all test data from the database
func (db *TestDB) Cleanup(t *testing.T) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(),
		"TRUNCATE saved_sql, saved_queries, dashboards, spaces, users, projects, organizations RESTART IDENTITY CASCADE")
	require.NoError(t, err, "Failed to truncate tables")
}

// Close closes the database connection
func (db *TestDB) Close(t *testing.T) {
	t.Helper()
	db.Pool.Close()
}

// RunTest runs a test with database setup and cleanup
func RunTest(t *testing.T, testFunc func(t *testing.T, db *TestDB)) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db := NewTestDB(t)
	defer db.Close(t)

	db.Setup(t)
	db.Cleanup(t)

	testFunc(t, db)
}

// seed inserts rows for tests. Timestamps are offsets from a fixed base so
// ordering assertions are deterministic.
type seed struct {
	t    *testing.T
	db   *TestDB
	base time.Time
}

func newSeed(t *testing.T, db *TestDB) *seed {
	return &seed{t: t, db: db, base: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (s *seed) at(hours int) time.Time {
	return s.base.Add(time.Duration(hours) * time.Hour)
}

func (s *seed) exec(sql string, args ...interface{}) {
	s.t.Helper()
	_, err := s.db.Pool.Exec(context.Background(), sql, args...)
	require.NoError(s.t, err)
}

type seededProject struct {
	OrganizationUUID uuid.UUID
	ProjectUUID      uuid.UUID
	projectID        int
}

func (s *seed) project(name string) seededProject {
	s.t.Helper()
	ctx := context.Background()
	p := seededProject{OrganizationUUID: uuid.New(), ProjectUUID: uuid.New()}

	var orgID int
	err := s.db.Pool.QueryRow(ctx,
		`INSERT INTO organizations (organization_uuid, organization_name) VALUES ($1, $2) RETURNING organization_id`,
		p.OrganizationUUID, name+" org").Scan(&orgID)
	require.NoError(s.t, err)

	err = s.db.Pool.QueryRow(ctx,
		`INSERT INTO projects (project_uuid, name, organization_id) VALUES ($1, $2, $3) RETURNING project_id`,
		p.ProjectUUID, name, orgID).Scan(&p.projectID)
	require.NoError(s.t, err)
	return p
}

func (s *seed) user(first, last string) uuid.UUID {
	id := uuid.New()
	s.exec(`INSERT INTO users (user_uuid, first_name, last_name) VALUES ($1, $2, $3)`, id, first, last)
	return id
}

type seededSpace struct {
	UUID    uuid.UUID
	spaceID int
}

func (s *seed) space(p seededProject, name string, parent *uuid.UUID, createdHours int, createdBy *uuid.UUID) seededSpace {
	s.t.Helper()
	sp := seededSpace{UUID: uuid.New()}
	err := s.db.Pool.QueryRow(context.Background(),
		`INSERT INTO spaces (space_uuid, name, slug, project_id, is_private, parent_space_uuid, path, created_at, created_by_user_uuid)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING space_id`,
		sp.UUID, name, fmt.Sprintf("space-%s", name), p.projectID, parent != nil, parent, name, s.at(createdHours), createdBy,
	).Scan(&sp.spaceID)
	require.NoError(s.t, err)
	return sp
}

func (s *seed) dashboard(sp seededSpace, name string, updatedHours int) uuid.UUID {
	id := uuid.New()
	s.exec(`INSERT INTO dashboards (dashboard_uuid, name, description, slug, space_id, views_count, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, name, name+" description", "dashboard-"+name, sp.spaceID, 3, s.at(0), s.at(updatedHours))
	return id
}

func (s *seed) dbtChart(sp seededSpace, name string, updatedHours int, dashboard *uuid.UUID, createdBy *uuid.UUID) uuid.UUID {
	id := uuid.New()
	s.exec(`INSERT INTO saved_queries (saved_query_uuid, name, slug, space_id, dashboard_uuid, last_version_chart_kind,
			views_count, created_at, created_by_user_uuid, last_version_updated_at, last_version_updated_by_user_uuid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, name, "chart-"+name, sp.spaceID, dashboard, "vertical_bar", 7, s.at(0), createdBy, s.at(updatedHours), createdBy)
	return id
}

func (s *seed) sqlChart(sp seededSpace, name string, updatedHours int) uuid.UUID {
	id := uuid.New()
	s.exec(`INSERT INTO saved_sql (saved_sql_uuid, name, description, slug, space_uuid, last_version_chart_kind,
			created_at, last_version_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, name, "select 1", "sql-"+name, sp.UUID, "table", s.at(0), s.at(updatedHours))
	return id
}
