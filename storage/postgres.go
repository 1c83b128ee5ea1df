package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"teduh_scraper/models"
)

// PostgresStore holds the published tables: the three live tables that
// mirror the latest snapshot, and the append-only history_logs.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Migrate creates the live tables and history_logs if they do not
// exist. The live tables are wiped on every publish, so their schemas
// can evolve with the snapshot format; history_logs must stay stable.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS units_detail (
		id SERIAL PRIMARY KEY,
		project_code TEXT,
		project_name TEXT,
		pemaju_name TEXT,
		permit_no TEXT,
		unit_no TEXT,
		price_sales TEXT,
		status TEXT,
		bumi_quota TEXT,
		scraped_date TEXT,
		scraped_timestamp TEXT
	);

	CREATE TABLE IF NOT EXISTS projects_master (
		id SERIAL PRIMARY KEY,
		project_code TEXT,
		project_name TEXT,
		pemaju_name TEXT,
		permit_no TEXT,
		status_overall TEXT,
		development_info TEXT,
		location_district TEXT,
		location_state TEXT,
		permit_valid_date TEXT,
		scraped_date TEXT,
		scraped_timestamp TEXT
	);

	CREATE TABLE IF NOT EXISTS house_types (
		id SERIAL PRIMARY KEY,
		project_code TEXT,
		project_name TEXT,
		house_type TEXT,
		num_floors TEXT,
		num_rooms TEXT,
		num_bathrooms TEXT,
		built_up_size TEXT,
		total_units TEXT,
		price_min TEXT,
		price_max TEXT,
		percent_actual TEXT,
		component_status TEXT,
		date_ccc_cfo TEXT,
		date_vp TEXT,
		scraped_date TEXT,
		scraped_timestamp TEXT
	);

	CREATE TABLE IF NOT EXISTS history_logs (
		id SERIAL PRIMARY KEY,
		project_code TEXT,
		project_name TEXT,
		developer_name TEXT,
		scraped_date TEXT,
		total_units INTEGER,
		units_sold INTEGER,
		units_bumi INTEGER,
		units_unsold INTEGER,
		sales_value DOUBLE PRECISION,
		take_up_rate DOUBLE PRECISION
	);

	CREATE INDEX IF NOT EXISTS idx_history_project_date ON history_logs(project_code, scraped_date);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// ReplaceUnits wipes units_detail and bulk-loads the given rows.
func (s *PostgresStore) ReplaceUnits(ctx context.Context, units []models.Unit) (int, error) {
	if _, err := s.pool.Exec(ctx, `TRUNCATE TABLE units_detail RESTART IDENTITY`); err != nil {
		return 0, fmt.Errorf("truncate units_detail: %w", err)
	}

	rows := make([][]interface{}, len(units))
	for i, u := range units {
		rows[i] = []interface{}{
			u.ProjectCode, u.ProjectName, u.PemajuName, u.PermitNo,
			u.UnitNo, u.PriceSales, u.Status, u.BumiQuota,
			u.ScrapedDate, u.ScrapedTimestamp,
		}
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"units_detail"},
		[]string{"project_code", "project_name", "pemaju_name", "permit_no",
			"unit_no", "price_sales", "status", "bumi_quota",
			"scraped_date", "scraped_timestamp"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy units_detail: %w", err)
	}
	return int(n), nil
}

// ReplaceProjects wipes projects_master and bulk-loads the given rows.
func (s *PostgresStore) ReplaceProjects(ctx context.Context, projects []models.Project) (int, error) {
	if _, err := s.pool.Exec(ctx, `TRUNCATE TABLE projects_master RESTART IDENTITY`); err != nil {
		return 0, fmt.Errorf("truncate projects_master: %w", err)
	}

	rows := make([][]interface{}, len(projects))
	for i, p := range projects {
		rows[i] = []interface{}{
			p.ProjectCode, p.ProjectName, p.PemajuName, p.PermitNo,
			p.StatusOverall, p.DevelopmentInfo, p.LocationDistrict, p.LocationState,
			p.PermitValidDate, p.ScrapedDate, p.ScrapedTimestamp,
		}
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"projects_master"},
		[]string{"project_code", "project_name", "pemaju_name", "permit_no",
			"status_overall", "development_info", "location_district", "location_state",
			"permit_valid_date", "scraped_date", "scraped_timestamp"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy projects_master: %w", err)
	}
	return int(n), nil
}

// ReplaceHouseTypes wipes house_types and bulk-loads the given rows.
func (s *PostgresStore) ReplaceHouseTypes(ctx context.Context, houseTypes []models.HouseType) (int, error) {
	if _, err := s.pool.Exec(ctx, `TRUNCATE TABLE house_types RESTART IDENTITY`); err != nil {
		return 0, fmt.Errorf("truncate house_types: %w", err)
	}

	rows := make([][]interface{}, len(houseTypes))
	for i, h := range houseTypes {
		rows[i] = []interface{}{
			h.ProjectCode, h.ProjectName, h.HouseType, h.NumFloors, h.NumRooms,
			h.NumBathrooms, h.BuiltUpSize, h.TotalUnits, h.PriceMin, h.PriceMax,
			h.PercentActual, h.ComponentStatus, h.DateCCCCFO, h.DateVP,
			h.ScrapedDate, h.ScrapedTimestamp,
		}
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"house_types"},
		[]string{"project_code", "project_name", "house_type", "num_floors", "num_rooms",
			"num_bathrooms", "built_up_size", "total_units", "price_min", "price_max",
			"percent_actual", "component_status", "date_ccc_cfo", "date_vp",
			"scraped_date", "scraped_timestamp"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy house_types: %w", err)
	}
	return int(n), nil
}

// HistoryKeys returns the set of "<project_code>_<scraped_date>" keys
// already present in history_logs.
func (s *PostgresStore) HistoryKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT project_code, scraped_date FROM history_logs`)
	if err != nil {
		return nil, fmt.Errorf("load history keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var code, date string
		if err := rows.Scan(&code, &date); err != nil {
			return nil, err
		}
		keys[code+"_"+date] = struct{}{}
	}
	return keys, rows.Err()
}

// AppendHistory inserts the given aggregates. The caller already
// filtered out entries whose key exists.
func (s *PostgresStore) AppendHistory(ctx context.Context, entries []models.HistoryLogEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	rows := make([][]interface{}, len(entries))
	for i, e := range entries {
		rows[i] = []interface{}{
			e.ProjectCode, e.ProjectName, e.DeveloperName, e.ScrapedDate,
			e.TotalUnits, e.UnitsSold, e.UnitsBumi, e.UnitsUnsold,
			e.SalesValue, e.TakeUpRate,
		}
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"history_logs"},
		[]string{"project_code", "project_name", "developer_name", "scraped_date",
			"total_units", "units_sold", "units_bumi", "units_unsold",
			"sales_value", "take_up_rate"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy history_logs: %w", err)
	}
	return int(n), nil
}
