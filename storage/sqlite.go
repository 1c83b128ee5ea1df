package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"teduh_scraper/models"
)

// SQLiteStore is the operational ledger: run records, step logs,
// inbound commands, and the archive upload registry. Scraped data never
// lives here; it goes to the snapshot files and Postgres.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scrape_runs (
		id TEXT PRIMARY KEY,
		developer TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		projects INTEGER DEFAULT 0,
		house_types INTEGER DEFAULT 0,
		units INTEGER DEFAULT 0,
		rows_skipped INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0,
		verified BOOLEAN DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS scrape_logs (
		id INTEGER PRIMARY KEY,
		run_id TEXT,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		developer TEXT
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		params JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS archive_uploads (
		path TEXT PRIMARY KEY,
		uploaded_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_runs_status ON scrape_runs(status, started_at);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON scrape_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateRun inserts a new run record, assigning an ID when the caller
// left it empty.
func (s *SQLiteStore) CreateRun(run *models.ScrapeRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO scrape_runs (id, developer, started_at, status, projects, house_types, units, rows_skipped, errors_count, verified)
		VALUES (?, ?, ?, ?, 0, 0, 0, 0, 0, FALSE)`,
		run.ID, run.Developer, run.StartedAt, run.Status)
	return err
}

func (s *SQLiteStore) UpdateRun(run *models.ScrapeRun) error {
	_, err := s.db.Exec(`
		UPDATE scrape_runs SET finished_at = ?, status = ?, projects = ?,
			house_types = ?, units = ?, rows_skipped = ?, errors_count = ?, verified = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.Projects, run.HouseTypes,
		run.Units, run.RowsSkipped, run.ErrorsCount, run.Verified, run.ID)
	return err
}

func (s *SQLiteStore) GetRun(id string) (*models.ScrapeRun, error) {
	row := s.db.QueryRow(`
		SELECT id, developer, started_at, finished_at, status, projects,
			house_types, units, rows_skipped, errors_count, verified
		FROM scrape_runs WHERE id = ?`, id)

	var run models.ScrapeRun
	err := row.Scan(&run.ID, &run.Developer, &run.StartedAt, &run.FinishedAt, &run.Status,
		&run.Projects, &run.HouseTypes, &run.Units, &run.RowsSkipped, &run.ErrorsCount, &run.Verified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *SQLiteStore) Log(runID *string, level models.LogLevel, message, developer string) error {
	_, err := s.db.Exec(`
		INSERT INTO scrape_logs (run_id, timestamp, level, message, developer)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, developer)
	return err
}

// RecentLogs returns a run's newest log lines, most recent first.
func (s *SQLiteStore) RecentLogs(runID string, limit int) ([]models.ScrapeLog, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, timestamp, level, message, developer
		FROM scrape_logs WHERE run_id = ?
		ORDER BY timestamp DESC, id DESC LIMIT ?`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ScrapeLog
	for rows.Next() {
		var entry models.ScrapeLog
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.Timestamp, &entry.Level, &entry.Message, &entry.Developer); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, params, created_at, processed_at
		FROM commands WHERE processed_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		var params sql.NullString
		if err := rows.Scan(&cmd.ID, &cmd.Command, &params, &cmd.CreatedAt, &cmd.ProcessedAt); err != nil {
			return nil, err
		}
		if params.Valid {
			cmd.Params = json.RawMessage(params.String)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

func (s *SQLiteStore) ParseCommandParams(cmd *models.Command) (*models.CommandParams, error) {
	if cmd.Params == nil || string(cmd.Params) == "null" {
		return &models.CommandParams{}, nil
	}
	var params models.CommandParams
	if err := json.Unmarshal(cmd.Params, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// IsUploaded reports whether a snapshot file was already archived.
func (s *SQLiteStore) IsUploaded(path string) (bool, error) {
	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM archive_uploads WHERE path = ? LIMIT 1`, path).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (s *SQLiteStore) MarkUploaded(path string) error {
	_, err := s.db.Exec(`
		INSERT INTO archive_uploads (path, uploaded_at) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET uploaded_at = excluded.uploaded_at`,
		path, time.Now())
	return err
}
