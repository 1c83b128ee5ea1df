package storage

import (
	"path/filepath"
	"testing"
	"time"

	"teduh_scraper/models"
)

func testLedger(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := testLedger(t)

	run := &models.ScrapeRun{
		Developer: "ASM DEVELOPMENT SDN. BHD.",
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	if err := store.CreateRun(run); err != nil {
		t.Fatalf("create run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected an assigned run ID")
	}

	now := time.Now()
	run.FinishedAt = &now
	run.Status = models.RunStatusCompleted
	run.Projects = 3
	run.Units = 120
	run.Verified = true
	if err := store.UpdateRun(run); err != nil {
		t.Fatalf("update run: %v", err)
	}

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got == nil {
		t.Fatal("run not found")
	}
	if got.Status != models.RunStatusCompleted || got.Units != 120 || !got.Verified {
		t.Fatalf("unexpected run state: %+v", got)
	}
}

func TestCommandQueue(t *testing.T) {
	store := testLedger(t)

	if _, err := store.db.Exec(
		`INSERT INTO commands (command, params) VALUES (?, ?)`,
		string(models.CmdScrapePemaju), `{"developer":"DEV A SDN. BHD."}`); err != nil {
		t.Fatalf("insert command: %v", err)
	}

	cmds, err := store.GetPendingCommands()
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("expected 1 pending command, got %d", len(cmds))
	}

	params, err := store.ParseCommandParams(&cmds[0])
	if err != nil {
		t.Fatalf("parse params: %v", err)
	}
	if params.Developer != "DEV A SDN. BHD." {
		t.Fatalf("unexpected developer param: %q", params.Developer)
	}

	if err := store.MarkCommandProcessed(cmds[0].ID); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	cmds, err = store.GetPendingCommands()
	if err != nil {
		t.Fatalf("get pending again: %v", err)
	}
	if len(cmds) != 0 {
		t.Fatalf("expected no pending commands, got %d", len(cmds))
	}
}

func TestRecentLogs(t *testing.T) {
	store := testLedger(t)

	run := &models.ScrapeRun{Developer: "DEV A", StartedAt: time.Now(), Status: models.RunStatusRunning}
	if err := store.CreateRun(run); err != nil {
		t.Fatalf("create run: %v", err)
	}

	for _, msg := range []string{"search submitted", "page 1 parsed", "snapshot written"} {
		if err := store.Log(&run.ID, models.LogLevelInfo, msg, "DEV A"); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	// Lines from another run must not leak in.
	if err := store.Log(nil, models.LogLevelError, "unrelated", "DEV B"); err != nil {
		t.Fatalf("log other: %v", err)
	}

	logs, err := store.RecentLogs(run.ID, 2)
	if err != nil {
		t.Fatalf("recent logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(logs))
	}
	if logs[0].Message != "snapshot written" || logs[1].Message != "page 1 parsed" {
		t.Fatalf("expected newest first, got %q then %q", logs[0].Message, logs[1].Message)
	}
	if logs[0].RunID == nil || *logs[0].RunID != run.ID {
		t.Fatalf("unexpected run id on entry: %+v", logs[0])
	}
	if logs[0].Level != models.LogLevelInfo || logs[0].Developer != "DEV A" {
		t.Fatalf("unexpected entry fields: %+v", logs[0])
	}
}

func TestArchiveRegistry(t *testing.T) {
	store := testLedger(t)

	path := "/data/pemaju/DEV_A/DEV_A_Melaka_UNIT_DETAILS_20260825.csv"
	done, err := store.IsUploaded(path)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if done {
		t.Fatal("fresh path must not be uploaded")
	}

	if err := store.MarkUploaded(path); err != nil {
		t.Fatalf("mark: %v", err)
	}
	// Re-marking must not error; reruns hit the same files.
	if err := store.MarkUploaded(path); err != nil {
		t.Fatalf("re-mark: %v", err)
	}

	done, err = store.IsUploaded(path)
	if err != nil {
		t.Fatalf("check again: %v", err)
	}
	if !done {
		t.Fatal("expected path to be registered")
	}
}
