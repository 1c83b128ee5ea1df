package services

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"teduh_scraper/config"
	"teduh_scraper/logging"
	"teduh_scraper/models"
	"teduh_scraper/scraper"
	"teduh_scraper/storage"
)

// ExtractionService runs the browser-driven phase: one run per
// developer keyword, each producing three snapshot CSVs plus a run log,
// with the outcome recorded in the operational ledger.
type ExtractionService struct {
	cfg    *config.Config
	ledger *storage.SQLiteStore
	paused atomic.Bool
}

func NewExtractionService(cfg *config.Config, ledger *storage.SQLiteStore) *ExtractionService {
	return &ExtractionService{cfg: cfg, ledger: ledger}
}

func (e *ExtractionService) Pause()  { e.paused.Store(true) }
func (e *ExtractionService) Resume() { e.paused.Store(false) }
func (e *ExtractionService) Paused() bool {
	return e.paused.Load()
}

// ReadDeveloperList loads the developer keywords, skipping blank lines
// and # comments.
func ReadDeveloperList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open developer list: %w", err)
	}
	defer f.Close()

	var developers []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		developers = append(developers, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read developer list: %w", err)
	}
	return developers, nil
}

// RunAll processes every developer in the configured list. A failed
// developer run does not stop the remaining ones.
func (e *ExtractionService) RunAll() error {
	developers, err := ReadDeveloperList(e.cfg.PemajuList)
	if err != nil {
		return err
	}
	log.Printf("Extraction sweep: %d developers", len(developers))

	var failed int
	for i, dev := range developers {
		if e.Paused() {
			log.Printf("Extraction paused, stopping sweep at %d/%d", i, len(developers))
			break
		}
		if err := e.RunDeveloper(dev); err != nil {
			log.Printf("Developer %q failed: %v", dev, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d developer runs failed", failed, len(developers))
	}
	return nil
}

// RunDeveloper drives one developer keyword end to end. Snapshot files
// are flushed on every exit path, so whatever was extracted before a
// failure still reaches the publish phase.
func (e *ExtractionService) RunDeveloper(developer string) error {
	start := time.Now()
	key := DeveloperKey(developer)

	run := &models.ScrapeRun{
		Developer: developer,
		StartedAt: start,
		Status:    models.RunStatusRunning,
	}
	if err := e.ledger.CreateRun(run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	runLog, err := logging.NewRunLog(e.cfg.RootDir, key, start)
	if err != nil {
		log.Printf("WARNING: run log unavailable for %s: %v", key, err)
	}
	defer runLog.Close()

	logf := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		log.Printf("[%s] %s", key, msg)
		runLog.Printf("%s", msg)
		level := models.LogLevelInfo
		if strings.HasPrefix(msg, "WARNING") {
			level = models.LogLevelWarn
		}
		e.ledger.Log(&run.ID, level, msg, developer)
	}

	var (
		master     []models.ProjectMasterRecord
		houseTypes []models.HouseTypeRecord
		units      []models.UnitDetailRecord
	)

	// Flush whatever was collected, then close out the ledger row.
	defer func() {
		if err := e.writeSnapshots(key, start, master, houseTypes, units, logf); err != nil {
			logf("WARNING: snapshot write failed: %v", err)
			run.ErrorsCount++
		}

		now := time.Now()
		run.FinishedAt = &now
		run.Projects = len(master)
		run.HouseTypes = len(houseTypes)
		run.Units = len(units)
		if err := e.ledger.UpdateRun(run); err != nil {
			log.Printf("WARNING: ledger update failed for run %s: %v", run.ID, err)
		}
		logf("run finished: status=%s projects=%d house_types=%d units=%d skipped=%d errors=%d elapsed=%s",
			run.Status, run.Projects, run.HouseTypes, run.Units, run.RowsSkipped, run.ErrorsCount,
			time.Since(start).Round(time.Second))
	}()

	session, err := scraper.NewSession(e.cfg, logf)
	if err != nil {
		run.Status = models.RunStatusFailed
		run.ErrorsCount++
		return fmt.Errorf("start session: %w", err)
	}
	defer session.Close()

	outcome, err := session.Search(developer)
	if err != nil {
		run.Status = models.RunStatusFailed
		run.ErrorsCount++
		return fmt.Errorf("search %q: %w", developer, err)
	}
	run.Verified = outcome.Verified()

	builder := NewRecordBuilder(e.cfg.State, start, NewRunCounters())

	page := 1
	for {
		logf("processing page %d", page)
		results, err := session.ExtractPage()
		for _, res := range results {
			m, hts, us, ok := builder.Build(res)
			if !ok {
				run.RowsSkipped++
				run.ErrorsCount++
				continue
			}
			master = append(master, m)
			houseTypes = append(houseTypes, hts...)
			units = append(units, us...)
		}
		if err != nil {
			run.Status = models.RunStatusFailed
			run.ErrorsCount++
			return fmt.Errorf("page %d: %w", page, err)
		}

		if !session.HasNextPage() {
			break
		}
		if err := session.NextPage(); err != nil {
			run.Status = models.RunStatusFailed
			run.ErrorsCount++
			return fmt.Errorf("advance from page %d: %w", page, err)
		}
		page++
	}

	run.Status = models.RunStatusCompleted
	return nil
}

func (e *ExtractionService) writeSnapshots(key string, start time.Time,
	master []models.ProjectMasterRecord, houseTypes []models.HouseTypeRecord,
	units []models.UnitDetailRecord, logf func(string, ...interface{})) error {

	writer := storage.NewSnapshotWriter(e.cfg.RootDir, e.cfg.State, start.Format("20060102"))
	dir, err := writer.Dir(key)
	if err != nil {
		return err
	}

	masterRows := make([][]string, len(master))
	for i, r := range master {
		masterRows[i] = r.Row()
	}
	htRows := make([][]string, len(houseTypes))
	for i, r := range houseTypes {
		htRows[i] = r.Row()
	}
	unitRows := make([][]string, len(units))
	for i, r := range units {
		unitRows[i] = r.Row()
	}

	files := []struct {
		family  string
		headers []string
		rows    [][]string
	}{
		{models.FamilyProjects, models.ProjectMasterHeaders, masterRows},
		{models.FamilyHouseTypes, models.HouseTypeHeaders, htRows},
		{models.FamilyUnitDetails, models.UnitDetailHeaders, unitRows},
	}

	for _, f := range files {
		path := writer.Path(dir, key, f.family)
		if err := writer.Write(path, f.headers, f.rows); err != nil {
			return err
		}
		logf("wrote %s (%d rows)", path, len(f.rows))
	}
	return nil
}
