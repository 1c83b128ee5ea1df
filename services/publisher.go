package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"teduh_scraper/models"
)

const soldMarker = "telah dijual"

// LiveStore is the published-table surface the publisher drives.
// *storage.PostgresStore implements it.
type LiveStore interface {
	ReplaceUnits(ctx context.Context, units []models.Unit) (int, error)
	ReplaceProjects(ctx context.Context, projects []models.Project) (int, error)
	ReplaceHouseTypes(ctx context.Context, houseTypes []models.HouseType) (int, error)
	HistoryKeys(ctx context.Context) (map[string]struct{}, error)
	AppendHistory(ctx context.Context, entries []models.HistoryLogEntry) (int, error)
}

// Publisher reloads the live tables from a day's collected snapshots
// and appends the per-project sales aggregates that are not yet in
// history_logs.
type Publisher struct {
	store LiveStore
}

func NewPublisher(store LiveStore) *Publisher {
	return &Publisher{store: store}
}

// Publish replaces the live tables and appends new history entries. An
// empty unit set aborts the whole run before anything is touched: no
// units means the extraction phase produced nothing usable today, and
// wiping the live tables over it would destroy yesterday's data.
func (p *Publisher) Publish(ctx context.Context, collected *CollectResult) (models.PublishResult, error) {
	result := models.PublishResult{FilesScanned: collected.FilesScanned}

	if len(collected.Units) == 0 {
		result.Aborted = true
		result.AbortReason = "no unit records collected"
		return result, nil
	}

	n, err := p.store.ReplaceUnits(ctx, collected.Units)
	if err != nil {
		return result, fmt.Errorf("replace units: %w", err)
	}
	result.UnitsLoaded = n

	n, err = p.store.ReplaceProjects(ctx, collected.Projects)
	if err != nil {
		return result, fmt.Errorf("replace projects: %w", err)
	}
	result.ProjectsLoaded = n

	n, err = p.store.ReplaceHouseTypes(ctx, collected.HouseTypes)
	if err != nil {
		return result, fmt.Errorf("replace house types: %w", err)
	}
	result.HouseTypesLoaded = n

	candidates := buildHistory(collected.Units)

	existing, err := p.store.HistoryKeys(ctx)
	if err != nil {
		return result, fmt.Errorf("load history keys: %w", err)
	}

	var fresh []models.HistoryLogEntry
	for _, e := range candidates {
		key := e.ProjectCode + "_" + e.ScrapedDate
		if _, seen := existing[key]; seen {
			result.HistorySkipped++
			continue
		}
		fresh = append(fresh, e)
	}

	appended, err := p.store.AppendHistory(ctx, fresh)
	if err != nil {
		return result, fmt.Errorf("append history: %w", err)
	}
	result.HistoryAppended = appended

	return result, nil
}

// buildHistory aggregates units into one entry per (project, date)
// group, preserving first-encounter order.
func buildHistory(units []models.Unit) []models.HistoryLogEntry {
	type groupKey struct {
		code, name, developer, date string
	}

	var order []groupKey
	groups := make(map[groupKey][]models.Unit)
	for _, u := range units {
		k := groupKey{u.ProjectCode, u.ProjectName, u.PemajuName, u.ScrapedDate}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], u)
	}

	entries := make([]models.HistoryLogEntry, 0, len(order))
	for _, k := range order {
		group := groups[k]

		var sold, bumi int
		var salesValue float64
		for _, u := range group {
			if isSold(u.Status) {
				sold++
				salesValue += cleanMoney(u.PriceSales)
			}
			if isBumi(u.BumiQuota) {
				bumi++
			}
		}

		// Stored raw: history_logs is append-only, so a rounded rate
		// could never be corrected later.
		total := len(group)
		takeUp := 0.0
		if total > 0 {
			takeUp = 100 * float64(sold) / float64(total)
		}

		entries = append(entries, models.HistoryLogEntry{
			ProjectCode:   k.code,
			ProjectName:   k.name,
			DeveloperName: k.developer,
			ScrapedDate:   k.date,
			TotalUnits:    total,
			UnitsSold:     sold,
			UnitsBumi:     bumi,
			UnitsUnsold:   total - sold,
			SalesValue:    salesValue,
			TakeUpRate:    takeUp,
		})
	}
	return entries
}

func isSold(status string) bool {
	return strings.Contains(strings.ToLower(status), soldMarker)
}

func isBumi(quota string) bool {
	return strings.TrimSpace(strings.ToLower(quota)) == "ya"
}

// cleanMoney parses portal price text ("RM 123,456.00") into a float,
// treating anything unparseable as zero.
func cleanMoney(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "RM", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0.0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return v
}

// ReportSink receives publish summaries.
type ReportSink interface {
	Report(ctx context.Context, result models.PublishResult) error
}

// PublishService is the daily publish entry point: collect today's
// snapshots, drive the publisher, and optionally report the outcome.
type PublishService struct {
	Collector *Collector
	Publisher *Publisher
	Sink      ReportSink // optional
	Now       func() time.Time
}

func NewPublishService(collector *Collector, publisher *Publisher, sink ReportSink) *PublishService {
	return &PublishService{
		Collector: collector,
		Publisher: publisher,
		Sink:      sink,
		Now:       time.Now,
	}
}

// Run publishes the snapshots tagged with today's date.
func (s *PublishService) Run(ctx context.Context) (models.PublishResult, error) {
	return s.RunDate(ctx, s.Now().Format("20060102"))
}

// RunDate publishes the snapshots carrying an explicit date tag,
// letting operators replay a past day.
func (s *PublishService) RunDate(ctx context.Context, dateTag string) (models.PublishResult, error) {
	collected, err := s.Collector.Collect(dateTag)
	if err != nil {
		return models.PublishResult{}, fmt.Errorf("collect %s: %w", dateTag, err)
	}
	log.Printf("Publish %s: %d files, %d units, %d projects, %d house types",
		dateTag, collected.FilesScanned, len(collected.Units), len(collected.Projects), len(collected.HouseTypes))

	result, err := s.Publisher.Publish(ctx, collected)
	if err != nil {
		return result, err
	}

	if result.Aborted {
		log.Printf("Publish aborted: %s", result.AbortReason)
	} else {
		log.Printf("Publish done: units=%d projects=%d house_types=%d history +%d / skipped %d",
			result.UnitsLoaded, result.ProjectsLoaded, result.HouseTypesLoaded,
			result.HistoryAppended, result.HistorySkipped)
	}

	if s.Sink != nil {
		if err := s.Sink.Report(ctx, result); err != nil {
			log.Printf("WARNING: publish report failed: %v", err)
		}
	}

	return result, nil
}
