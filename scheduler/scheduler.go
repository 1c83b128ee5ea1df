package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"teduh_scraper/config"
	"teduh_scraper/models"
	"teduh_scraper/services"
	"teduh_scraper/storage"
)

// Triggerable allows workers to be triggered manually
type Triggerable interface {
	Trigger()
}

// Scheduler drives the two phases on their cron expressions and
// processes operator commands dropped into the ledger.
type Scheduler struct {
	cfg        *config.Config
	extraction *services.ExtractionService
	publish    *services.PublishService
	store      *storage.SQLiteStore
	cron       *cron.Cron
	ticker     *time.Ticker
	stopCh     chan struct{}

	archiveWorker Triggerable
}

func New(cfg *config.Config, extraction *services.ExtractionService, publish *services.PublishService, store *storage.SQLiteStore) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		extraction: extraction,
		publish:    publish,
		store:      store,
		cron:       cron.New(),
		stopCh:     make(chan struct{}),
	}
}

// SetArchiveWorker registers the archive worker for manual triggering.
func (s *Scheduler) SetArchiveWorker(w Triggerable) {
	s.archiveWorker = w
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)

	scheduled := false

	if s.cfg.Scheduler.ScrapeCron != "" {
		log.Printf("Scrape schedule: %s", s.cfg.Scheduler.ScrapeCron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.ScrapeCron, func() {
			if err := s.extraction.RunAll(); err != nil {
				log.Printf("Scheduled extraction error: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid scrape cron expression: %w", err)
		}
		scheduled = true
	}

	if s.cfg.Scheduler.PublishCron != "" && s.publish != nil {
		log.Printf("Publish schedule: %s", s.cfg.Scheduler.PublishCron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.PublishCron, func() {
			if _, err := s.publish.Run(ctx); err != nil {
				log.Printf("Scheduled publish error: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid publish cron expression: %w", err)
		}
		scheduled = true
	}

	if scheduled {
		s.cron.Start()
	} else if s.cfg.Scheduler.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					if err := s.extraction.RunAll(); err != nil {
						log.Printf("Scheduled extraction error: %v", err)
					}
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("No schedule configured, daemon will only respond to commands")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds, err := s.store.GetPendingCommands()
			if err != nil {
				log.Printf("Error getting commands: %v", err)
				continue
			}

			for _, cmd := range cmds {
				log.Printf("Processing command: %s", cmd.Command)
				if err := s.handleCommand(ctx, &cmd); err != nil {
					log.Printf("Command error: %v", err)
				}
				if err := s.store.MarkCommandProcessed(cmd.ID); err != nil {
					log.Printf("Error marking command processed: %v", err)
				}
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	switch cmd.Command {
	case models.CmdScrapeNow:
		return s.extraction.RunAll()
	case models.CmdScrapePemaju:
		params, err := s.store.ParseCommandParams(cmd)
		if err != nil {
			return fmt.Errorf("parse params: %w", err)
		}
		if params.Developer == "" {
			return fmt.Errorf("scrape_pemaju command without developer")
		}
		return s.extraction.RunDeveloper(params.Developer)
	case models.CmdPublishNow:
		if s.publish == nil {
			return fmt.Errorf("publish not configured")
		}
		params, err := s.store.ParseCommandParams(cmd)
		if err != nil {
			return fmt.Errorf("parse params: %w", err)
		}
		if params.DateTag != "" {
			_, err = s.publish.RunDate(ctx, params.DateTag)
		} else {
			_, err = s.publish.Run(ctx)
		}
		return err
	case models.CmdRunArchive:
		if s.archiveWorker != nil {
			s.archiveWorker.Trigger()
			log.Println("Archive worker triggered via command")
		}
		return nil
	case models.CmdPause:
		s.extraction.Pause()
		log.Println("Extraction paused")
		return nil
	case models.CmdResume:
		s.extraction.Resume()
		log.Println("Extraction resumed")
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd.Command)
	}
}
