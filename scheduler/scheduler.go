package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"prewalk_engine/config"
	"prewalk_engine/models"
	"prewalk_engine/services"
	"prewalk_engine/storage"
)

// Scheduler drives the daemon: periodic deal-snapshot refreshes plus a
// polling loop for queued commands.
type Scheduler struct {
	cfg      *config.Config
	syncer   *services.Syncer
	reporter *services.Reporter
	store    *storage.SQLiteStore
	cron     *cron.Cron
	ticker   *time.Ticker
	stopCh   chan struct{}
}

func New(cfg *config.Config, syncer *services.Syncer, reporter *services.Reporter, store *storage.SQLiteStore) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		syncer:   syncer,
		reporter: reporter,
		store:    store,
		cron:     cron.New(),
		stopCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)

	refresh := func() {
		if err := s.syncer.RefreshSnapshot(ctx); err != nil {
			log.Printf("Scheduled snapshot refresh error: %v", err)
		}
	}

	if s.cfg.Scheduler.Cron != "" {
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, refresh)
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Scheduler.Interval > 0 {
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					refresh()
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
	case models.CmdSyncDeals:
		return s.syncer.RefreshSnapshot(ctx)
	case models.CmdResolve:
		params, err := s.store.ParseCommandParams(cmd)
		if err != nil {
			return fmt.Errorf("parsing command params: %w", err)
		}
		if params.Address == "" {
			return fmt.Errorf("resolve command without address")
		}
		report := s.reporter.ResolveProperty(ctx, params.Address)
		log.Printf("Resolved %q: listing=%s neighborhood=%s neighbors=%d",
			params.Address, services.OrUnavailable(report.ListingID),
			services.OrUnavailable(report.Neighborhood), len(report.Neighbors))
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd.Command)
	}
}

// TriggerNow runs a snapshot refresh outside the schedule.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	return s.syncer.RefreshSnapshot(ctx)
}
