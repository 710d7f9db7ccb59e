package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ifuryst/reelcheck/internal/config"
	"github.com/ifuryst/reelcheck/internal/metrics"
	"github.com/ifuryst/reelcheck/internal/service/airtable"
	"github.com/ifuryst/reelcheck/internal/service/review"
)

const probeTimeout = 15 * time.Second

// StoreProbe periodically checks that the record store answers and exports
// the result as a gauge.
type StoreProbe struct {
	config *config.ProbeConfig
	logger *zap.Logger
	table  review.Table
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	mu sync.Mutex
	up *bool
}

func NewStoreProbe(cfg *config.ProbeConfig, logger *zap.Logger, table review.Table) *StoreProbe {
	return &StoreProbe{
		config: cfg,
		logger: logger,
		table:  table,
		stopCh: make(chan struct{}),
	}
}

func (p *StoreProbe) Start(ctx context.Context) error {
	if !p.config.Enabled {
		p.logger.Info("Record store probe is disabled")
		return nil
	}

	interval, err := time.ParseDuration(p.config.Interval)
	if err != nil {
		p.logger.Error("Invalid probe interval", zap.String("interval", p.config.Interval), zap.Error(err))
		return err
	}

	p.logger.Info("Starting record store probe", zap.String("interval", p.config.Interval))
	p.ticker = time.NewTicker(interval)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		// Run first check immediately
		_ = p.Check(ctx)

		for {
			select {
			case <-p.ticker.C:
				_ = p.Check(ctx)
			case <-p.stopCh:
				p.logger.Info("Record store probe stopped")
				return
			case <-ctx.Done():
				p.logger.Info("Record store probe context cancelled")
				return
			}
		}
	}()

	return nil
}

func (p *StoreProbe) Stop() {
	p.once.Do(func() {
		if p.ticker != nil {
			p.ticker.Stop()
		}
		close(p.stopCh)
	})
	p.wg.Wait()
}

// Check lists a single record and updates the gauge. State changes are
// logged; steady state is not.
func (p *StoreProbe) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	_, err := p.table.List(ctx, airtable.ListOptions{MaxRecords: 1})
	up := err == nil

	if up {
		metrics.StoreUp.Set(1)
	} else {
		metrics.StoreUp.Set(0)
	}

	p.mu.Lock()
	changed := p.up == nil || *p.up != up
	p.up = &up
	p.mu.Unlock()

	if changed {
		if up {
			p.logger.Info("Record store reachable", zap.Duration("duration", time.Since(start)))
		} else {
			p.logger.Error("Record store unreachable", zap.Duration("duration", time.Since(start)), zap.Error(err))
		}
	}
	return err
}

// Up reports the result of the last check and whether one has run yet.
func (p *StoreProbe) Up() (up, known bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.up == nil {
		return false, false
	}
	return *p.up, true
}
