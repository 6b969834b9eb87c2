// Command tradecore runs the trading engine core as a standalone process:
// it wires an Engine with in-memory persistence and no venue/market-data
// adapters (those are out of this module's scope, see internal/ports),
// registers a couple of sample strategies, and serves until a shutdown
// signal arrives.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lukmusial/tradecore/internal/domain"
	"github.com/lukmusial/tradecore/internal/engine"
	"github.com/lukmusial/tradecore/internal/persistence"
	"github.com/lukmusial/tradecore/internal/strategy"
	"github.com/rs/zerolog"
)

func main() {
	ringCapacity := flag.Int("ring-capacity", 0, "ring buffer capacity, power of two (0 = engine default)")
	journalPath := flag.String("journal", "tradecore.journal", "path to the trade journal file")
	syncJournal := flag.Bool("sync-journal", false, "fsync the trade journal after every record")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	journal, err := persistence.NewFileTradeJournal(*journalPath, *syncJournal)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open trade journal")
	}
	defer journal.Close()

	cfg := engine.DefaultConfig()
	if *ringCapacity > 0 {
		cfg.RingCapacity = *ringCapacity
	}
	cfg.Journal = journal
	cfg.AuditLog = persistence.NewMemoryAuditLog()
	cfg.OrderRepo = persistence.NewMemoryOrderRepository()
	cfg.SnapshotStore = persistence.NewMemorySnapshotStore()

	e := engine.New(cfg, log)
	registerSampleStrategies(e, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := e.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start engine")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("received shutdown signal")

	if err := e.Shutdown(); err != nil {
		log.Error().Err(err).Msg("engine shutdown reported an error")
	}
	log.Info().Msg("tradecore stopped")
}

// registerSampleStrategies wires one momentum and one VWAP strategy against
// a demo symbol, mirroring the shape a real deployment's strategy-config
// loader would produce.
func registerSampleStrategies(e *engine.Engine, log zerolog.Logger) {
	sym := domain.NewSymbol("AAPL", domain.VenueNASDAQ)

	mom := strategy.NewMomentum("mom-aapl-1", strategy.MomentumParams{
		Symbol:          sym,
		ShortSpan:       12,
		LongSpan:        26,
		SignalThreshold: 0.001,
		MaxPositionSize: 500,
	}, 0)
	e.RegisterStrategy(mom)

	now := domain.MonotonicNow()
	vwap := strategy.NewVWAP("vwap-aapl-1", strategy.VWAPParams{
		Symbol:               sym,
		Side:                 domain.SideBuy,
		TargetQuantity:       2000,
		StartTime:            now,
		EndTime:              now + int64(30*time.Minute),
		MaxParticipationRate: 0.1,
		VolumeProfile:        []int64{100, 120, 90, 150, 200, 180, 140, 110, 95, 105},
	})
	e.RegisterStrategy(vwap)
	e.SetVolumeProfile(sym, []int64{100, 120, 90, 150, 200, 180, 140, 110, 95, 105})

	if err := mom.Start(); err != nil {
		log.Warn().Err(err).Msg("failed to start momentum strategy")
	}
	if err := vwap.Start(); err != nil {
		log.Warn().Err(err).Msg("failed to start vwap strategy")
	}
}
