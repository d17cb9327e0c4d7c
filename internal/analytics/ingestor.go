package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/booomerangs/relay-api/internal/store"
	"github.com/booomerangs/relay-api/internal/store/model"
)

// Ingestor handles the asynchronous persistence of dispatch logs.
type Ingestor interface {
	Log(log *model.DispatchLog)
	Start(ctx context.Context)
	Stop()
}

type ingestor struct {
	logger    *zap.Logger
	repo      store.Repository
	logChan   chan *model.DispatchLog
	batchSize int
	flushTime time.Duration
}

func NewIngestor(logger *zap.Logger, repo store.Repository) Ingestor {
	return &ingestor{
		logger:    logger,
		repo:      repo,
		logChan:   make(chan *model.DispatchLog, 10000),
		batchSize: 50,
		flushTime: 5 * time.Second,
	}
}

func (i *ingestor) Log(log *model.DispatchLog) {
	select {
	case i.logChan <- log:
	default:
		i.logger.Warn("Analytics buffer full, dropping log", zap.String("dispatch_id", log.ID))
	}
}

func (i *ingestor) Start(ctx context.Context) {
	go i.worker(ctx)
}

func (i *ingestor) Stop() {
	close(i.logChan)
}

func (i *ingestor) worker(ctx context.Context) {
	batch := make([]*model.DispatchLog, 0, i.batchSize)
	ticker := time.NewTicker(i.flushTime)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		for _, log := range batch {
			if err := i.repo.Dispatches().Log(context.Background(), log); err != nil {
				i.logger.Error("Failed to persist dispatch log", zap.String("id", log.ID), zap.Error(err))
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case log, ok := <-i.logChan:
			if !ok {
				flush()
				return
			}
			batch = append(batch, log)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			flush()
			return
		}
	}
}

// Nop returns an ingestor that drops everything. Used by tests and by the
// benchmark harness when no store is wired.
func Nop() Ingestor {
	return nopIngestor{}
}

type nopIngestor struct{}

func (nopIngestor) Log(*model.DispatchLog) {}
func (nopIngestor) Start(context.Context)  {}
func (nopIngestor) Stop()                  {}
