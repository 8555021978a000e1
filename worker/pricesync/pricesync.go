package pricesync

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"anchor/core"
	"anchor/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/robfig/cron/v3"
)

// Worker pulls fresh quotes for every approved token and persists them
// so the store feeds always serve the newest round.
type Worker struct {
	worker.BaseJob
	Config        *core.Config
	DB            *db.DB
	Registry      *core.Registry
	PriceStore    core.IPriceStore
	TickerService core.IPriceTickerService
}

// New new price sync worker
func New(cfg *core.Config, database *db.DB, registry *core.Registry, priceStr core.IPriceStore, tickerSrv core.IPriceTickerService) *Worker {
	job := Worker{
		Config:        cfg,
		DB:            database,
		Registry:      registry,
		PriceStore:    priceStr,
		TickerService: tickerSrv,
	}

	l, _ := time.LoadLocation(job.Config.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 10s"
	job.Cron.AddFunc(spec, job.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "pricesync")

	wg := sync.WaitGroup{}
	for _, t := range w.Registry.Tokens() {
		wg.Add(1)
		go func(token *core.Token) {
			defer wg.Done()

			ticker, err := w.TickerService.PullPriceTicker(ctx, token.Symbol)
			if err != nil {
				log.WithError(err).Errorln("pull price ticker error:", token.Symbol)
				return
			}

			w.savePrice(ctx, token, ticker)
		}(t)
	}

	wg.Wait()

	return nil
}

func (w *Worker) savePrice(ctx context.Context, token *core.Token, ticker *core.PriceTicker) {
	log := logger.FromContext(ctx).WithField("worker", "pricesync")

	content, err := json.Marshal(ticker)
	if err != nil {
		log.WithError(err).Errorln("marshal ticker error")
		return
	}

	price := &core.Price{
		AssetID:   token.AssetID,
		Price:     ticker.Price,
		Content:   types.JSONText(content),
		CreatedAt: time.Now(),
	}

	err = w.DB.Tx(func(tx *db.DB) error {
		return w.PriceStore.Create(ctx, tx, price)
	})
	if err != nil {
		log.WithError(err).Errorln("save price error:", token.Symbol)
	}
}
