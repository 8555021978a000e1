package storekeeper

import (
	"context"
	"time"

	"anchor/core"
	"anchor/worker"

	"github.com/robfig/cron/v3"
)

// Worker trims old oracle quotes; only the latest rounds matter.
type Worker struct {
	worker.BaseJob
	Config     *core.Config
	PriceStore core.IPriceStore
}

// New new store keeper worker
func New(config *core.Config, priceStr core.IPriceStore) *Worker {
	job := Worker{
		Config:     config,
		PriceStore: priceStr,
	}

	l, _ := time.LoadLocation(job.Config.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 600s"
	job.Cron.AddFunc(spec, job.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	checkPoint := time.Now().AddDate(0, 0, -2)
	return w.PriceStore.DeleteBefore(ctx, checkPoint)
}
