package monitor

import (
	"context"
	"sync"
	"time"

	"anchor/core"
	"anchor/internal/risk"
	"anchor/pkg/concurrency"
	"anchor/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
)

const checkpointKey = "vault_scan_checkpoint"

// Worker scans vaults in id order and logs liquidation candidates. The
// scan position survives restarts through the property store.
type Worker struct {
	worker.TickWorker
	vaults   core.IVaultStore
	engine   core.IEngine
	property property.Store
	batch    int
}

// New new vault monitor worker
func New(vaultStr core.IVaultStore, eng core.IEngine, propertyStr property.Store) *Worker {
	return &Worker{
		TickWorker: worker.TickWorker{
			Delay:    10 * time.Second,
			ErrDelay: time.Minute,
		},
		vaults:   vaultStr,
		engine:   eng,
		property: propertyStr,
		batch:    100,
	}
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "monitor")

	v, err := w.property.Get(ctx, checkpointKey)
	if err != nil {
		log.WithError(err).Errorf("read property error: %s", checkpointKey)
		return err
	}

	fromID := uint64(v.Int64())
	vaults, err := w.vaults.List(ctx, fromID, w.batch)
	if err != nil {
		log.WithError(err).Errorln("list vaults error")
		return err
	}

	if len(vaults) == 0 {
		// wrap around and start the next scan from the beginning
		if fromID > 0 {
			return w.property.Save(ctx, checkpointKey, 0)
		}

		return nil
	}

	wg := sync.WaitGroup{}
	for _, v := range vaults {
		if !v.Debt.IsPositive() {
			continue
		}

		wg.Add(1)
		concurrency.DefaultGoLimit.Add()
		go func(vault *core.Vault) {
			defer wg.Done()
			defer concurrency.DefaultGoLimit.Done()

			hf, err := w.engine.HealthFactor(ctx, vault.UserID)
			if err != nil {
				log.WithError(err).Errorln("health factor error:", vault.UserID)
				return
			}

			if !risk.IsHealthy(hf) {
				log.Infof("liquidation candidate: user %s health factor %s", vault.UserID, hf)
			}
		}(v)
	}

	wg.Wait()

	return w.property.Save(ctx, checkpointKey, vaults[len(vaults)-1].ID)
}
