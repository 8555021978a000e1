package cmd

import (
	"sync"

	"anchor/worker"
	"anchor/worker/monitor"
	"anchor/worker/pricesync"
	"anchor/worker/storekeeper"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "anchor job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		system := provideSystem()
		conf := provideConfig()

		priceStore := providePriceStore(database)
		registry := provideRegistry(priceStore)
		eng := provideEngine(database, system)

		jobs := []worker.IJob{
			pricesync.New(conf, database, registry, priceStore, provideTickerService()),
			storekeeper.New(conf, priceStore),
		}

		for _, job := range jobs {
			job.Start()
			defer job.Stop()
		}

		workers := []worker.Worker{
			monitor.New(provideVaultStore(database), eng, providePropertyStore(database)),
		}

		wg := sync.WaitGroup{}
		for _, w := range workers {
			wg.Add(1)

			go func(worker worker.Worker) {
				defer wg.Done()
				worker.Run(ctx)
			}(w)
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
