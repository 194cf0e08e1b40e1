package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jhoicas/panaderia-pos/internal/infrastructure/blobstore"
	"github.com/jhoicas/panaderia-pos/internal/infrastructure/posclient"
	"github.com/jhoicas/panaderia-pos/internal/offline"
	"github.com/jhoicas/panaderia-pos/pkg/config"
	"github.com/jhoicas/panaderia-pos/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pos-agent",
		Short: "Agente de caja: registra ventas y las guarda offline si el servidor no responde",
		Long: `pos-agent corre junto a la caja. Expone una API local para registrar ventas;
si el servidor no está disponible las deja en una cola persistente y las reenvía
en orden cuando vuelve la conexión.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newSyncCmd(), newQueueCmd())
	return root
}

// runtime piezas compartidas por todos los subcomandos.
type runtime struct {
	cfg    *config.AgentConfig
	log    *logger.Logger
	client *posclient.Client
	queue  *offline.Queue
	syncer *offline.Syncer
	close  func() error
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadAgent()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{
		Env:       cfg.App.Env,
		Level:     cfg.App.LogLevel,
		Component: "pos-agent",
	})

	store, closeFn, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := posclient.New(cfg.ServerURL, cfg.Sync.HTTPTimeout, posclient.Credentials{
		Email:    cfg.Email,
		Password: cfg.Password,
		Token:    cfg.Token,
	}, log.Named("posclient"))
	queue := offline.NewQueue(store)
	return &runtime{
		cfg:    cfg,
		log:    log,
		client: client,
		queue:  queue,
		syncer: offline.NewSyncer(queue, client, cfg.Sync.EntryTimeout, log.Named("sync")),
		close:  closeFn,
	}, nil
}

// openStore abre el almacenamiento de la cola según QUEUE_DRIVER.
func openStore(ctx context.Context, cfg *config.AgentConfig) (offline.BlobStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Queue.Driver {
	case config.QueueDriverRedis:
		client := blobstore.NewRedisClient(cfg.Redis)
		store := blobstore.NewRedisStore(client, "panaderia:")
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		return store, store.Close, nil
	case config.QueueDriverNone:
		return nil, noop, nil
	default:
		store, err := blobstore.NewFileStore(filepath.Clean(cfg.Queue.Dir))
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	}
}
