package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/jhoicas/panaderia-pos/internal/interfaces/agent"
	"github.com/jhoicas/panaderia-pos/internal/offline"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API local y la sincronización automática",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = rt.close() }()
			return serve(ctx, rt)
		},
	}
}

func serve(ctx context.Context, rt *runtime) error {
	status := &agent.Status{}
	watcher := offline.NewWatcher(rt.client, rt.syncer, rt.queue, offline.WatcherConfig{
		Interval:   rt.cfg.Sync.Interval,
		MaxBackoff: rt.cfg.Sync.MaxBackoff,
	}, rt.log.Named("watcher"))
	watcher.OnChange(status.Set)

	service := offline.NewService(rt.client, rt.queue, rt.log.Named("sales"))
	app := fiber.New(fiber.Config{
		AppName:      rt.cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Minute, // POST /local/sync puede reenviar varias ventas
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": rt.cfg.App.Name, "online": status.Online()})
	})
	handler := agent.NewHandler(service, rt.queue, rt.syncer, status, rt.log.Named("local")).
		WithSessionCookie(rt.cfg.SessionCookie)
	agent.Router(app, handler)
	if !rt.queue.Durable() {
		rt.log.Warn().Msg("QUEUE_DRIVER=none: sin conexión las ventas se rechazan en vez de encolarse")
	}

	watchErr := make(chan error, 1)
	go func() { watchErr <- watcher.Run(ctx) }()

	listenErr := make(chan error, 1)
	go func() {
		rt.log.Info().Str("addr", rt.cfg.HTTP.Addr()).Str("server", rt.cfg.ServerURL).Msg("API local escuchando")
		listenErr <- app.Listen(rt.cfg.HTTP.Addr())
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-listenErr:
	}
	rt.log.Info().Msg("cerrando agente...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := app.ShutdownWithContext(shutdownCtx); serr != nil {
		rt.log.Error().Err(serr).Msg("apagado de la API local")
	}
	if ctx.Err() == nil {
		return err
	}
	if werr := <-watchErr; werr != nil && !errors.Is(werr, context.Canceled) {
		rt.log.Error().Err(werr).Msg("watcher")
	}
	rt.log.Info().Msg("agente detenido")
	return nil
}
