package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/panaderia-pos/internal/application/analytics"
	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/inventory"
	"github.com/jhoicas/panaderia-pos/internal/application/production"
	"github.com/jhoicas/panaderia-pos/internal/application/sales"
	"github.com/jhoicas/panaderia-pos/internal/application/usecase"
	"github.com/jhoicas/panaderia-pos/internal/application/validation"
	"github.com/jhoicas/panaderia-pos/internal/domain/repository"
	"github.com/jhoicas/panaderia-pos/internal/infrastructure/excel"
	"github.com/jhoicas/panaderia-pos/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/panaderia-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/panaderia-pos/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/panaderia-pos/internal/interfaces/http"
	"github.com/jhoicas/panaderia-pos/pkg/config"
	"github.com/jhoicas/panaderia-pos/pkg/jwt"
	"github.com/jhoicas/panaderia-pos/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// backend fuente de perfiles y stores por empresa (postgres o memoria).
type backend interface {
	repository.ProfileDirectory
	repository.StoreProvider
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:       cfg.App.Env,
		Level:     cfg.App.LogLevel,
		Component: "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	var db backend
	switch cfg.App.StoreDriver {
	case config.StoreDriverMemory:
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.App.DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("hash de la clave de demostración")
		}
		mem := memory.NewDB()
		memory.SeedDemo(mem, string(hash))
		db = mem
		log.Warn().Msg("usando almacenamiento en memoria con datos de demostración")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		db = postgres.NewProvider(pool)
	}

	loc := cfg.App.Location()
	validate := validation.New()
	gate := auth.NewGate(jwt.NewVerifier(cfg.JWT.Secret), db, db)

	authUC := auth.NewAuthUseCase(db, gate, validate, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Panadería POS API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		UserUC:       usecase.NewUserUseCase(gate, validate),
		SettingsUC:   usecase.NewSettingsUseCase(gate, validate),
		ProductUC:    inventory.NewProductUseCase(gate, validate),
		SubmitUC:     sales.NewSubmitUseCase(gate, validate),
		SalesUC:      sales.NewSalesUseCase(gate, infrapdf.NewReceiptGenerator()),
		ProductionUC: production.NewUseCase(gate, validate),
		DashboardUC:  analytics.NewDashboardUseCase(gate).InLocation(loc),
		ExportUC:     analytics.NewExportUseCase(gate, excel.NewSalesExporter(loc)),
		Session: httpRouter.SessionCookie{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.Secure,
		},
		Location: loc,
		Logger:   log.Named("api"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
