package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-pos/internal/application/analytics"
	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/inventory"
	"github.com/jhoicas/panaderia-pos/internal/application/production"
	"github.com/jhoicas/panaderia-pos/internal/application/sales"
	"github.com/jhoicas/panaderia-pos/internal/application/usecase"
	"github.com/jhoicas/panaderia-pos/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	UserUC       *usecase.UserUseCase
	SettingsUC   *usecase.SettingsUseCase
	ProductUC    *inventory.ProductUseCase
	SubmitUC     *sales.SubmitUseCase
	SalesUC      *sales.SalesUseCase
	ProductionUC *production.UseCase
	DashboardUC  *analytics.DashboardUseCase
	ExportUC     *analytics.ExportUseCase
	Session      SessionCookie
	Location     *time.Location
	Logger       *logger.Logger
}

// Router registra las rutas de la API. Toda ruta bajo /api lleva el token de sesión en
// Locals; cada caso de uso decide qué permisos exige.
func Router(app *fiber.App, deps RouterDeps) {
	errs := errorMapper{log: deps.Logger}
	api := app.Group("/api", SessionToken(deps.Session.Name))

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, deps.Session, errs)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/session", authHandler.Session)

	// Users
	userHandler := NewUserHandler(deps.UserUC, errs)
	users := api.Group("/users")
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Put("/:id/role", userHandler.ChangeRole)
	users.Post("/:id/deactivate", userHandler.Deactivate)
	users.Post("/:id/reactivate", userHandler.Reactivate)

	// Settings
	settingsHandler := NewSettingsHandler(deps.SettingsUC, errs)
	api.Get("/settings/company", settingsHandler.Get)
	api.Put("/settings/company", settingsHandler.Update)

	// Products e inventario
	productHandler := NewProductHandler(deps.ProductUC, errs)
	products := api.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Post("/:id/adjust", productHandler.AdjustStock)
	products.Get("/:id/movements", productHandler.Movements)

	// Sales
	saleHandler := NewSaleHandler(deps.SubmitUC, deps.SalesUC, deps.Location, errs)
	salesGroup := api.Group("/sales")
	salesGroup.Post("/", saleHandler.Submit)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.Get)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)
	salesGroup.Post("/:id/annul", saleHandler.Annul)

	// Recetas y producción
	productionHandler := NewProductionHandler(deps.ProductionUC, errs)
	recipes := api.Group("/recipes")
	recipes.Get("/", productionHandler.ListRecipes)
	recipes.Post("/", productionHandler.CreateRecipe)
	recipes.Get("/:id", productionHandler.GetRecipe)
	batches := api.Group("/production")
	batches.Get("/", productionHandler.ListProduction)
	batches.Post("/", productionHandler.Register)

	// Analytics
	analyticsHandler := NewAnalyticsHandler(deps.DashboardUC, deps.ExportUC, deps.Location, errs)
	analyticsGroup := api.Group("/analytics")
	analyticsGroup.Get("/dashboard", analyticsHandler.Dashboard)
	analyticsGroup.Get("/sales/export", analyticsHandler.ExportSales)
}
