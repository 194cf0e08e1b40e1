package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
	"github.com/jhoicas/panaderia-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/panaderia-pos/pkg/config"
	"github.com/jhoicas/panaderia-pos/pkg/logger"
	"github.com/jhoicas/panaderia-pos/pkg/rut"
)

type bootstrapOptions struct {
	enabled       bool
	companyName   string
	companyRUT    string
	adminEmail    string
	adminName     string
	adminPassword string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts bootstrapOptions
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el esquema de PostgreSQL y opcionalmente crea la primera empresa",
		Long: `migrate aplica el esquema embebido (idempotente). Con --bootstrap además crea
la empresa y su primer usuario administrador en una sola transacción.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.enabled, "bootstrap", false, "crear empresa y administrador")
	f.StringVar(&opts.companyName, "company-name", "", "razón social de la empresa")
	f.StringVar(&opts.companyRUT, "company-rut", "", "RUT de la empresa (ej. 76.354.321-8)")
	f.StringVar(&opts.adminEmail, "admin-email", "", "email del administrador")
	f.StringVar(&opts.adminName, "admin-name", "Administrador", "nombre del administrador")
	f.StringVar(&opts.adminPassword, "admin-password", "", "clave del administrador (mínimo 8 caracteres)")
	return cmd
}

func run(ctx context.Context, opts bootstrapOptions) error {
	log := logger.New(logger.Config{Env: "development", Level: "info", Component: "migrate"})

	pool, err := postgres.NewPool(ctx, config.LoadDB())
	if err != nil {
		return fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}
	log.Info().Msg("esquema aplicado")

	if !opts.enabled {
		return nil
	}
	company, admin, err := opts.build()
	if err != nil {
		return err
	}
	if err := postgres.Bootstrap(ctx, pool, company, admin); err != nil {
		return err
	}
	log.Info().
		Str("company_id", company.ID).
		Str("admin_email", admin.Email).
		Msg("empresa y administrador creados")
	return nil
}

func (o bootstrapOptions) build() (*entity.Company, *entity.Profile, error) {
	name := strings.TrimSpace(o.companyName)
	email := strings.ToLower(strings.TrimSpace(o.adminEmail))
	switch {
	case name == "":
		return nil, nil, fmt.Errorf("--company-name es obligatorio")
	case !rut.Validate(o.companyRUT) || rut.VerifyCheckDigit(o.companyRUT) != nil:
		return nil, nil, fmt.Errorf("--company-rut inválido: %q", o.companyRUT)
	case email == "":
		return nil, nil, fmt.Errorf("--admin-email es obligatorio")
	case len(o.adminPassword) < 8:
		return nil, nil, fmt.Errorf("--admin-password debe tener al menos 8 caracteres")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(o.adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now()
	company := &entity.Company{
		ID: uuid.New().String(), Name: name, RUT: rut.Clean(o.companyRUT),
		Status: "active", CreatedAt: now, UpdatedAt: now,
	}
	admin := &entity.Profile{
		ID: uuid.New().String(), CompanyID: company.ID, Email: email, PasswordHash: string(hash),
		FullName: o.adminName, Role: permission.RoleAdmin, Active: true, CreatedAt: now, UpdatedAt: now,
	}
	return company, admin, nil
}
