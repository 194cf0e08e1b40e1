package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/panaderia-pos/internal/application/auth"
	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/application/validation"
	"github.com/jhoicas/panaderia-pos/internal/domain"
	"github.com/jhoicas/panaderia-pos/internal/domain/entity"
	"github.com/jhoicas/panaderia-pos/internal/domain/permission"
	"github.com/jhoicas/panaderia-pos/internal/infrastructure/memory"
	"github.com/jhoicas/panaderia-pos/pkg/jwt"
)

const secret = "test-secret"

func newGate(t *testing.T) (*auth.Gate, *memory.DB) {
	t.Helper()
	db := memory.NewDB()
	db.PutCompany(entity.Company{ID: "c1", Name: "Panadería"})
	db.PutProfile(entity.Profile{ID: "admin", CompanyID: "c1", Email: "admin@pan.cl", Role: permission.RoleAdmin, Active: true})
	db.PutProfile(entity.Profile{ID: "caja", CompanyID: "c1", Email: "caja@pan.cl", Role: permission.RoleCajero, Active: true})
	db.PutProfile(entity.Profile{ID: "horno", CompanyID: "c1", Email: "horno@pan.cl", Role: permission.RolePanadero, Active: true})
	db.PutProfile(entity.Profile{ID: "baja", CompanyID: "c1", Email: "baja@pan.cl", Role: permission.RoleAdmin, Active: false})
	return auth.NewGate(jwt.NewVerifier(secret), db, db), db
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := jwt.Generate(secret, userID, userID+"@pan.cl", "test", 60)
	require.NoError(t, err)
	return tok
}

func TestValidateRequest_SinTokenNoAutenticado(t *testing.T) {
	gate, _ := newGate(t)
	_, err := gate.ValidateRequest(context.Background(), "", permission.InventoryView)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = gate.ValidateRequest(context.Background(), "no-es-un-jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestValidateRequest_TokenDeOtroSecretNoAutenticado(t *testing.T) {
	gate, _ := newGate(t)
	tok, err := jwt.Generate("otro-secret", "admin", "", "test", 60)
	require.NoError(t, err)
	_, err = gate.ValidateRequest(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestValidateRequest_SinPerfil(t *testing.T) {
	gate, _ := newGate(t)
	_, err := gate.ValidateRequest(context.Background(), token(t, "fantasma"))
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestValidateRequest_UsuarioInactivo(t *testing.T) {
	gate, _ := newGate(t)
	_, err := gate.ValidateRequest(context.Background(), token(t, "baja"))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestValidateRequest_PanaderoNoPuedeVender(t *testing.T) {
	gate, _ := newGate(t)
	_, err := gate.ValidateRequest(context.Background(), token(t, "horno"), permission.SalesCreate)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPermissionDenied))

	var denied *domain.PermissionDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, "sales.create", denied.Permission)
}

func TestValidateRequest_CajeroVende(t *testing.T) {
	gate, _ := newGate(t)
	ac, err := gate.ValidateRequest(context.Background(), token(t, "caja"), permission.SalesCreate, permission.InventoryView)
	require.NoError(t, err)
	assert.Equal(t, "caja", ac.CallerID)
	assert.Equal(t, "c1", ac.Store.TenantID())
	assert.False(t, ac.Can(permission.SalesViewAll))
	assert.True(t, ac.Can(permission.SalesViewOwn))
}

func TestValidateRequest_UnPermisoFaltanteDeniegaTodo(t *testing.T) {
	gate, _ := newGate(t)
	_, err := gate.ValidateRequest(context.Background(), token(t, "caja"), permission.SalesCreate, permission.UsersManage)
	var denied *domain.PermissionDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, "users.manage", denied.Permission)
}

func TestValidateRequest_CambioDeRolRigeEnSiguienteRequest(t *testing.T) {
	gate, db := newGate(t)
	tok := token(t, "horno")
	_, err := gate.ValidateRequest(context.Background(), tok, permission.SalesCreate)
	require.ErrorIs(t, err, domain.ErrPermissionDenied)

	db.PutProfile(entity.Profile{ID: "horno", CompanyID: "c1", Email: "horno@pan.cl", Role: permission.RoleCajero, Active: true})
	_, err = gate.ValidateRequest(context.Background(), tok, permission.SalesCreate)
	assert.NoError(t, err)
}

func TestValidateAny(t *testing.T) {
	gate, _ := newGate(t)
	_, err := gate.ValidateAny(context.Background(), token(t, "caja"), permission.SalesViewAll, permission.SalesViewOwn)
	assert.NoError(t, err)

	_, err = gate.ValidateAny(context.Background(), token(t, "horno"), permission.SalesViewAll, permission.SalesViewOwn)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = gate.ValidateAny(context.Background(), token(t, "admin"))
	assert.ErrorIs(t, err, domain.ErrPermissionDenied, "lista vacía deniega")
}

func TestLoginYSesion(t *testing.T) {
	gate, db := newGate(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	db.PutProfile(entity.Profile{ID: "ana", CompanyID: "c1", Email: "ana@pan.cl", PasswordHash: string(hash), Role: permission.RoleCajero, Active: true})

	uc := auth.NewAuthUseCase(db, gate, validation.New(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "test"})

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "ana@pan.cl", Password: "malo"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@pan.cl", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	res, err := uc.Login(context.Background(), dto.LoginRequest{Email: " ANA@pan.cl ", Password: "secreto123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "cajero", res.User.Role)

	sess, err := uc.Session(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana", sess.User.ID)
	assert.Contains(t, sess.Permissions, "sales.create")
	assert.NotContains(t, sess.Permissions, "users.manage")
}
