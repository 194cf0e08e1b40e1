package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySubject el token no identifica a ningún usuario.
var ErrEmptySubject = errors.New("jwt: subject vacío")

// Claims del token de sesión. Solo identifica al usuario: el rol y la empresa
// se leen del perfil en cada request, nunca del token.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Identity identidad verificada extraída de un token válido.
type Identity struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// Generate genera un token de sesión firmado (HS256) para el usuario.
func Generate(secret, userID, email, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	if userID == "" {
		return "", ErrEmptySubject
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve la identidad.
// Retorna error si el token es inválido, expirado, tiene firma incorrecta o no trae subject.
func Parse(secret, tokenString string) (*Identity, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	if claims.Subject == "" {
		return nil, ErrEmptySubject
	}
	id := &Identity{Subject: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// Verifier valida tokens con un secret fijo. Implementa auth.TokenVerifier.
type Verifier struct {
	secret string
}

// NewVerifier construye el verificador.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify delega en Parse.
func (v *Verifier) Verify(token string) (*Identity, error) {
	return Parse(v.secret, token)
}
