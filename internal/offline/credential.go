package offline

import "context"

type credentialKey struct{}

// WithCredential adjunta a ctx el token de sesión del operador que registra la venta.
// Con token vacío devuelve ctx sin cambios y el Submitter usa su credencial propia.
func WithCredential(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, credentialKey{}, token)
}

// CredentialFrom devuelve el token adjuntado con WithCredential ("" si no hay).
func CredentialFrom(ctx context.Context) string {
	s, _ := ctx.Value(credentialKey{}).(string)
	return s
}
