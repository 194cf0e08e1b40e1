// Package posclient es el cliente HTTP del agente POS contra la API del servidor.
package posclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jhoicas/panaderia-pos/internal/application/dto"
	"github.com/jhoicas/panaderia-pos/internal/offline"
	"github.com/jhoicas/panaderia-pos/pkg/logger"
)

// Credentials con Token se usa directamente; si no, se hace login con Email/Password.
type Credentials struct {
	Email    string
	Password string
	Token    string
}

// Client implementa offline.Submitter y offline.HealthChecker.
// Los POST no se reintentan a nivel HTTP: el reintento lo decide la cola.
type Client struct {
	http  *resty.Client
	creds Credentials
	log   *logger.Logger

	mu    sync.Mutex
	token string
}

// New construye el cliente.
func New(baseURL string, timeout time.Duration, creds Credentials, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: rc, creds: creds, log: log, token: creds.Token}
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) canLogin() bool {
	return c.creds.Email != "" && c.creds.Password != ""
}

// Login obtiene un token nuevo con las credenciales configuradas.
func (c *Client) Login(ctx context.Context) error {
	if !c.canLogin() {
		return fmt.Errorf("posclient: no hay credenciales para login")
	}
	var out dto.LoginResponse
	var errBody dto.ErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(dto.LoginRequest{Email: c.creds.Email, Password: c.creds.Password}).
		SetResult(&out).
		SetError(&errBody).
		Post("/api/auth/login")
	if err := classify(resp, err, &errBody); err != nil {
		return fmt.Errorf("posclient: login: %w", err)
	}
	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	c.log.Info().Str("user_id", out.User.ID).Msg("sesión POS iniciada")
	return nil
}

// Health sondea GET /health. Cualquier falla se reporta como ErrConnectivity.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("posclient: health: %w: %v", offline.ErrConnectivity, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("posclient: health status %d: %w", resp.StatusCode(), offline.ErrConnectivity)
	}
	return nil
}

// SubmitSale envía POST /api/sales. Si ctx trae la credencial del operador
// (offline.WithCredential) la venta va a su nombre y un 401 se reporta tal cual: la
// sesión del operador venció y el agente no la reemplaza por la suya.
// Sin credencial del operador se usa la del agente; un 401 con credenciales
// configuradas provoca un login y un único reintento.
func (c *Client) SubmitSale(ctx context.Context, payload dto.SubmitSaleRequest) (*dto.SaleCreatedResponse, error) {
	if tok := offline.CredentialFrom(ctx); tok != "" {
		out, _, err := c.postSale(ctx, tok, payload)
		return out, err
	}

	if c.currentToken() == "" && c.canLogin() {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
	}

	out, status, err := c.postSale(ctx, c.currentToken(), payload)
	if status == http.StatusUnauthorized && c.canLogin() {
		if lerr := c.Login(ctx); lerr != nil {
			return nil, lerr
		}
		out, _, err = c.postSale(ctx, c.currentToken(), payload)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) postSale(ctx context.Context, token string, payload dto.SubmitSaleRequest) (*dto.SaleCreatedResponse, int, error) {
	var out dto.SaleCreatedResponse
	var errBody dto.ErrorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(payload).
		SetResult(&out).
		SetError(&errBody).
		Post("/api/sales")
	if err := classify(resp, err, &errBody); err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode()
		}
		return nil, status, fmt.Errorf("posclient: enviar venta: %w", err)
	}
	return &out, resp.StatusCode(), nil
}

// classify traduce la respuesta a la taxonomía de la cola: transporte y 5xx son
// ErrConnectivity; el resto de 4xx es *offline.RejectedError.
func classify(resp *resty.Response, err error, body *dto.ErrorResponse) error {
	if err != nil {
		return fmt.Errorf("%w: %v", offline.ErrConnectivity, err)
	}
	status := resp.StatusCode()
	switch {
	case status >= 500:
		return fmt.Errorf("%w: status %d", offline.ErrConnectivity, status)
	case status >= 400:
		rej := &offline.RejectedError{Status: status, Code: body.Code, Message: body.Message, Fields: body.Fields}
		if rej.Code == "" {
			rej.Code = http.StatusText(status)
		}
		return rej
	}
	return nil
}
