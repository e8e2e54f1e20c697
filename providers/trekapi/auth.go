package trekapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"jamjam-trek/models"
)

// ErrInvalidCredentials wird geliefert, wenn der Login kein Token ergibt.
var ErrInvalidCredentials = errors.New("trekapi: invalid credentials")

// CredentialsError trägt die Meldung des Servers bei fehlgeschlagenem Login.
type CredentialsError struct {
	Message string
}

func (e *CredentialsError) Error() string {
	return e.Message
}

func (e *CredentialsError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

// loginResponse ist die Antwort von POST /login.
type loginResponse struct {
	Status  models.Flag `json:"status"`
	Token   string      `json:"token"`
	Message string      `json:"message"`
	User    any         `json:"user,omitempty"`
}

// LoginResult ist ein erfolgreicher Login.
type LoginResult struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
	User    any    `json:"user,omitempty"`
}

// Login meldet einen Admin an. Erfolg setzt einen wahren status und ein Token voraus.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := c.Logger.With(zap.String("email", email))

	body, err := c.sendJSON(ctx, http.MethodPost, "/login", "/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		log.Info("Login abgelehnt", zap.Error(err))
		return nil, withFallback(err, "Login failed")
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Warn("Login-Antwort ist kein gültiges JSON", zap.Error(err))
		return nil, fmt.Errorf("Login failed: invalid response from trek API: %w", err)
	}
	if !bool(resp.Status) || resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Invalid email or password"
		}
		log.Info("Login ohne Token", zap.String("message", msg))
		return nil, &CredentialsError{Message: msg}
	}

	log.Info("Admin angemeldet")
	return &LoginResult{Token: resp.Token, Message: resp.Message, User: resp.User}, nil
}

// Logout meldet die gebundene Session ab.
func (c *Client) Logout(ctx context.Context) error {
	if !c.session.Valid() {
		return ErrNoSession
	}
	if _, err := c.sendJSON(ctx, http.MethodPost, "/logout", "/logout", nil); err != nil {
		return withFallback(err, "Logout failed")
	}
	return nil
}

// Me liefert den angemeldeten Benutzer unverändert zurück.
func (c *Client) Me(ctx context.Context) (any, error) {
	if !c.session.Valid() {
		return nil, ErrNoSession
	}
	return c.passThrough(ctx, "/me", "Failed to fetch user")
}
