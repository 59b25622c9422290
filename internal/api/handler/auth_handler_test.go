package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/martijn/cmdgate/internal/api/dto"
)

func TestTokenEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	client, secret, err := env.authService.CreateClient(context.Background(), "test client")
	if err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}

	var resp dto.TokenResponse
	w := env.doJSON(t, http.MethodPost, "/auth/token", dto.TokenRequest{
		ClientID:     client.ID,
		ClientSecret: secret,
	}, &resp)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if resp.AccessToken == "" {
		t.Error("expected an access token")
	}
	if resp.TokenType != "bearer" {
		t.Errorf("TokenType = %q, want bearer", resp.TokenType)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", resp.ExpiresIn)
	}

	claims, err := env.authService.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("issued token failed validation: %v", err)
	}
	if claims.ClientID != client.ID {
		t.Errorf("ClientID = %q, want %q", claims.ClientID, client.ID)
	}
}

func TestTokenEndpointRejectsBadCredentials(t *testing.T) {
	env := setupTestEnv(t)

	client, _, err := env.authService.CreateClient(context.Background(), "test client")
	if err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}

	w := env.doJSON(t, http.MethodPost, "/auth/token", dto.TokenRequest{
		ClientID:     client.ID,
		ClientSecret: "wrong-secret",
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	w = env.doJSON(t, http.MethodPost, "/auth/token", map[string]string{"client_id": client.ID}, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d for a missing secret, want 400", w.Code)
	}
}
