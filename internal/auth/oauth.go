package auth

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/fitbit"

	"healthdash/internal/store"
)

// Scopes required for the dashboard. Premium biomarkers need the last four;
// sync treats those endpoints as optional when a scope was not granted.
var Scopes = []string{
	"activity",
	"heartrate",
	"sleep",
	"profile",
	"cardio_fitness",
	"respiratory_rate",
	"oxygen_saturation",
	"temperature",
}

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "http://localhost:8089/callback"
}

// NewOAuthConfig creates an oauth2.Config for the Fitbit endpoint
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     fitbit.Endpoint,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       Scopes,
	}
}

// AuthResult contains the token and Fitbit user from a successful login
type AuthResult struct {
	Token        *oauth2.Token
	FitbitUserID string
	Scope        string
}

// ExtractFitbitUserID reads the user_id Fitbit includes in token responses
func ExtractFitbitUserID(token *oauth2.Token) string {
	if id, ok := token.Extra("user_id").(string); ok {
		return id
	}
	return ""
}

// ExtractScope returns the granted scopes, falling back to the requested set
func ExtractScope(token *oauth2.Token) string {
	if scope, ok := token.Extra("scope").(string); ok && scope != "" {
		return scope
	}
	return strings.Join(Scopes, " ")
}

// TokenFromAuth converts stored credentials to an oauth2 token
func TokenFromAuth(a *store.Auth) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       a.ExpiresAt,
	}
}

// AuthFromResult converts a login result to the stored form
func AuthFromResult(r *AuthResult) *store.Auth {
	expiry := r.Token.Expiry
	if expiry.IsZero() {
		expiry = time.Now().Add(8 * time.Hour)
	}
	return &store.Auth{
		FitbitUserID: r.FitbitUserID,
		AccessToken:  r.Token.AccessToken,
		RefreshToken: r.Token.RefreshToken,
		Scope:        r.Scope,
		ExpiresAt:    expiry,
	}
}
