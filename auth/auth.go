// Package auth resolves the access token used for sends. The token is
// either supplied statically or fetched from an OAuth2 client-credentials
// endpoint and refreshed when it expires.
package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Provider yields a valid access token.
type Provider interface {
	Token() (string, error)
}

// Static wraps a fixed, user-supplied token.
type Static struct {
	token string
}

// NewStatic returns a provider that always yields the given token.
func NewStatic(token string) Static { return Static{token: token} }

func (s Static) Token() (string, error) { return s.token, nil }

// ClientCred fetches tokens through the client-credentials flow.
type ClientCred struct {
	conf  clientcredentials.Config
	token *oauth2.Token
}

// NewClientCred creates a provider for the given endpoint configuration.
func NewClientCred(conf Conf) *ClientCred {
	return &ClientCred{conf: conf.toOauth2Config()}
}

// Token returns the cached token while it is valid and fetches a new one
// otherwise.
func (c *ClientCred) Token() (string, error) {
	if c.token != nil && c.token.Valid() {
		return c.token.AccessToken, nil
	}
	return c.ForceRefresh()
}

// ForceRefresh discards the cached token and fetches a fresh one.
func (c *ClientCred) ForceRefresh() (string, error) {
	var err error
	c.token, err = c.conf.Token(context.Background())
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return c.token.AccessToken, nil
}
