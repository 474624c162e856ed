// Package credentials resolves the personal access token used to
// authenticate the artifact tool against a service endpoint. No
// authentication protocol lives here; providers only look up an existing
// secret.
package credentials

import (
	"context"
	"fmt"
	"os"
)

// EnvKey is the variable checked by the environment provider.
const EnvKey = "UPACK_PAT"

// Credential is a secret usable as a password-equivalent for a service.
type Credential struct {
	Token string
}

// Provider resolves a credential for a service endpoint.
type Provider interface {
	Resolve(ctx context.Context, service string) (Credential, error)
}

// EnvProvider reads the token from the process environment.
type EnvProvider struct{}

func (EnvProvider) Resolve(_ context.Context, service string) (Credential, error) {
	token := os.Getenv(EnvKey)
	if token == "" {
		return Credential{}, fmt.Errorf("no credential for %s: %s is not set", service, EnvKey)
	}
	return Credential{Token: token}, nil
}

// StaticProvider maps service endpoints to tokens, typically loaded from the
// config file.
type StaticProvider map[string]string

func (p StaticProvider) Resolve(_ context.Context, service string) (Credential, error) {
	if token := p[service]; token != "" {
		return Credential{Token: token}, nil
	}
	return Credential{}, fmt.Errorf("no credential configured for %s", service)
}

// Chain tries each provider in order and returns the first credential found.
type Chain []Provider

func (c Chain) Resolve(ctx context.Context, service string) (Credential, error) {
	for _, provider := range c {
		if cred, err := provider.Resolve(ctx, service); err == nil {
			return cred, nil
		}
	}
	return Credential{}, fmt.Errorf("no credential available for %s", service)
}
