// Package credential resolves bearer tokens from the deployment environment.
package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

const (
	// CognitiveServicesScope is the audience for Azure OpenAI and AI project endpoints
	CognitiveServicesScope = "https://cognitiveservices.azure.com/.default"
	// OSSRDBMSScope is the audience for Entra ID sign-in to Azure Database for PostgreSQL/MySQL
	OSSRDBMSScope = "https://ossrdbms-aad.database.windows.net/.default"
)

// TokenProvider returns a bearer token valid for scope
type TokenProvider interface {
	Token(ctx context.Context, scope string) (string, error)
}

// Azure adapts an azcore.TokenCredential. The underlying credential caches
// tokens until shortly before expiry.
type Azure struct {
	cred azcore.TokenCredential
}

// NewDefaultAzure uses the default chain: environment, workload identity,
// managed identity, Azure CLI and Azure Developer CLI
func NewDefaultAzure() (*Azure, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create default Azure credential: %w", err)
	}
	return &Azure{cred: cred}, nil
}

// NewManagedIdentity uses the user-assigned managed identity with clientID
func NewManagedIdentity(clientID string) (*Azure, error) {
	cred, err := azidentity.NewManagedIdentityCredential(&azidentity.ManagedIdentityCredentialOptions{
		ID: azidentity.ClientID(clientID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create managed identity credential: %w", err)
	}
	return &Azure{cred: cred}, nil
}

// FromTokenCredential wraps an existing azcore credential
func FromTokenCredential(cred azcore.TokenCredential) *Azure {
	return &Azure{cred: cred}
}

func (a *Azure) Token(ctx context.Context, scope string) (string, error) {
	tok, err := a.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{scope}})
	if err != nil {
		return "", fmt.Errorf("failed to acquire token for %s: %w", scope, err)
	}
	return tok.Token, nil
}

// Static always returns the same token
type Static string

func (s Static) Token(_ context.Context, _ string) (string, error) {
	if s == "" {
		return "", errors.New("static token is empty")
	}
	return string(s), nil
}
