// Package onboarding provisions identities just in time. When a fingerprint
// verify arrives with external identifiers nobody has registered yet, the
// onboarding collaborator can mint a fresh identity for them.
package onboarding

import (
	"context"

	"custodia/internal/platform/httpclient"
	dErrors "custodia/pkg/domain-errors"
)

// Client is the HTTP client for the onboarding service.
type Client struct {
	http    *httpclient.Client
	baseURL string
}

func New(http *httpclient.Client, baseURL string) *Client {
	return &Client{http: http, baseURL: baseURL}
}

// CreateIdentity asks the onboarding service to mint an identity for the
// supplied external identifiers. A response without success means the service
// could not attribute them to a person.
func (c *Client) CreateIdentity(ctx context.Context, externalIDs map[string]string) (string, error) {
	var res struct {
		Success  bool   `json:"success"`
		Identity string `json:"identity"`
	}
	err := c.http.PostJSON(ctx, c.baseURL+"/v1/identities",
		map[string]any{"externalIds": externalIDs}, &res)
	if err != nil {
		return "", err
	}
	if !res.Success || res.Identity == "" {
		return "", dErrors.New(dErrors.CodeNotFound, "onboarding could not provision an identity")
	}
	return res.Identity, nil
}
