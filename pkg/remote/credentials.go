package remote

import (
	"context"
	"net/url"
)

// ListCredentials returns every credential summary the remote API key can
// see. Credential secrets are never returned by the remote platform; only
// id/name/type.
func (c *Client) ListCredentials(ctx context.Context) ([]CredentialSummary, error) {
	var out []CredentialSummary
	if err := c.doJSON(ctx, "GET", "/credentials", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCredentialTypeSchema fetches the field schema for a credential type,
// used to validate or prompt for credential data before creation.
func (c *Client) GetCredentialTypeSchema(ctx context.Context, credType string) (*CredentialTypeSchema, error) {
	var out CredentialTypeSchema
	if err := c.doJSON(ctx, "GET", "/credentials/schema/"+url.PathEscape(credType), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCredential creates a credential of the given type from data.
func (c *Client) CreateCredential(ctx context.Context, name, credType string, data map[string]any) (*CredentialSummary, error) {
	body := map[string]any{"name": name, "type": credType, "data": data}
	var out CredentialSummary
	if err := c.doJSON(ctx, "POST", "/credentials", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCredential replaces the name/data of the credential at id.
func (c *Client) UpdateCredential(ctx context.Context, id, name string, data map[string]any) (*CredentialSummary, error) {
	body := map[string]any{"name": name, "data": data}
	var out CredentialSummary
	if err := c.doJSON(ctx, "PUT", "/credentials/"+url.PathEscape(id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCredential removes the credential at id.
func (c *Client) DeleteCredential(ctx context.Context, id string) error {
	return c.doJSON(ctx, "DELETE", "/credentials/"+url.PathEscape(id), nil, nil, nil)
}
