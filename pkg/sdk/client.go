package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// MaxUploadFiles caps how many documents a single upload may carry.
const MaxUploadFiles = 3

// Client provides typed access to the admin API. Every call goes through the
// Gateway, so a rejected credential ends the session like any other call.
type Client struct {
	gateway *Gateway
}

// NewClient creates a Client over gateway.
func NewClient(gateway *Gateway) *Client {
	return &Client{gateway: gateway}
}

// Gateway returns the underlying Gateway for untyped calls.
func (c *Client) Gateway() *Gateway {
	return c.gateway
}

// ListSites returns every site. The server may answer with a bare array or
// with {"sites": [...]}.
func (c *Client) ListSites(ctx context.Context) ([]Site, error) {
	raw, err := c.gateway.Request(ctx, "/admin/sites", RequestOptions{})
	if err != nil {
		return nil, err
	}

	var sites []Site
	if err := json.Unmarshal(raw, &sites); err == nil {
		return sites, nil
	}

	var envelope struct {
		Sites []Site `json:"sites"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &Error{Kind: KindInvalidResponse, Message: "unexpected sites response", Body: string(raw), Err: err}
	}
	return envelope.Sites, nil
}

// GetSiteAI returns the AI configuration for a site, with defaults applied
// for values the site does not override.
func (c *Client) GetSiteAI(ctx context.Context, siteID ID) (*AISettings, error) {
	if siteID == "" {
		return nil, fmt.Errorf("site ID is required")
	}
	settings, err := Do[AISettings](ctx, c.gateway, sitePath(siteID, "ai"), RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSiteAI replaces the AI configuration of a site.
func (c *Client) UpdateSiteAI(ctx context.Context, siteID ID, settings AISettings) error {
	if siteID == "" {
		return fmt.Errorf("site ID is required")
	}
	_, err := c.gateway.Request(ctx, sitePath(siteID, "ai"), RequestOptions{
		Method: http.MethodPut,
		Body:   settings,
	})
	return err
}

// GetSettings returns the global configuration.
func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	settings, err := Do[Settings](ctx, c.gateway, "/admin/settings", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings replaces the global configuration.
func (c *Client) UpdateSettings(ctx context.Context, settings Settings) error {
	_, err := c.gateway.Request(ctx, "/admin/settings", RequestOptions{
		Method: http.MethodPut,
		Body:   settings,
	})
	return err
}

// ListConversations returns recorded visitor conversations.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	return Do[[]Conversation](ctx, c.gateway, "/admin/conversations", RequestOptions{})
}

// ListMessages returns the messages of one conversation, oldest first.
func (c *Client) ListMessages(ctx context.Context, conversationID ID) ([]Message, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation ID is required")
	}
	path := "/admin/conversations/" + url.PathEscape(conversationID.String()) + "/messages"
	return Do[[]Message](ctx, c.gateway, path, RequestOptions{})
}

// SaveSiteSetup stores onboarding answers for a site.
func (c *Client) SaveSiteSetup(ctx context.Context, siteID ID, answers map[string]string) error {
	if siteID == "" {
		return fmt.Errorf("site ID is required")
	}
	_, err := c.gateway.Request(ctx, sitePath(siteID, "setup"), RequestOptions{
		Method: http.MethodPost,
		Body:   answers,
	})
	return err
}

// UploadFile is a document attached to a site's knowledge base.
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// UploadSiteDocs sends up to MaxUploadFiles documents as multipart form data.
func (c *Client) UploadSiteDocs(ctx context.Context, siteID ID, files []UploadFile) error {
	if siteID == "" {
		return fmt.Errorf("site ID is required")
	}
	body, err := MultipartBody("files", files)
	if err != nil {
		return err
	}
	_, err = c.gateway.Request(ctx, sitePath(siteID, "docs"), RequestOptions{
		Method: http.MethodPost,
		Body:   body,
	})
	return err
}

// GetClientSetupInfo resolves a public onboarding link. No session is needed.
func (c *Client) GetClientSetupInfo(ctx context.Context, setupToken string) (*ClientSetupInfo, error) {
	if setupToken == "" {
		return nil, fmt.Errorf("setup token is required")
	}
	raw, err := c.gateway.PublicRequest(ctx, "/client/setup/"+url.PathEscape(setupToken), RequestOptions{})
	if err != nil {
		return nil, err
	}
	var info ClientSetupInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, &Error{Kind: KindInvalidResponse, Message: "unexpected setup response", Body: string(raw), Err: err}
	}
	return &info, nil
}

// SaveClientSetup stores onboarding answers through a public setup link.
func (c *Client) SaveClientSetup(ctx context.Context, setupToken string, answers map[string]string) error {
	if setupToken == "" {
		return fmt.Errorf("setup token is required")
	}
	_, err := c.gateway.PublicRequest(ctx, "/client/setup/"+url.PathEscape(setupToken), RequestOptions{
		Method: http.MethodPost,
		Body:   answers,
	})
	return err
}

// UploadClientDocs attaches documents through a public setup link.
func (c *Client) UploadClientDocs(ctx context.Context, setupToken string, files []UploadFile) error {
	if setupToken == "" {
		return fmt.Errorf("setup token is required")
	}
	body, err := MultipartBody("files", files)
	if err != nil {
		return err
	}
	_, err = c.gateway.PublicRequest(ctx, "/client/setup/"+url.PathEscape(setupToken)+"/docs", RequestOptions{
		Method: http.MethodPost,
		Body:   body,
	})
	return err
}

// MultipartBody encodes files under field as a multipart/form-data RawBody.
func MultipartBody(field string, files []UploadFile) (RawBody, error) {
	if len(files) == 0 {
		return RawBody{}, fmt.Errorf("at least one file is required")
	}
	if len(files) > MaxUploadFiles {
		return RawBody{}, fmt.Errorf("at most %d files may be uploaded at once, got %d", MaxUploadFiles, len(files))
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.Name)
		if err != nil {
			return RawBody{}, fmt.Errorf("failed to add %s: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return RawBody{}, fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return RawBody{}, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return RawBody{ContentType: w.FormDataContentType(), Reader: &buf}, nil
}

func sitePath(siteID ID, leaf string) string {
	return "/admin/sites/" + url.PathEscape(siteID.String()) + "/" + leaf
}
