// pkg/sdk/auth.go
package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// LoginEndpoint exchanges a username and password for a bearer token.
	LoginEndpoint = "/admin/auth/login"
	// MeEndpoint returns the identity behind the current bearer token.
	MeEndpoint = "/admin/me"
)

// Identity describes the authenticated administrator.
// Profile fields other than username and role are kept in Fields.
type Identity struct {
	Username string
	Role     string
	Fields   map[string]any
}

func (i *Identity) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}

	*i = Identity{}
	// Non-string values stay in Fields so they survive a round trip.
	if v, ok := raw["username"].(string); ok {
		i.Username = v
		delete(raw, "username")
	}
	if v, ok := raw["role"].(string); ok {
		i.Role = v
		delete(raw, "role")
	}
	if len(raw) > 0 {
		i.Fields = raw
	}
	return nil
}

func (i Identity) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Fields)+2)
	for k, v := range i.Fields {
		out[k] = v
	}
	if i.Username != "" {
		out["username"] = i.Username
	}
	if i.Role != "" {
		out["role"] = i.Role
	}
	return json.Marshal(out)
}

// LoginResult is the outcome of a successful password login.
type LoginResult struct {
	Token    string
	Identity *Identity
}

type loginResponse struct {
	Success  *bool           `json:"success"`
	Token    string          `json:"token"`
	Admin    json.RawMessage `json:"admin"`
	Identity json.RawMessage `json:"identity"`
	User     json.RawMessage `json:"user"`
	Message  string          `json:"message"`
}

// Login exchanges credentials for a bearer token. It does not store the token;
// pass the result to Session.Login.
//
// A body that is not JSON always fails with KindInvalidResponse. Any other
// rejection fails with KindRequestFailed carrying the server's message.
func Login(ctx context.Context, g *Gateway, username, password string) (*LoginResult, error) {
	raw, err := g.PublicRequest(ctx, LoginEndpoint, RequestOptions{
		Method: http.MethodPost,
		Body: map[string]string{
			"username": username,
			"password": password,
		},
	})
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Kind == KindRequestFailed && apiErr.Message == "" {
			apiErr.Message = "Login failed"
		}
		return nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Error{Kind: KindInvalidResponse, Message: "invalid server response", Body: string(raw), Err: err}
	}

	if (resp.Success != nil && !*resp.Success) || resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Login failed"
		}
		return nil, &Error{Kind: KindRequestFailed, Status: http.StatusOK, Code: "login_failed", Message: msg}
	}

	identity, err := firstIdentity(resp.Admin, resp.Identity, resp.User)
	if err != nil {
		return nil, &Error{Kind: KindInvalidResponse, Message: "invalid identity in login response", Body: string(raw), Err: err}
	}
	if identity == nil {
		identity = &Identity{Username: username}
	}

	return &LoginResult{Token: resp.Token, Identity: identity}, nil
}

// FetchIdentity asks the who-am-I endpoint which administrator the stored
// token belongs to.
//
// The identity is read from the admin, identity or user envelope. A body
// without an envelope counts as the profile itself only when it names a
// username. An envelope that is null, or success set to false, is rejected.
func FetchIdentity(ctx context.Context, g *Gateway) (*Identity, error) {
	raw, err := g.Request(ctx, MeEndpoint, RequestOptions{})
	if err != nil {
		return nil, err
	}

	invalid := func(msg string, cause error) error {
		return &Error{Kind: KindInvalidResponse, Message: msg, Body: string(raw), Err: cause}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, invalid("who-am-I response is not an object", err)
	}

	if v, ok := fields["success"]; ok {
		var success bool
		if json.Unmarshal(v, &success) == nil && !success {
			return nil, invalid("who-am-I request was not successful", nil)
		}
	}

	for _, key := range []string{"admin", "identity", "user"} {
		v, ok := fields[key]
		if !ok {
			continue
		}
		if string(v) == "null" {
			return nil, invalid("who-am-I response carries a null "+key, nil)
		}
		var id Identity
		if err := json.Unmarshal(v, &id); err != nil {
			return nil, invalid("invalid identity in who-am-I response", err)
		}
		return &id, nil
	}

	// Some deployments return the profile itself.
	var username string
	if v, ok := fields["username"]; !ok || json.Unmarshal(v, &username) != nil || username == "" {
		return nil, invalid("who-am-I response carries no identity", nil)
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, invalid("invalid identity in who-am-I response", err)
	}
	return &id, nil
}

func firstIdentity(candidates ...json.RawMessage) (*Identity, error) {
	for _, c := range candidates {
		if len(c) == 0 || string(c) == "null" {
			continue
		}
		var id Identity
		if err := json.Unmarshal(c, &id); err != nil {
			return nil, err
		}
		return &id, nil
	}
	return nil, nil
}

// TokenInfo holds the unverified claims of a JWT bearer token.
type TokenInfo struct {
	Subject   string
	Issuer    string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the token carries an expiry that has passed.
func (t TokenInfo) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// InspectToken decodes token as a JWT without verifying its signature.
// It is for display only; the server remains the authority on validity.
// ok is false for opaque tokens.
func InspectToken(token string) (TokenInfo, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}, false
	}

	var info TokenInfo
	info.Subject, _ = claims.GetSubject()
	info.Issuer, _ = claims.GetIssuer()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		info.IssuedAt = &t
	}
	return info, true
}
