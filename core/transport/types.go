package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Caller is the minimal contract every reconciler depends on.
type Caller interface {
	// Push sends one query document with its variables and returns the decoded envelope.
	Push(ctx context.Context, req Request) (*Response, error)
}

// ErrorNotifier receives every failed call. It must not block.
type ErrorNotifier func(err error)

// Request is a GraphQL request body.
type Request struct {
	// Query is the GraphQL document.
	Query string `json:"query"`

	// Variables are the document variables. Omitted when empty.
	Variables map[string]any `json:"variables,omitempty"`
}

// IsMutation reports whether the document is a mutation operation.
func (r Request) IsMutation() bool {
	return strings.HasPrefix(strings.TrimSpace(r.Query), "mutation")
}

// Response is the GraphQL response envelope.
type Response struct {
	// Data is the raw "data" member. It may be present together with Errors.
	Data json.RawMessage `json:"data,omitempty"`

	// Errors holds remote-reported errors.
	Errors []GraphQLError `json:"errors,omitempty"`
}

// Decode unmarshals Data into target. An absent or null data member leaves target untouched.
func (r *Response) Decode(target any) error {
	if r == nil || len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Data, target); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// GraphQLError is a single entry of the "errors" member.
type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// RemoteError is returned when the endpoint answered with a non-empty "errors" member.
type RemoteError struct {
	Endpoint string
	Errors   []GraphQLError
}

func (e *RemoteError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, gqlErr := range e.Errors {
		msg := strings.TrimSpace(gqlErr.Message)
		if msg == "" {
			continue
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s: remote reported errors", e.Endpoint)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, strings.Join(parts, "; "))
}

// HTTPError represents a non-2xx HTTP answer.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsRateLimited returns true if this is a rate limit error.
func (e *HTTPError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsServerError returns true if this is a server error.
func (e *HTTPError) IsServerError() bool {
	return e.StatusCode >= 500
}

// IsRemoteError reports whether err carries remote-reported GraphQL errors.
func IsRemoteError(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote)
}

// Credentials are attached to every request of a Manager.
// Empty values are not sent.
type Credentials struct {
	// AccessTokenID and AccessTokenSecret form the token pair used by the management API.
	AccessTokenID     string
	AccessTokenSecret string

	// StaticAuthToken is the per-instance token issued by the management API.
	StaticAuthToken string
}

// Header names used to carry credentials.
const (
	HeaderAccessTokenID     = "X-Access-Token-Id"
	HeaderAccessTokenSecret = "X-Access-Token-Secret"
	HeaderStaticAuthToken   = "X-Static-Auth-Token"
)

// Apply sets the credential headers on h.
func (c Credentials) Apply(h http.Header) {
	if c.AccessTokenID != "" {
		h.Set(HeaderAccessTokenID, c.AccessTokenID)
	}
	if c.AccessTokenSecret != "" {
		h.Set(HeaderAccessTokenSecret, c.AccessTokenSecret)
	}
	if c.StaticAuthToken != "" {
		h.Set(HeaderStaticAuthToken, c.StaticAuthToken)
	}
}

// IsZero reports whether no credential is set.
func (c Credentials) IsZero() bool {
	return c.AccessTokenID == "" && c.AccessTokenSecret == "" && c.StaticAuthToken == ""
}
