// Package inventree implements inventory.Client against the InvenTree
// REST API. Requests carry token authentication, responses are decoded
// from JSON, and non-2xx statuses become *errors.APIError carrying the
// response body so callers can render structured detail.
package inventree

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/partforge/partsync/pkg/errors"
	"github.com/partforge/partsync/pkg/logging"
)

// DefaultTimeout is the default timeout for repository requests.
const DefaultTimeout = 30 * time.Second

const serviceName = "inventree"

// Client talks to one InvenTree instance.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the instance at baseURL using token
// authentication.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     *logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.WrapParse("json", "request body", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug().Str("method", method).Str("path", path).Msg("repository request")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewAPIError(serviceName, path, resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.WrapParse("json", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// listEnvelope is the paginated list shape the API uses when pagination is
// enabled; bare arrays are returned otherwise.
type listEnvelope struct {
	Count   int             `json:"count"`
	Next    string          `json:"next"`
	Results json.RawMessage `json:"results"`
}

// list fetches every page of a list endpoint into out, which must be a
// pointer to a slice.
func (c *Client) list(ctx context.Context, path string, query url.Values, out any) error {
	var raw json.RawMessage
	if err := c.get(ctx, path, query, &raw); err != nil {
		return err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, out); err != nil {
			return errors.WrapParse("json", path, err)
		}
		return nil
	}

	// Paginated: accumulate the result pages into a single array.
	var pages [][]byte
	next := ""
	for {
		var envelope listEnvelope
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return errors.WrapParse("json", path, err)
		}
		pages = append(pages, bytes.TrimSpace(envelope.Results))
		if envelope.Next == "" {
			break
		}
		next = envelope.Next

		var page json.RawMessage
		if err := c.getAbsolute(ctx, next, &page); err != nil {
			return err
		}
		trimmed = bytes.TrimSpace(page)
	}

	joined := joinArrays(pages)
	if err := json.Unmarshal(joined, out); err != nil {
		return errors.WrapParse("json", path, err)
	}
	return nil
}

// getAbsolute follows a pagination link, which the API returns as a full
// URL.
func (c *Client) getAbsolute(ctx context.Context, href string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewAPIError(serviceName, href, resp.StatusCode, payload)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.WrapParse("json", href, err)
	}
	return nil
}

// joinArrays splices JSON arrays into one without re-decoding elements.
func joinArrays(arrays [][]byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	first := true
	for _, arr := range arrays {
		inner := bytes.TrimSpace(arr)
		if len(inner) < 2 {
			continue
		}
		inner = bytes.TrimSpace(inner[1 : len(inner)-1])
		if len(inner) == 0 {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		buf.Write(inner)
		first = false
	}
	buf.WriteByte(']')
	return buf.Bytes()
}
