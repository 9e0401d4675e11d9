package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Client talks to the scripted-spreadsheet backend. Every action goes through
// a single endpoint URL selected by an `action` parameter: reads are GET with
// query parameters, mutations are POST with a form-encoded body (the backend
// cannot handle JSON bodies without CORS preflight, so nested records are
// dot-flattened into form fields and arrays are JSON-encoded strings).
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient overrides the underlying HTTP client (tests, custom timeouts).
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func (c *Client) get(ctx context.Context, action string, params url.Values) (*Envelope, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("action", action)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", action, err)
	}
	return c.do(action, req)
}

func (c *Client) post(ctx context.Context, action string, payload any) (*Envelope, error) {
	form, err := flatten(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode payload: %w", action, err)
	}

	u := c.baseURL + "?action=" + url.QueryEscape(action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", action, err)
	}
	// url-encoded is a CORS-safelisted content type, so the script endpoint
	// never sees a preflight for these.
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(action, req)
}

func (c *Client) do(action string, req *http.Request) (*Envelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: unexpected status %d", action, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", action, err)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", action, err)
	}
	env.action = action
	return &env, nil
}

// flatten converts a payload into form values the backend script expects:
// nested objects become dotted keys (`productUsages.0` style is not used;
// arrays are JSON strings), scalars are stringified.
func flatten(payload any) (url.Values, error) {
	form := url.Values{}
	if payload == nil {
		return form, nil
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if err := flattenInto(form, "", m); err != nil {
		return nil, err
	}
	return form, nil
}

func flattenInto(form url.Values, prefix string, m map[string]any) error {
	// Stable iteration keeps request bodies deterministic for tests.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := m[k].(type) {
		case nil:
			form.Set(key, "")
		case map[string]any:
			if err := flattenInto(form, key, v); err != nil {
				return err
			}
		case []any:
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			form.Set(key, string(b))
		case string:
			form.Set(key, v)
		case bool:
			form.Set(key, fmt.Sprintf("%t", v))
		case float64:
			form.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			form.Set(key, fmt.Sprintf("%v", v))
		}
	}
	return nil
}
