package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "salto-club/1.0"

// Client talks to one Supabase project over its REST endpoints.
type Client struct {
	hc      *http.Client
	baseURL string
	anonKey string
}

func New(baseURL, anonKey string) *Client {
	return &Client{
		hc:      &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
	}
}

// WithHTTPClient swaps the transport, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.hc = hc
	return &cp
}

// APIError is a non-2xx answer from GoTrue or PostgREST.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase %d: %s", e.Status, e.Message)
}

type request struct {
	method string
	path   string
	query  url.Values
	bearer string
	prefer string
	body   any
}

// do sends req and decodes a 2xx JSON answer into out (when out is non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(b)
	}
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}
	hreq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return err
	}
	hreq.Header.Set("apikey", c.anonKey)
	hreq.Header.Set("user-agent", userAgent)
	hreq.Header.Set("accept", "application/json")
	if req.body != nil {
		hreq.Header.Set("content-type", "application/json")
	}
	bearer := req.bearer
	if bearer == "" {
		bearer = c.anonKey
	}
	hreq.Header.Set("authorization", "Bearer "+bearer)
	if req.prefer != "" {
		hreq.Header.Set("prefer", req.prefer)
	}

	res, err := c.hc.Do(hreq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", req.method, req.path, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return parseError(res.StatusCode, b)
	}
	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}

// parseError understands the error shapes of both GoTrue versions and PostgREST.
func parseError(status int, body []byte) *APIError {
	var e struct {
		Code             any    `json:"code"`
		ErrorCode        string `json:"error_code"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	_ = json.Unmarshal(body, &e)
	out := &APIError{Status: status}
	switch {
	case e.ErrorCode != "":
		out.Code = e.ErrorCode
	case e.Error != "":
		out.Code = e.Error
	default:
		if s, ok := e.Code.(string); ok {
			out.Code = s
		}
	}
	for _, m := range []string{e.Msg, e.ErrorDescription, e.Message} {
		if m != "" {
			out.Message = m
			break
		}
	}
	if out.Message == "" {
		out.Message = strings.TrimSpace(string(body))
	}
	if out.Message == "" {
		out.Message = http.StatusText(status)
	}
	return out
}
