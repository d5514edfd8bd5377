package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	fypapp "github.com/apiguave/fypapp-go"
)

const defaultTimeout = 10 * time.Second

var tracer = otel.Tracer("fypapp/client")

// Client speaks the XRPC dialect of a PDS: queries are GET and
// side-effect free, procedures are POST and may mutate. Procedures
// carry the bearer token of the active session when one exists.
// The client performs no retries; retry and backoff policy belong to
// the caller.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	session   *SessionStore
	log       zerolog.Logger
}

// New constructs a client for the PDS at baseURL. The session store
// supplies bearer credentials for procedures and may be shared with
// the Sessions service that fills it.
func New(baseURL string, store *SessionStore) *Client {
	httpClient := &http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		http:      httpClient,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "fypapp-go/0.1",
		session:   store,
		log:       zerolog.Nop(),
	}
	httpClient.Transport = c
	return c
}

// SetLogger installs a logger for request-level debug output.
func (c *Client) SetLogger(log zerolog.Logger) {
	c.log = log
}

// SetTimeout overrides the per-call timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.http.Timeout = d
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// Query performs a side-effect-free GET method.
func (c *Client) Query(ctx context.Context, method string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, method, params, nil, out)
}

// Procedure performs a mutating POST method.
func (c *Client) Procedure(ctx context.Context, method string, params url.Values, body any, out any) error {
	return c.do(ctx, http.MethodPost, method, params, body, out)
}

// Invoke dispatches a custom method, selecting GET or POST from the
// mutating flag.
func (c *Client) Invoke(ctx context.Context, method string, params url.Values, body any, mutating bool, out any) error {
	if mutating {
		return c.Procedure(ctx, method, params, body, out)
	}
	return c.Query(ctx, method, params, out)
}

func (c *Client) do(ctx context.Context, httpMethod, method string, params url.Values, body any, out any) error {
	ctx, span := tracer.Start(ctx, "Client."+method)
	defer span.End()

	endpoint := c.baseURL + "/xrpc/" + method
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request body")
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, endpoint, reqBody)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	if httpMethod == http.MethodPost {
		if token, ok := c.session.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return fypapp.NetworkError{Op: method, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return fypapp.NetworkError{Op: method, Err: err}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.log.Debug().
		Str("method", method).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("xrpc call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := classify(resp.StatusCode, raw)
		span.RecordError(err)
		return err
	}

	// A 2xx with an empty body is a valid outcome for writes.
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		span.RecordError(err)
		return fypapp.ServerError{Status: resp.StatusCode, Body: string(raw)}
	}

	return nil
}

// xrpcError is the standard error body shape of the wire protocol.
type xrpcError struct {
	Name    string `json:"error"`
	Message string `json:"message"`
}

// classify maps a non-2xx response onto the error taxonomy. The
// status and body text are preserved verbatim.
func classify(status int, raw []byte) error {
	body := string(raw)
	var xe xrpcError
	_ = json.Unmarshal(raw, &xe)

	switch xe.Name {
	case "AccountNotFound":
		return fypapp.AuthError{Kind: fypapp.AuthAccountNotFound, Body: body}
	case "AlreadyExists", "HandleNotAvailable":
		return fypapp.AuthError{Kind: fypapp.AuthAlreadyExists, Body: body}
	case "WeakPassword":
		return fypapp.AuthError{Kind: fypapp.AuthWeakSecret, Body: body}
	case "RecordAlreadyExists", "InvalidSwap":
		return fypapp.RecordExistsError{Body: body}
	case "RecordNotFound":
		return fypapp.NotFoundError{Resource: xe.Message}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fypapp.AuthError{Kind: fypapp.AuthInvalidCredentials, Body: body}
	case status == http.StatusNotFound:
		return fypapp.NotFoundError{Resource: xe.Message}
	case status == http.StatusConflict:
		return fypapp.RecordExistsError{Body: body}
	case status >= 400 && status < 500:
		return fypapp.ValidationError{Name: xe.Name, Body: body}
	default:
		return fypapp.ServerError{Status: status, Body: body}
	}
}
