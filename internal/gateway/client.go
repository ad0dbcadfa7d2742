// Package gateway is the typed client for the remote roster API. It
// attaches the active credential to every call, normalizes failures
// into RequestRejectedError / ErrTransportUnavailable, and performs
// no retries: every call here is triggered by a single user action.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/observability/metrics"
)

// CredentialProvider supplies the bearer token for the current
// session, or an empty string when unauthenticated. Passing the
// credential through a callback keeps login/logout from mutating
// shared client configuration.
type CredentialProvider func() string

// Client issues authenticated requests against the roster API.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialProvider
	logger  *slog.Logger
}

// LoginResult is the decoded payload of a successful login.
type LoginResult struct {
	Token string
	Admin *AdminProfile
}

// AdminProfile is the administrator record returned at login.
type AdminProfile struct {
	Name string `json:"name"`
}

// NewClient creates a gateway client for the given API base URL.
func NewClient(baseURL string, creds CredentialProvider, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if creds == nil {
		creds = func() string { return "" }
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		creds:  creds,
		logger: logger,
	}
}

// Login authenticates against POST /login and returns the issued
// credential. A reachable server that declines the credentials
// yields a RequestRejectedError carrying the server's message.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	status, body, err := c.do(ctx, "login", http.MethodPost, "/login", bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Token string        `json:"token"`
			Admin *AdminProfile `json:"admin"`
		} `json:"data"`
	}
	if status < 200 || status >= 300 {
		return nil, rejectionFromBody(body, "Login failed.")
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if resp.Status != "success" {
		msg := resp.Message
		if msg == "" {
			msg = "Login failed."
		}
		return nil, &RequestRejectedError{Message: msg}
	}
	return &LoginResult{Token: resp.Data.Token, Admin: resp.Data.Admin}, nil
}

// ListEmployees fetches one page of the employee collection. The
// returned page number is the one the server declared, clamped into
// the valid range; an empty collection comes back as a single empty
// page.
func (c *Client) ListEmployees(ctx context.Context, page int) (domain.Page, error) {
	path := "/employees?page=" + strconv.Itoa(page)
	status, body, err := c.do(ctx, "list_employees", http.MethodGet, path, nil, "")
	if err != nil {
		return domain.Page{}, err
	}
	if status < 200 || status >= 300 {
		return domain.Page{}, rejectionFromBody(body, "Failed to fetch employee data.")
	}

	var resp struct {
		Data struct {
			Employees []domain.Employee `json:"employees"`
		} `json:"data"`
		Pagination struct {
			CurrentPage int `json:"current_page"`
			TotalPages  int `json:"total_pages"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Page{}, fmt.Errorf("failed to decode employees response: %w", err)
	}

	totalPages := resp.Pagination.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}
	pageNumber := resp.Pagination.CurrentPage
	if pageNumber < 1 {
		pageNumber = page
	}
	if pageNumber > totalPages {
		pageNumber = totalPages
	}
	return domain.Page{
		Items:      resp.Data.Employees,
		PageNumber: pageNumber,
		TotalPages: totalPages,
	}, nil
}

// ListDivisions fetches the division reference list.
func (c *Client) ListDivisions(ctx context.Context, perPage int) ([]domain.Division, error) {
	path := "/divisions?per_page=" + strconv.Itoa(perPage)
	status, body, err := c.do(ctx, "list_divisions", http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, rejectionFromBody(body, "Failed to fetch division data.")
	}

	var resp struct {
		Data struct {
			Divisions []domain.Division `json:"divisions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode divisions response: %w", err)
	}
	return resp.Data.Divisions, nil
}

// CreateEmployee submits a fully populated draft as multipart form
// data. Field-level completeness is the form controller's job; the
// gateway sends what it is given.
func (c *Client) CreateEmployee(ctx context.Context, draft domain.Draft) error {
	body, contentType, err := encodeDraftForm(draft, false)
	if err != nil {
		return err
	}
	status, respBody, err := c.do(ctx, "create_employee", http.MethodPost, "/employees", body, contentType)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return rejectionFromBody(respBody, "Failed to add new employee.")
	}
	return nil
}

// UpdateEmployee submits only the populated draft fields against
// POST /employees/{id} with a _method=PUT override, which is how the
// remote API spells update for multipart bodies.
func (c *Client) UpdateEmployee(ctx context.Context, id string, draft domain.Draft) error {
	body, contentType, err := encodeDraftForm(draft, true)
	if err != nil {
		return err
	}
	path := "/employees/" + url.PathEscape(id)
	status, respBody, err := c.do(ctx, "update_employee", http.MethodPost, path, body, contentType)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return rejectionFromBody(respBody, "Failed to update employee.")
	}
	return nil
}

// DeleteEmployee removes one employee record.
func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	path := "/employees/" + url.PathEscape(id)
	status, body, err := c.do(ctx, "delete_employee", http.MethodDelete, path, nil, "")
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return rejectionFromBody(body, "Failed to delete employee.")
	}
	return nil
}

// do issues one request and reads the full response body. Transport
// failures come back wrapped in ErrTransportUnavailable; any HTTP
// response at all is returned to the caller for interpretation.
func (c *Client) do(ctx context.Context, operation, method, path string, body io.Reader, contentType string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.creds(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveAPIRequest(operation, "transport_error", time.Since(start))
		c.logger.Warn("api request failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		return 0, nil, transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveAPIRequest(operation, "transport_error", time.Since(start))
		return 0, nil, transportError(err)
	}

	result := "success"
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result = "rejected"
	}
	metrics.ObserveAPIRequest(operation, result, time.Since(start))
	c.logger.Debug("api request completed",
		slog.String("operation", operation),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return resp.StatusCode, respBody, nil
}

// encodeDraftForm builds the multipart body for create and update
// calls. For updates only populated fields are written and a
// _method=PUT override field is prepended.
func encodeDraftForm(draft domain.Draft, update bool) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if update {
		if err := w.WriteField("_method", "PUT"); err != nil {
			return nil, "", fmt.Errorf("failed to encode form: %w", err)
		}
	}

	fields := map[string]string{
		"name":     draft.Name,
		"phone":    draft.Phone,
		"division": draft.DivisionID,
		"position": draft.Position,
	}
	for _, name := range []string{"name", "phone", "division", "position"} {
		value := fields[name]
		if update && value == "" {
			continue
		}
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to encode form: %w", err)
		}
	}

	if draft.ImagePath != "" {
		f, err := os.Open(draft.ImagePath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open image %s: %w", draft.ImagePath, err)
		}
		defer f.Close()
		part, err := w.CreateFormFile("image", filepath.Base(draft.ImagePath))
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode form: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, "", fmt.Errorf("failed to read image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to encode form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
