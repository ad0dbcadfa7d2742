// Package directory keeps the client's view of the employee
// collection consistent with the remote store: one page at a time,
// a client-side name filter, and an unconditional reload after every
// successful mutation so local and server state never diverge.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/gateway"
	"github.com/yourorg/staffdesk/internal/observability/metrics"
	"github.com/yourorg/staffdesk/pkg/cache"
)

const (
	divisionsCacheKey = "divisions"
	divisionsCacheTTL = 5 * time.Minute
)

// API is the slice of the gateway the store needs.
type API interface {
	ListEmployees(ctx context.Context, page int) (domain.Page, error)
	ListDivisions(ctx context.Context, perPage int) ([]domain.Division, error)
	CreateEmployee(ctx context.Context, draft domain.Draft) error
	UpdateEmployee(ctx context.Context, id string, draft domain.Draft) error
	DeleteEmployee(ctx context.Context, id string) error
}

// Store owns the current employee page. The displayed page is always
// the last successfully fetched one or the initial empty state; a
// failed call never leaves it partially updated.
type Store struct {
	api              API
	divisionsPerPage int
	cache            *cache.Cache
	logger           *slog.Logger

	mu         sync.Mutex
	page       domain.Page
	search     string
	loading    bool
	generation uint64
	message    string // primary channel: page fetch failures
	sideMsg    string // secondary channel: division/delete failures that keep the table visible
}

// NewStore creates a directory store over the given API client.
func NewStore(api API, divisionsPerPage int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if divisionsPerPage < 1 {
		divisionsPerPage = 6
	}
	return &Store{
		api:              api,
		divisionsPerPage: divisionsPerPage,
		cache:            cache.New(),
		logger:           logger,
		page:             domain.Page{PageNumber: 1, TotalPages: 1},
	}
}

// LoadPage fetches page n and replaces the held page on success.
// Each call is tagged with a generation; a response that arrives
// after a newer request was issued is discarded so rapid navigation
// cannot surface a stale page. The loading flag is cleared whenever
// the latest request settles, success or failure.
func (s *Store) LoadPage(ctx context.Context, n int) {
	if n < 1 {
		s.mu.Lock()
		s.message = fmt.Sprintf("Invalid page number %d.", n)
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.loading = true
	s.message = ""
	s.mu.Unlock()

	page, err := s.api.ListEmployees(ctx, n)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		metrics.ObserveStaleResponse()
		s.logger.Debug("discarding superseded page response", slog.Int("page", n))
		return
	}
	s.loading = false
	if err != nil {
		s.message = displayMessage(err, "Failed to fetch employee data.")
		s.logger.Warn("page load failed",
			slog.Int("page", n),
			slog.String("error", err.Error()),
		)
		return
	}
	s.page = page
}

// Reload refetches the current page.
func (s *Store) Reload(ctx context.Context) {
	s.LoadPage(ctx, s.CurrentPage())
}

// SetFilter updates the client-side name filter. Filtering narrows
// the loaded page only; it never queries the server, so matches on
// other pages are not surfaced.
func (s *Store) SetFilter(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = text
}

// Filter returns the active filter text.
func (s *Store) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search
}

// Page returns the held page unfiltered.
func (s *Store) Page() domain.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Visible returns the employees of the held page whose names contain
// the filter text case-insensitively. An empty filter returns the
// full page.
func (s *Store) Visible() []domain.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.search == "" {
		return append([]domain.Employee(nil), s.page.Items...)
	}
	needle := strings.ToLower(s.search)
	var out []domain.Employee
	for _, e := range s.page.Items {
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}

// CurrentPage returns the page number of the held page.
func (s *Store) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page.PageNumber
}

// TotalPages returns the server-declared page count.
func (s *Store) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page.TotalPages
}

// Loading reports whether the latest issued page load is still in
// flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Message returns the current page-level error message, empty when
// the last load succeeded.
func (s *Store) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// SideMessage returns the secondary error channel used for division
// and delete failures, which must not blank the employee table.
func (s *Store) SideMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sideMsg
}

// Divisions returns the division reference list, memoized for the
// duration of a view activation. A fetch failure surfaces on the
// secondary channel and returns the empty list.
func (s *Store) Divisions(ctx context.Context) []domain.Division {
	if cached, ok := s.cache.Get(divisionsCacheKey); ok {
		return cached.([]domain.Division)
	}

	divisions, err := s.api.ListDivisions(ctx, s.divisionsPerPage)
	if err != nil {
		s.mu.Lock()
		s.sideMsg = displayMessage(err, "Failed to fetch division data.")
		s.mu.Unlock()
		s.logger.Warn("division fetch failed", slog.String("error", err.Error()))
		return nil
	}
	s.cache.Set(divisionsCacheKey, divisions, divisionsCacheTTL)
	return divisions
}

// InvalidateDivisions drops the memoized division list, forcing a
// refetch on the next view activation.
func (s *Store) InvalidateDivisions() {
	s.cache.Delete(divisionsCacheKey)
}

// Create submits a new employee and, on success, reloads the current
// page rather than patching local state: the server may have
// reordered or repaginated. Failures leave the held page untouched.
func (s *Store) Create(ctx context.Context, draft domain.Draft) error {
	if err := s.api.CreateEmployee(ctx, draft); err != nil {
		return err
	}
	metrics.ObservePageReload("create")
	s.Reload(ctx)
	return nil
}

// Update submits changed fields for one employee and reloads the
// current page on success.
func (s *Store) Update(ctx context.Context, id string, draft domain.Draft) error {
	if err := s.api.UpdateEmployee(ctx, id, draft); err != nil {
		return err
	}
	metrics.ObservePageReload("update")
	s.Reload(ctx)
	return nil
}

// Delete removes one employee. The current page is reloaded even
// when the call failed: a transport error can race a delete the
// server already applied, and the reload resolves which happened.
// The failure itself surfaces on the secondary channel.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.api.DeleteEmployee(ctx, id)
	if err != nil {
		s.mu.Lock()
		s.sideMsg = displayMessage(err, "Failed to delete employee.")
		s.mu.Unlock()
		s.logger.Warn("delete failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
	}
	metrics.ObservePageReload("delete")
	s.Reload(ctx)
	return err
}

// displayMessage converts a gateway error into the user-displayable
// string for component state.
func displayMessage(err error, fallback string) string {
	var rejected *gateway.RequestRejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	return fallback
}
