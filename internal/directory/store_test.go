package directory

import (
	"context"
	"reflect"
	"sync"
	"testing"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/gateway"
)

type fakeAPI struct {
	mu        sync.Mutex
	pages     map[int]domain.Page
	listErr   error
	listCalls []int
	divisions []domain.Division
	divErr    error
	divCalls  int
	createErr error
	updateErr error
	deleteErr error
}

func (f *fakeAPI) ListEmployees(_ context.Context, page int) (domain.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, page)
	if f.listErr != nil {
		return domain.Page{}, f.listErr
	}
	if p, ok := f.pages[page]; ok {
		return p, nil
	}
	return domain.Page{PageNumber: 1, TotalPages: 1}, nil
}

func (f *fakeAPI) ListDivisions(_ context.Context, _ int) ([]domain.Division, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.divCalls++
	return f.divisions, f.divErr
}

func (f *fakeAPI) CreateEmployee(_ context.Context, _ domain.Draft) error { return f.createErr }
func (f *fakeAPI) UpdateEmployee(_ context.Context, _ string, _ domain.Draft) error {
	return f.updateErr
}
func (f *fakeAPI) DeleteEmployee(_ context.Context, _ string) error { return f.deleteErr }

func (f *fakeAPI) calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.listCalls...)
}

func pageOf(n, total int, names ...string) domain.Page {
	p := domain.Page{PageNumber: n, TotalPages: total}
	for _, name := range names {
		p.Items = append(p.Items, domain.Employee{ID: name, Name: name, Phone: "08", Position: "Staff", Division: domain.Division{ID: "d1", Name: "Ops"}})
	}
	return p
}

func TestLoadPageIsIdempotent(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{pages: map[int]domain.Page{1: pageOf(1, 3, "Alice", "Bob")}}
	s := NewStore(api, 6, nil)

	s.LoadPage(ctx, 1)
	first := s.Page()
	s.LoadPage(ctx, 1)
	second := s.Page()

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical pages, got %+v vs %+v", first, second)
	}
	if first.PageNumber != 1 || first.TotalPages != 3 || len(first.Items) != 2 {
		t.Fatalf("unexpected page %+v", first)
	}
	if s.Loading() {
		t.Fatalf("expected loading cleared")
	}
}

func TestLoadPageFailureKeepsStalePageVisible(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{pages: map[int]domain.Page{1: pageOf(1, 2, "Alice")}}
	s := NewStore(api, 6, nil)
	s.LoadPage(ctx, 1)

	api.mu.Lock()
	api.listErr = &gateway.RequestRejectedError{Message: "Unauthenticated."}
	api.mu.Unlock()
	s.LoadPage(ctx, 2)

	if s.Message() != "Unauthenticated." {
		t.Fatalf("expected error message, got %q", s.Message())
	}
	if s.Loading() {
		t.Fatalf("expected loading cleared on failure")
	}
	page := s.Page()
	if page.PageNumber != 1 || len(page.Items) != 1 {
		t.Fatalf("expected previous page kept, got %+v", page)
	}
}

func TestLoadPageRejectsNonPositive(t *testing.T) {
	api := &fakeAPI{}
	s := NewStore(api, 6, nil)
	s.LoadPage(context.Background(), 0)

	if len(api.calls()) != 0 {
		t.Fatalf("expected no network call for invalid page")
	}
	if s.Message() == "" {
		t.Fatalf("expected validation message")
	}
}

func TestFilterNarrowsLoadedPageOnly(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{pages: map[int]domain.Page{1: pageOf(1, 1, "Alice Smith", "Bob Jones", "alice lowercase")}}
	s := NewStore(api, 6, nil)
	s.LoadPage(ctx, 1)

	s.SetFilter("ALICE")
	for _, e := range s.Visible() {
		if got := e.Name; got != "Alice Smith" && got != "alice lowercase" {
			t.Fatalf("filter surfaced non-matching employee %q", got)
		}
	}
	if len(s.Visible()) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(s.Visible()))
	}

	s.SetFilter("")
	if len(s.Visible()) != 3 {
		t.Fatalf("expected empty filter to return full page, got %d", len(s.Visible()))
	}
	if got := len(api.calls()); got != 1 {
		t.Fatalf("filter must not query the server, got %d list calls", got)
	}
}

func TestCreateReloadsCurrentPage(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{pages: map[int]domain.Page{2: pageOf(2, 3, "Carol")}}
	s := NewStore(api, 6, nil)
	s.LoadPage(ctx, 2)

	if err := s.Create(ctx, domain.Draft{Name: "Dave"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	calls := api.calls()
	if len(calls) != 2 || calls[1] != 2 {
		t.Fatalf("expected automatic reload of page 2, got calls %v", calls)
	}
}

func TestCreateFailureLeavesPageUntouched(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{pages: map[int]domain.Page{1: pageOf(1, 1, "Alice")}}
	s := NewStore(api, 6, nil)
	s.LoadPage(ctx, 1)
	before := s.Page()

	api.createErr = &gateway.RequestRejectedError{Message: "The name is required."}
	if err := s.Create(ctx, domain.Draft{}); err == nil {
		t.Fatalf("expected create to fail")
	}
	if !reflect.DeepEqual(before, s.Page()) {
		t.Fatalf("failed mutation must not touch the held page")
	}
	if got := len(api.calls()); got != 1 {
		t.Fatalf("failed create must not reload, got %d list calls", got)
	}
}

func TestDeleteReloadsEvenOnFailure(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{
		pages:     map[int]domain.Page{1: pageOf(1, 1, "Alice")},
		deleteErr: &gateway.RequestRejectedError{Message: "Employee not found"},
	}
	s := NewStore(api, 6, nil)
	s.LoadPage(ctx, 1)

	if err := s.Delete(ctx, "emp-1"); err == nil {
		t.Fatalf("expected delete to fail")
	}
	if got := len(api.calls()); got != 2 {
		t.Fatalf("expected reload after failed delete, got %d list calls", got)
	}
	if s.SideMessage() != "Employee not found" {
		t.Fatalf("expected delete failure on side channel, got %q", s.SideMessage())
	}
	if s.Message() != "" {
		t.Fatalf("delete failure must not blank the table, got %q", s.Message())
	}
}

func TestDivisionsAreMemoized(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{divisions: []domain.Division{{ID: "d1", Name: "Ops"}}}
	s := NewStore(api, 6, nil)

	first := s.Divisions(ctx)
	second := s.Divisions(ctx)
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected divisions returned")
	}
	if api.divCalls != 1 {
		t.Fatalf("expected a single fetch per activation, got %d", api.divCalls)
	}

	s.InvalidateDivisions()
	s.Divisions(ctx)
	if api.divCalls != 2 {
		t.Fatalf("expected refetch after invalidation, got %d", api.divCalls)
	}
}

// gatedAPI lets a test hold one page response in flight while a
// later request completes first.
type gatedAPI struct {
	fakeAPI
	started chan struct{}
	release chan struct{}
	gated   int
}

func (g *gatedAPI) ListEmployees(ctx context.Context, page int) (domain.Page, error) {
	if page == g.gated {
		close(g.started)
		<-g.release
	}
	return g.fakeAPI.ListEmployees(ctx, page)
}

func TestSupersededResponseIsDiscarded(t *testing.T) {
	ctx := context.Background()
	api := &gatedAPI{
		fakeAPI: fakeAPI{pages: map[int]domain.Page{
			2: pageOf(2, 5, "Old"),
			3: pageOf(3, 5, "New"),
		}},
		started: make(chan struct{}),
		release: make(chan struct{}),
		gated:   2,
	}
	s := NewStore(api, 6, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.LoadPage(ctx, 2)
	}()

	// Let the newer request complete while page 2 is in flight,
	// then release the stale response.
	<-api.started
	s.LoadPage(ctx, 3)
	close(api.release)
	wg.Wait()

	page := s.Page()
	if page.PageNumber != 3 {
		t.Fatalf("stale response must not win, got page %d", page.PageNumber)
	}
	if len(page.Items) != 1 || page.Items[0].Name != "New" {
		t.Fatalf("expected latest page contents, got %+v", page.Items)
	}
	if s.Loading() {
		t.Fatalf("expected loading cleared by the latest request")
	}
}
