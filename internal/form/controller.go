// Package form owns the add/edit draft and its validation. A draft
// that fails validation never reaches the network, and a draft that
// fails submission is kept so the operator does not lose input.
package form

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/yourorg/staffdesk/internal/domain"
	"github.com/yourorg/staffdesk/internal/gateway"
)

// Validation failures. Both are raised before any call is issued.
var (
	ErrIncompleteDraft   = errors.New("all fields are required")
	ErrNoChangesProvided = errors.New("at least one field must change")
	ErrNoActiveDraft     = errors.New("no draft is open")
)

// Mode identifies which dialog the draft belongs to. Only one can be
// open at a time.
type Mode int

const (
	ModeNone Mode = iota
	ModeCreate
	ModeEdit
)

// Directory is the slice of the directory store the controller
// submits through.
type Directory interface {
	Create(ctx context.Context, draft domain.Draft) error
	Update(ctx context.Context, id string, draft domain.Draft) error
}

// Controller maintains the single active draft.
type Controller struct {
	dir    Directory
	logger *slog.Logger

	mu       sync.Mutex
	mode     Mode
	draft    domain.Draft
	pristine domain.Employee
	message  string
}

// NewController creates a controller submitting through dir.
func NewController(dir Directory, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{dir: dir, logger: logger}
}

// OpenCreate starts an empty create draft, replacing any open one.
func (c *Controller) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeCreate
	c.draft = domain.Draft{}
	c.pristine = domain.Employee{}
	c.message = ""
}

// OpenEdit starts an edit draft prefilled from the employee as it
// was when the dialog opened. That snapshot is the pristine copy
// change detection runs against.
func (c *Controller) OpenEdit(employee domain.Employee) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeEdit
	c.pristine = employee
	c.draft = domain.Draft{
		Name:       employee.Name,
		Phone:      employee.Phone,
		DivisionID: employee.Division.ID,
		Position:   employee.Position,
	}
	c.message = ""
}

// Cancel discards the draft without submitting.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeNone
	c.draft = domain.Draft{}
	c.pristine = domain.Employee{}
	c.message = ""
}

// SetName updates the draft's name field.
func (c *Controller) SetName(v string) { c.setField(func(d *domain.Draft) { d.Name = v }) }

// SetPhone updates the draft's phone field.
func (c *Controller) SetPhone(v string) { c.setField(func(d *domain.Draft) { d.Phone = v }) }

// SetDivision updates the draft's division id field.
func (c *Controller) SetDivision(v string) { c.setField(func(d *domain.Draft) { d.DivisionID = v }) }

// SetPosition updates the draft's position field.
func (c *Controller) SetPosition(v string) { c.setField(func(d *domain.Draft) { d.Position = v }) }

// SetImagePath points the draft at a local image file to upload.
func (c *Controller) SetImagePath(v string) { c.setField(func(d *domain.Draft) { d.ImagePath = v }) }

func (c *Controller) setField(apply func(*domain.Draft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	apply(&c.draft)
}

// Mode returns which dialog is open.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Draft returns the current working copy.
func (c *Controller) Draft() domain.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Message returns the current form-level error message.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// Submit validates and submits the open draft. In create mode every
// field must be populated; in edit mode at least one field must
// differ from the pristine copy, and only the changed fields are
// sent. On success the draft is cleared and the directory has
// already reloaded; on failure the draft is retained and the message
// recorded.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	mode := c.mode
	draft := c.draft
	pristine := c.pristine
	c.mu.Unlock()

	switch mode {
	case ModeCreate:
		if !draft.IsComplete() {
			c.fail("All fields are required.")
			return ErrIncompleteDraft
		}
		if err := c.dir.Create(ctx, draft); err != nil {
			c.fail(submitMessage(err, "Failed to add new employee."))
			return err
		}
	case ModeEdit:
		if !draft.DiffersFrom(pristine) {
			c.fail("At least one field must be filled.")
			return ErrNoChangesProvided
		}
		if err := c.dir.Update(ctx, pristine.ID, changedFields(draft, pristine)); err != nil {
			c.fail(submitMessage(err, "Failed to update employee."))
			return err
		}
	default:
		return ErrNoActiveDraft
	}

	c.Cancel()
	return nil
}

func (c *Controller) fail(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = msg
}

// changedFields narrows an edit draft to the fields that differ from
// the pristine snapshot. A set image path always counts.
func changedFields(draft domain.Draft, pristine domain.Employee) domain.Draft {
	var out domain.Draft
	if draft.Name != "" && draft.Name != pristine.Name {
		out.Name = draft.Name
	}
	if draft.Phone != "" && draft.Phone != pristine.Phone {
		out.Phone = draft.Phone
	}
	if draft.DivisionID != "" && draft.DivisionID != pristine.Division.ID {
		out.DivisionID = draft.DivisionID
	}
	if draft.Position != "" && draft.Position != pristine.Position {
		out.Position = draft.Position
	}
	out.ImagePath = draft.ImagePath
	return out
}

// submitMessage renders a submission failure for display. Per-field
// server errors are joined comma-separated in server order.
func submitMessage(err error, fallback string) string {
	var rejected *gateway.RequestRejectedError
	if errors.As(err, &rejected) {
		if msg := rejected.ValidationMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
