package domain

// Employee represents one roster record as owned by the remote store.
// The client never mutates an Employee in place; changes round-trip
// through the API and the current page is reloaded.
type Employee struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Phone    string   `json:"phone"`
	Division Division `json:"division"`
	Position string   `json:"position"`
	Image    string   `json:"image"` // URL served by the remote store
}

// Division is read-only reference data used to populate the
// division selector on the add/edit form.
type Division struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Page is one fetched slice of the employee collection plus its
// pagination metadata. An empty collection is represented as
// TotalPages = 1 with no items.
type Page struct {
	Items      []Employee
	PageNumber int
	TotalPages int
}

// Session is the authenticated context established at login and
// persisted across restarts. Absence of a Session means the client
// is unauthenticated.
type Session struct {
	Username    string `json:"username"`
	Token       string `json:"token"`
	IsAdmin     bool   `json:"admin"`
	DisplayName string `json:"display_name"`
}

// Draft is the in-progress field set for a create or edit form.
// ImagePath points at a local file to be uploaded; it is empty when
// the image is unchanged in edit mode.
type Draft struct {
	Name       string
	Phone      string
	DivisionID string
	Position   string
	ImagePath  string
}

// IsComplete reports whether every field required for a create
// submission is populated.
func (d Draft) IsComplete() bool {
	return d.Name != "" && d.Phone != "" && d.DivisionID != "" && d.Position != "" && d.ImagePath != ""
}

// IsEmpty reports whether no field is populated at all.
func (d Draft) IsEmpty() bool {
	return d == Draft{}
}

// DiffersFrom reports whether any populated field of the draft
// changes the given pristine employee snapshot. A set ImagePath
// always counts as a change.
func (d Draft) DiffersFrom(pristine Employee) bool {
	if d.ImagePath != "" {
		return true
	}
	if d.Name != "" && d.Name != pristine.Name {
		return true
	}
	if d.Phone != "" && d.Phone != pristine.Phone {
		return true
	}
	if d.DivisionID != "" && d.DivisionID != pristine.Division.ID {
		return true
	}
	if d.Position != "" && d.Position != pristine.Position {
		return true
	}
	return false
}
