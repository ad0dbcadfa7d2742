package domain

import "testing"

func TestDraftDiffersFrom(t *testing.T) {
	pristine := Employee{
		ID:       "e1",
		Name:     "Alice Johnson",
		Phone:    "081234567890",
		Division: Division{ID: "d1", Name: "Engineering"},
		Position: "Backend Developer",
	}

	unchanged := Draft{
		Name:       pristine.Name,
		Phone:      pristine.Phone,
		DivisionID: pristine.Division.ID,
		Position:   pristine.Position,
	}
	if unchanged.DiffersFrom(pristine) {
		t.Fatalf("expected prefilled draft to match pristine")
	}

	renamed := unchanged
	renamed.Name = "Alice J."
	if !renamed.DiffersFrom(pristine) {
		t.Fatalf("expected name change to count")
	}

	// A blank field means "left untouched", not "changed to empty".
	blanked := unchanged
	blanked.Position = ""
	if blanked.DiffersFrom(pristine) {
		t.Fatalf("expected blank field to be ignored")
	}

	withImage := unchanged
	withImage.ImagePath = "/tmp/photo.png"
	if !withImage.DiffersFrom(pristine) {
		t.Fatalf("expected new image to always count")
	}
}

func TestDraftIsComplete(t *testing.T) {
	full := Draft{
		Name:       "Alice Johnson",
		Phone:      "081234567890",
		DivisionID: "d1",
		Position:   "Backend Developer",
		ImagePath:  "/tmp/photo.png",
	}
	if !full.IsComplete() {
		t.Fatalf("expected fully populated draft to be complete")
	}

	partial := full
	partial.Phone = ""
	if partial.IsComplete() {
		t.Fatalf("expected missing phone to fail completeness")
	}
}
