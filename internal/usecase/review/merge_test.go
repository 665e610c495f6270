package review

import (
	"context"
	"errors"
	"testing"

	"github.com/frosty865/VOFC-Engine-sub003/internal/ports"
)

func TestMergeDataShallowMerge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.submitVulnerability(t, "Unlocked server room")

	view, err := f.svc.MergeData(ctx, MergeDataInput{
		SubmissionID: id,
		Patch: map[string]any{
			"discipline": "Physical Security",
			"notes":      "verified on site",
		},
	})
	if err != nil {
		t.Fatalf("MergeData() error = %v", err)
	}
	if view.Data["vulnerability"] != "Unlocked server room" {
		t.Fatalf("existing key lost: %v", view.Data)
	}
	if view.Data["notes"] != "verified on site" {
		t.Fatalf("patched key missing: %v", view.Data)
	}

	// A second merge overwrites only the keys it names.
	view, err = f.svc.MergeData(ctx, MergeDataInput{
		SubmissionID: id,
		Patch:        map[string]any{"notes": "revised"},
	})
	if err != nil {
		t.Fatalf("second MergeData() error = %v", err)
	}
	if view.Data["notes"] != "revised" {
		t.Fatalf("notes = %v, want revised", view.Data["notes"])
	}
	if view.Data["discipline"] != "Physical Security" {
		t.Fatalf("discipline lost on second merge: %v", view.Data)
	}
}

func TestMergeDataNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.MergeData(context.Background(), MergeDataInput{
		SubmissionID: "missing",
		Patch:        map[string]any{"a": 1},
	})
	if !errors.Is(err, ports.ErrSubmissionNotFound) {
		t.Fatalf("MergeData() error = %v, want ErrSubmissionNotFound", err)
	}
}

func TestMergeDataRequiresPatch(t *testing.T) {
	f := newFixture(t)

	id := f.submitVulnerability(t, "Unlocked server room")

	if _, err := f.svc.MergeData(context.Background(), MergeDataInput{SubmissionID: id}); err == nil {
		t.Fatal("MergeData() error = nil, want patch validation failure")
	}
}
