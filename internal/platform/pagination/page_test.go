package pagination

import (
	"math"
	"testing"
)

func TestNewSpecValidates(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		size    int
		sort    []SortKey
		wantErr bool
	}{
		{name: "first page", index: 0, size: 20},
		{name: "sorted", index: 3, size: 1, sort: []SortKey{{Field: "value", Direction: Descending}}},
		{name: "negative index", index: -1, size: 20, wantErr: true},
		{name: "zero size", index: 0, size: 0, wantErr: true},
		{name: "empty sort field", index: 0, size: 5, sort: []SortKey{{Field: " "}}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSpec(tc.index, tc.size, tc.sort)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewSpecCopiesSort(t *testing.T) {
	sort := []SortKey{{Field: "id"}}
	spec, err := NewSpec(0, 1, sort)
	if err != nil {
		t.Fatalf("new spec: %v", err)
	}
	sort[0].Field = "value"
	if spec.Sort[0].Field != "id" {
		t.Fatal("spec must not alias caller slice")
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name              string
		index, size       int
		total             int
		wantStart, wantEn int
	}{
		{name: "full first page", index: 0, size: 2, total: 3, wantStart: 0, wantEn: 2},
		{name: "partial last page", index: 1, size: 2, total: 3, wantStart: 2, wantEn: 3},
		{name: "past the end", index: 5, size: 2, total: 3, wantStart: 3, wantEn: 3},
		{name: "empty set", index: 0, size: 20, total: 0, wantStart: 0, wantEn: 0},
		{name: "overflowing offset", index: math.MaxInt, size: 2, total: 3, wantStart: 3, wantEn: 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := Spec{Index: tc.index, Size: tc.size}
			start, end := spec.Window(tc.total)
			if start != tc.wantStart || end != tc.wantEn {
				t.Fatalf("window = [%d, %d), want [%d, %d)", start, end, tc.wantStart, tc.wantEn)
			}
		})
	}
}

func TestOffsetOverflow(t *testing.T) {
	if _, ok := (Spec{Index: math.MaxInt / 2, Size: 3}).Offset(); ok {
		t.Fatal("expected overflow to be reported")
	}
	if offset, ok := (Spec{Index: 4, Size: 5}).Offset(); !ok || offset != 20 {
		t.Fatalf("offset = %d, %v, want 20, true", offset, ok)
	}
}

func TestTotalPages(t *testing.T) {
	if got := TotalPages(0, 20); got != 0 {
		t.Fatalf("total pages = %d, want 0", got)
	}
	if got := TotalPages(3, 2); got != 2 {
		t.Fatalf("total pages = %d, want 2", got)
	}
	if got := TotalPages(4, 2); got != 2 {
		t.Fatalf("total pages = %d, want 2", got)
	}
}

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 20, Max: 100}
	if got := ClampPageSize(0, cfg); got != 20 {
		t.Fatalf("zero size = %d, want default 20", got)
	}
	if got := ClampPageSize(-3, cfg); got != 20 {
		t.Fatalf("negative size = %d, want default 20", got)
	}
	if got := ClampPageSize(500, cfg); got != 100 {
		t.Fatalf("large size = %d, want max 100", got)
	}
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("unconfigured size = %d, want 1", got)
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection("DESC"); err != nil || d != Descending {
		t.Fatalf("DESC = %v, %v", d, err)
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Fatal("expected invalid direction error")
	}
	if Descending.String() != "DESC" || Ascending.String() != "ASC" {
		t.Fatal("unexpected direction names")
	}
}
