package view

import (
	"testing"

	"support-bot-backend/internal/action"
)

func TestPaginateClampsOutOfRangePages(t *testing.T) {
	cases := []struct {
		name    string
		count   int
		page    int
		perPage int
		want    Page
	}{
		{"empty set still renders page one", 0, 1, 8, Page{Number: 1, Total: 1, Start: 0, End: 0}},
		{"negative page clamps to first", 20, -3, 8, Page{Number: 1, Total: 3, Start: 0, End: 8}},
		{"zero page clamps to first", 20, 0, 8, Page{Number: 1, Total: 3, Start: 0, End: 8}},
		{"past-the-end clamps to last", 20, 99, 8, Page{Number: 3, Total: 3, Start: 16, End: 20}},
		{"exact boundary", 16, 2, 8, Page{Number: 2, Total: 2, Start: 8, End: 16}},
		{"single short page", 3, 1, 8, Page{Number: 1, Total: 1, Start: 0, End: 3}},
		{"zero perPage falls back to default", 25, 3, 0, Page{Number: 3, Total: 3, Start: 20, End: 25}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Paginate(tc.count, tc.page, tc.perPage)
			if got != tc.want {
				t.Errorf("Paginate(%d, %d, %d) = %+v, want %+v", tc.count, tc.page, tc.perPage, got, tc.want)
			}
		})
	}
}

func TestNavRowEdges(t *testing.T) {
	pageAction := myTicketsPageAction()

	first := navRow(Page{Number: 1, Total: 3}, pageAction)
	if len(first) != 2 {
		t.Fatalf("first page row should have indicator and next only, got %d buttons", len(first))
	}
	if first[1].Action.Page != 2 {
		t.Errorf("next from page 1 should target page 2, got %d", first[1].Action.Page)
	}

	middle := navRow(Page{Number: 2, Total: 3}, pageAction)
	if len(middle) != 3 {
		t.Fatalf("middle page row should have prev, indicator and next, got %d", len(middle))
	}
	if middle[0].Action.Page != 1 || middle[2].Action.Page != 3 {
		t.Errorf("middle page targets wrong neighbours: %+v", middle)
	}
	if middle[1].Action.Kind != action.KindNoop {
		t.Errorf("indicator should be inert, got %q", middle[1].Action.Kind)
	}

	last := navRow(Page{Number: 3, Total: 3}, pageAction)
	if len(last) != 2 {
		t.Fatalf("last page row should have prev and indicator only, got %d", len(last))
	}

	single := navRow(Page{Number: 1, Total: 1}, pageAction)
	if len(single) != 1 {
		t.Fatalf("single page row should be indicator only, got %d", len(single))
	}
}

func TestJumpRowOnlyForLongListings(t *testing.T) {
	pageAction := ownersPageAction()

	if row := jumpRow(Page{Number: 2, Total: 5}, pageAction); row != nil {
		t.Errorf("no jump row expected at %d pages, got %+v", 5, row)
	}

	row := jumpRow(Page{Number: 3, Total: 12}, pageAction)
	if len(row) != 2 {
		t.Fatalf("expected first/last shortcuts, got %+v", row)
	}
	if row[0].Action.Page != 1 || row[1].Action.Page != 12 {
		t.Errorf("jump targets wrong, got %+v", row)
	}
}
