package cleaner

import (
	"testing"
	"time"

	"salesdw/internal/table"
)

func custTable(rows ...[]any) table.Table {
	t := table.New("CustomerID", "Name", "Region", "LoyaltyPoints")
	for _, r := range rows {
		t.AppendRow(r)
	}
	return t
}

func TestRemoveDuplicateRecordsKeepsFirst(t *testing.T) {
	in := custTable(
		[]any{"C1", "Ann", "east", "10"},
		[]any{"C2", "Bob", "west", "20"},
		[]any{"C1", "Ann Again", "south", "30"},
	)

	out := New(in, nil).RemoveDuplicateRecords("CustomerID").Table()

	if out.Len() != 2 {
		t.Fatalf("rows = %d, want 2", out.Len())
	}
	if got := out.Value(0, "Name"); got != "Ann" {
		t.Errorf("first kept row Name = %v, want Ann", got)
	}
	if got := out.Value(1, "CustomerID"); got != "C2" {
		t.Errorf("order not preserved, row 1 = %v", got)
	}

	// applying again changes nothing
	again := New(out, nil).RemoveDuplicateRecords("CustomerID").Table()
	if again.Len() != out.Len() {
		t.Errorf("second pass dropped rows: %d -> %d", out.Len(), again.Len())
	}
}

func TestRemoveDuplicateRecordsCompositeKey(t *testing.T) {
	in := custTable(
		[]any{"C1", "Ann", "east", "10"},
		[]any{"C1", "Bob", "east", "10"},
		[]any{"C1", "Ann", "east", "10"},
	)

	out := New(in, nil).RemoveDuplicateRecords("CustomerID", "Name").Table()
	if out.Len() != 2 {
		t.Fatalf("rows = %d, want 2", out.Len())
	}
}

func TestReplacePlaceholdersCaseInsensitive(t *testing.T) {
	in := custTable(
		[]any{"C1", "N/A", "Unknown", "null"},
		[]any{"C2", "Bob", "NONE", "12"},
	)

	out := New(in, nil).ReplacePlaceholders(DefaultPlaceholders...).Table()

	if got := out.Value(0, "Name"); got != nil {
		t.Errorf("N/A not nulled: %v", got)
	}
	if got := out.Value(0, "Region"); got != nil {
		t.Errorf("Unknown not nulled: %v", got)
	}
	if got := out.Value(1, "Region"); got != nil {
		t.Errorf("NONE not nulled: %v", got)
	}
	if got := out.Value(1, "Name"); got != "Bob" {
		t.Errorf("real value touched: %v", got)
	}
}

func TestStandardizeTextColumn(t *testing.T) {
	in := custTable(
		[]any{"C1", "  ann lee ", "EAST", "1"},
	)

	out := New(in, nil).
		StandardizeTextColumn("Name", CaseTitle).
		StandardizeTextColumn("Region", CaseLower).
		Table()

	if got := out.Value(0, "Name"); got != "Ann Lee" {
		t.Errorf("Name = %v, want Ann Lee", got)
	}
	if got := out.Value(0, "Region"); got != "east" {
		t.Errorf("Region = %v, want east", got)
	}
}

func TestMapValues(t *testing.T) {
	in := custTable(
		[]any{"C1", "Ann", "EAST", "1"},
		[]any{"C2", "Bob", "  south ", "2"},
		[]any{"C3", "Cyd", "mars", "3"},
	)

	out := New(in, nil).MapValues("Region", map[string]string{
		"east": "East", "south": "South",
	}).Table()

	if got := out.Value(0, "Region"); got != "East" {
		t.Errorf("EAST -> %v, want East", got)
	}
	if got := out.Value(1, "Region"); got != "South" {
		t.Errorf("south -> %v, want South", got)
	}
	// unmapped values stay, trimmed
	if got := out.Value(2, "Region"); got != "mars" {
		t.Errorf("unmapped -> %v, want mars", got)
	}
}

func TestHandleMissingData(t *testing.T) {
	in := custTable(
		[]any{"C1", nil, "east", "1"},
		[]any{"C2", "Bob", nil, nil},
	)

	var events []Event
	sink := func(e Event) { events = append(events, e) }

	out := New(in, sink).HandleMissingData(
		[]string{"CustomerID", "Name"},
		map[string]any{"Region": "Unknown", "LoyaltyPoints": int64(0)},
	).Table()

	if out.Len() != 1 {
		t.Fatalf("rows = %d, want 1 (row missing required Name dropped)", out.Len())
	}
	if got := out.Value(0, "Region"); got != "Unknown" {
		t.Errorf("Region fill = %v", got)
	}
	if got := out.Value(0, "LoyaltyPoints"); got != int64(0) {
		t.Errorf("LoyaltyPoints fill = %v", got)
	}

	if len(events) == 0 {
		t.Fatal("no events emitted")
	}
	last := events[len(events)-1]
	if last.Dropped != 1 || last.Filled != 2 {
		t.Errorf("event dropped=%d filled=%d, want 1/2", last.Dropped, last.Filled)
	}
}

func TestFilterColumnOutliersInclusiveBounds(t *testing.T) {
	in := custTable(
		[]any{"C1", "Ann", "east", float64(0)},
		[]any{"C2", "Bob", "west", float64(10000)},
		[]any{"C3", "Cyd", "east", float64(10001)},
		[]any{"C4", "Dee", "west", float64(-1)},
		[]any{"C5", "Eve", "east", nil},
	)

	out := New(in, nil).FilterColumnOutliers("LoyaltyPoints", 0, 10000).Table()

	if out.Len() != 3 {
		t.Fatalf("rows = %d, want 3 (bounds inclusive, missing kept)", out.Len())
	}
	if got := out.Value(2, "CustomerID"); got != "C5" {
		t.Errorf("missing-value row dropped: %v", got)
	}
}

func TestFilterColumnOutliersDropsNonNumeric(t *testing.T) {
	in := custTable(
		[]any{"C1", "Ann", "east", "plenty"},
		[]any{"C2", "Bob", "west", "50"},
	)

	out := New(in, nil).FilterColumnOutliers("LoyaltyPoints", 0, 100).Table()
	if out.Len() != 1 {
		t.Fatalf("rows = %d, want 1", out.Len())
	}
	if got := out.Value(0, "CustomerID"); got != "C2" {
		t.Errorf("kept %v, want C2", got)
	}
}

func TestFilterDateOutliers(t *testing.T) {
	lo := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	in := table.New("ID", "When")
	in.AppendRow([]any{"1", time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC)})
	in.AppendRow([]any{"2", lo})
	in.AppendRow([]any{"3", hi})
	in.AppendRow([]any{"4", time.Date(2035, 1, 1, 0, 0, 0, 0, time.UTC)})
	in.AppendRow([]any{"5", nil})

	out := New(in, nil).FilterDateOutliers("When", lo, hi).Table()

	if out.Len() != 3 {
		t.Fatalf("rows = %d, want 3", out.Len())
	}
}

func TestConvertColumnType(t *testing.T) {
	in := custTable(
		[]any{"C1", "Ann", "east", "12"},
		[]any{"C2", "Bob", "west", "12.0"},
		[]any{"C3", "Cyd", "east", "twelve"},
		[]any{"C4", "Dee", "west", nil},
	)

	out := New(in, nil).ConvertColumnType("LoyaltyPoints", KindInt).Table()

	if out.Len() != 3 {
		t.Fatalf("rows = %d, want 3 (uncoercible dropped, missing kept)", out.Len())
	}
	if got := out.Value(0, "LoyaltyPoints"); got != int64(12) {
		t.Errorf("coerced = %v (%T)", got, got)
	}
	if got := out.Value(1, "LoyaltyPoints"); got != int64(12) {
		t.Errorf("whole float -> int failed: %v", got)
	}
	if got := out.Value(2, "LoyaltyPoints"); got != nil {
		t.Errorf("missing value changed: %v", got)
	}
}

func TestParseDatesMixedFormats(t *testing.T) {
	in := table.New("ID", "When")
	in.AppendRow([]any{"1", "2024-03-05"})
	in.AppendRow([]any{"2", "2024/03/05"})
	in.AppendRow([]any{"3", "03/05/2024"})
	in.AppendRow([]any{"4", "05.03.2024"})
	in.AppendRow([]any{"5", "not-a-date"})

	out := New(in, nil).ParseDates("When").Table()

	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		got, ok := out.Value(i, "When").(time.Time)
		if !ok || !got.Equal(want) {
			t.Errorf("row %d: When = %v, want %v", i, out.Value(i, "When"), want)
		}
	}
	if got := out.Value(4, "When"); got != nil {
		t.Errorf("unparseable date = %v, want nil", got)
	}
}

func TestRenameAndReorderColumns(t *testing.T) {
	in := custTable([]any{"C1", "Ann", "east", "1"})

	out := New(in, nil).
		RenameColumns(map[string]string{"CustomerID": "customer_id", "Name": "name"}).
		ReorderColumns("name", "customer_id").
		Table()

	if len(out.Columns) != 2 || out.Columns[0] != "name" || out.Columns[1] != "customer_id" {
		t.Fatalf("columns = %v", out.Columns)
	}
	if got := out.Value(0, "customer_id"); got != "C1" {
		t.Errorf("customer_id = %v", got)
	}
}

func TestDropColumns(t *testing.T) {
	in := custTable([]any{"C1", "Ann", "east", "1"})

	out := New(in, nil).DropColumns("Region", "NotThere").Table()
	if len(out.Columns) != 3 {
		t.Fatalf("columns = %v", out.Columns)
	}
}

func TestCheckCountsNullsAndDuplicates(t *testing.T) {
	in := custTable(
		[]any{"C1", nil, "east", "1"},
		[]any{"C1", "Ann", nil, "2"},
		[]any{"C2", "Bob", "west", "3"},
	)

	got := New(in, nil).Check("CustomerID")
	if got.Duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", got.Duplicates)
	}
	if got.NullCounts["Name"] != 1 || got.NullCounts["Region"] != 1 {
		t.Errorf("null counts = %v", got.NullCounts)
	}
}

func TestChainDoesNotMutateInput(t *testing.T) {
	in := custTable([]any{"C1", " ann ", "east", "1"})

	_ = New(in, nil).StandardizeTextColumn("Name", CaseTitle).Table()

	if got := in.Value(0, "Name"); got != " ann " {
		t.Errorf("input mutated: %v", got)
	}
}
