// Package prepare runs the per-entity cleaning pipelines: raw CSV in,
// prepared CSV out, with stage summaries on the way.
package prepare

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"salesdw/internal/cleaner"
	"salesdw/internal/logging"
	"salesdw/internal/metrics"
	"salesdw/internal/rules"
	"salesdw/internal/table"
)

// Result summarizes one entity's cleaning run.
type Result struct {
	Entity  string
	RowsIn  int
	RowsOut int

	Before cleaner.Consistency
	After  cleaner.Consistency
}

// Dropped is the number of records removed during cleaning.
func (r Result) Dropped() int { return r.RowsIn - r.RowsOut }

// Entity applies the rule set for one entity table in rule order:
// standardize -> placeholders -> parse dates -> handle missing -> dedupe ->
// outliers -> coerce -> final shape.
//
// Dates are parsed before the missing-data policy runs so that unparseable
// required dates fall under the required-field drop rule.
//
// now anchors open-ended date bounds ("no future dates").
func Entity(rs rules.RuleSet, raw table.Table, now time.Time, sink cleaner.EventSink) (table.Table, Result) {
	res := Result{Entity: rs.Table, RowsIn: raw.Len()}

	c := cleaner.New(raw, sink)
	res.Before = c.Check(rs.Keys...)

	for field, mode := range rs.TextCase {
		c = c.StandardizeTextColumn(field, mode)
	}
	for field, mapping := range rs.ValueMaps {
		c = c.MapValues(field, mapping)
	}

	c = c.ReplacePlaceholders(rs.Placeholders...)

	for _, field := range rs.DateFields {
		c = c.ParseDates(field)
	}

	c = c.HandleMissingData(rs.Required, rs.Defaults)
	c = c.RemoveDuplicateRecords(rs.Keys...)

	for field, b := range rs.Bounds {
		c = c.FilterColumnOutliers(field, b.Min, b.Max)
	}
	for field, db := range rs.DateBounds {
		hi := db.Max
		if hi.IsZero() {
			hi = now
		}
		c = c.FilterDateOutliers(field, db.Min, hi)
	}

	for field, kind := range rs.Coercions {
		c = c.ConvertColumnType(field, kind)
	}

	c = c.ReorderColumns(rs.Order...)

	res.After = c.Check(rs.Keys...)
	out := c.Table()
	res.RowsOut = out.Len()
	return out, res
}

// RawFileName is the conventional raw CSV name for an entity table.
func RawFileName(entity string) string { return entity + "_data.csv" }

// PreparedFileName is the conventional prepared CSV name for an entity table.
func PreparedFileName(entity string) string { return entity + "_data_prepared.csv" }

// Run cleans every entity table from rawDir into preparedDir.
func Run(ctx context.Context, rawDir, preparedDir string) ([]Result, error) {
	var results []Result

	for _, entity := range rules.Tables() {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		rs := rules.ForTable(entity)
		start := time.Now()

		raw, err := table.ReadCSVFile(filepath.Join(rawDir, RawFileName(entity)))
		if err != nil {
			return results, fmt.Errorf("prepare %s: %w", entity, err)
		}

		sink := logSink(entity)
		out, res := Entity(rs, raw, time.Now().UTC(), sink)

		if err := table.WriteCSVFile(filepath.Join(preparedDir, PreparedFileName(entity)), out); err != nil {
			return results, fmt.Errorf("prepare %s: %w", entity, err)
		}

		metrics.IncCounter("prepare.rows_in", float64(res.RowsIn), "entity:"+entity)
		metrics.IncCounter("prepare.rows_out", float64(res.RowsOut), "entity:"+entity)
		metrics.IncCounter("prepare.rows_dropped", float64(res.Dropped()), "entity:"+entity)
		metrics.ObserveDuration("prepare.duration", time.Since(start), "entity:"+entity)

		logging.Info().
			Str("entity", entity).
			Int("rows_in", res.RowsIn).
			Int("rows_out", res.RowsOut).
			Int("dropped", res.Dropped()).
			Int("duplicates_before", res.Before.Duplicates).
			Int("duplicates_after", res.After.Duplicates).
			Dur("duration", time.Since(start).Truncate(time.Millisecond)).
			Msg("entity prepared")

		results = append(results, res)
	}

	return results, nil
}

// logSink adapts cleaning events onto the structured logger and metrics.
func logSink(entity string) cleaner.EventSink {
	return func(e cleaner.Event) {
		if e.Dropped > 0 {
			metrics.IncCounter("clean.records_dropped", float64(e.Dropped), "entity:"+entity, "op:"+e.Op)
		}
		logging.Debug().
			Str("entity", entity).
			Str("op", e.Op).
			Str("field", e.Field).
			Int("dropped", e.Dropped).
			Int("filled", e.Filled).
			Int("replaced", e.Replaced).
			Msg("clean step")
	}
}
