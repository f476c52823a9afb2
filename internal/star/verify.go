package star

import (
	"context"

	"salesdw/internal/logging"
	"salesdw/internal/storage"
)

// TableCheck is one table's verification result. For the fact table,
// MissingRefs counts non-null foreign key values with no dimension row;
// dimension tables always have zero.
type TableCheck struct {
	Table       string
	Rows        int64
	MissingRefs int64
	Pass        bool
}

// Report is a read-only warehouse verification.
type Report struct {
	Tables []TableCheck
}

func (r Report) Pass() bool {
	for _, t := range r.Tables {
		if !t.Pass {
			return false
		}
	}
	return true
}

// Check returns the result for one table, or a zero value if absent.
func (r Report) Check(table string) TableCheck {
	for _, t := range r.Tables {
		if t.Table == table {
			return t
		}
	}
	return TableCheck{}
}

// Verify counts rows per warehouse table and confirms every non-null fact
// foreign key resolves to a dimension row. Never mutates state.
func Verify(ctx context.Context, repo storage.Repository) (Report, error) {
	var report Report

	for _, rule := range DimensionRules() {
		n, err := repo.CountRows(ctx, rule.Table)
		if err != nil {
			return report, err
		}
		report.Tables = append(report.Tables, TableCheck{Table: rule.Table, Rows: n, Pass: true})
	}

	salesRows, err := repo.CountRows(ctx, TableSales)
	if err != nil {
		return report, err
	}

	var missing int64
	for _, rule := range DimensionRules() {
		m, err := repo.CountMissingRefs(ctx, TableSales, rule.FactColumn, rule.Table, rule.KeyColumn)
		if err != nil {
			return report, err
		}
		if m > 0 {
			logging.Warn().
				Str("column", rule.FactColumn).
				Int64("unresolved", m).
				Msg("fact rows reference missing dimension members")
		}
		missing += m
	}

	report.Tables = append(report.Tables, TableCheck{
		Table:       TableSales,
		Rows:        salesRows,
		MissingRefs: missing,
		Pass:        missing == 0,
	})
	return report, nil
}
