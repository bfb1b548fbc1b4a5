package health

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	tableSheet   = "Account Health"
	summarySheet = "Overview"
)

// ExportWorkbook writes the table and summary cards of a view into a new
// workbook. The caller closes the returned file.
func ExportWorkbook(v View) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), tableSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeTableSheet(f, v); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummarySheet(f, v); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeTableSheet(f *excelize.File, v View) error {
	header := make([]any, 0, len(v.Table.Headers))
	for _, h := range v.Table.Headers {
		header = append(header, h.Label)
	}
	if err := f.SetSheetRow(tableSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range v.Table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if row.Placeholder {
			if err := f.SetCellValue(tableSheet, cell, row.Message); err != nil {
				return fmt.Errorf("write placeholder: %w", err)
			}
			last, err := excelize.CoordinatesToCellName(row.ColSpan, i+2)
			if err != nil {
				return err
			}
			if err := f.MergeCell(tableSheet, cell, last); err != nil {
				return fmt.Errorf("merge placeholder: %w", err)
			}
			continue
		}
		values := make([]any, 0, len(row.Cells)+1)
		values = append(values, row.Shop)
		for _, c := range row.Cells {
			values = append(values, c.Text)
		}
		if err := f.SetSheetRow(tableSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(v.Table.Headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(tableSheet, "A", last, 22)
}

func writeSummarySheet(f *excelize.File, v View) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	rows := [][]any{
		{"Platform", v.Label},
		{"Date", v.SelectedDate},
		{"Shop", v.Shop},
		{},
		{"Metric", "Value", "Status"},
	}
	for _, c := range v.Cards {
		rows = append(rows, []any{c.Label, c.Text, string(c.Class)})
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return fmt.Errorf("write summary row %d: %w", i, err)
		}
	}
	return f.SetColWidth(summarySheet, "A", "C", 24)
}
