package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/webrenew/leadscout/internal/core"
)

// WriteWorkbook emits an XLSX workbook with a sheet per tier plus an
// all-leads sheet, header styling, and frozen header rows.
func (e *Exporter) WriteWorkbook(leads []*core.Lead, ts string) (string, error) {
	path := e.path("leads", ts, "xlsx")

	wb := excelize.NewFile()
	defer wb.Close()

	headerStyle, err := wb.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return "", fmt.Errorf("creating header style: %w", err)
	}

	byTier := map[string][]*core.Lead{}
	for _, lead := range leads {
		byTier[lead.Tier] = append(byTier[lead.Tier], lead)
	}

	sheets := []struct {
		name  string
		leads []*core.Lead
	}{
		{"All Leads", leads},
		{"Tier A", byTier["A"]},
		{"Tier B", byTier["B"]},
		{"Tier C", byTier["C"]},
	}
	if len(byTier["D"]) > 0 {
		sheets = append(sheets, struct {
			name  string
			leads []*core.Lead
		}{"Tier D", byTier["D"]})
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := wb.SetSheetName("Sheet1", sheet.name); err != nil {
				return "", fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := wb.NewSheet(sheet.name); err != nil {
			return "", fmt.Errorf("creating sheet %s: %w", sheet.name, err)
		}
		if err := writeSheet(wb, sheet.name, sheet.leads, headerStyle); err != nil {
			return "", err
		}
	}

	if err := wb.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving %s: %w", path, err)
	}
	return path, nil
}

var workbookHeader = []string{
	"Domain", "Brand", "Score", "Tier", "Vertical",
	"CMS", "WP Version", "HTTPS", "Perf",
	"Phone", "Email", "Spam Confidence", "Override", "Evidence",
}

func writeSheet(wb *excelize.File, sheet string, leads []*core.Lead, headerStyle int) error {
	for col, title := range workbookHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("resolving header cell: %w", err)
		}
		if err := wb.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("writing header on %s: %w", sheet, err)
		}
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(workbookHeader), 1)
	if err := wb.SetCellStyle(sheet, "A1", endHeader, headerStyle); err != nil {
		return fmt.Errorf("styling header on %s: %w", sheet, err)
	}
	if err := wb.SetPanes(sheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header on %s: %w", sheet, err)
	}

	for row, lead := range leads {
		perf := ""
		if lead.PSI != nil && lead.PSI.Perf != nil {
			perf = fmt.Sprintf("%d", *lead.PSI.Perf)
		}
		values := []interface{}{
			lead.Domain,
			lead.BrandName,
			lead.Score,
			lead.Tier,
			lead.VerticalTag,
			lead.Tech.CMS,
			lead.Tech.WPVersion,
			lead.Security.HTTPS,
			perf,
			lead.Contact.Phone,
			lead.Contact.Email,
			lead.SpamConfidence,
			lead.OverrideReason,
			strings.Join(lead.EvidenceURLs, " "),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return fmt.Errorf("resolving cell: %w", err)
			}
			if err := wb.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("writing row on %s: %w", sheet, err)
			}
		}
	}

	if err := wb.SetColWidth(sheet, "A", "B", 30); err != nil {
		return fmt.Errorf("sizing columns on %s: %w", sheet, err)
	}
	return wb.SetColWidth(sheet, "N", "N", 60)
}
