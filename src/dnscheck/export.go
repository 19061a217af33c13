// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteReportXLSX writes an analysis report to an Excel workbook with a
// Summary sheet and an Issues sheet. When rs is non-nil, the queried
// records are written to a third Records sheet.
func WriteReportXLSX(path string, report *AnalysisReport, rs *RecordSet) error {
	if report == nil {
		return fmt.Errorf("dnscheck: nil report")
	}

	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}

	summaryRows := [][]any{
		{"Domain", report.Domain},
		{"Analyzed at", report.Timestamp.Format("2006-01-02 15:04:05 MST")},
		{},
		{"Critical errors", report.Summary.Critical},
		{"Warnings", report.Summary.Warnings},
		{"Informational", report.Summary.Info},
		{"Total findings", report.Summary.Total},
	}
	if err := writeRows(f, summarySheet, summaryRows); err != nil {
		return err
	}

	const issuesSheet = "Issues"
	if _, err := f.NewSheet(issuesSheet); err != nil {
		return err
	}

	issueRows := [][]any{
		{"Severity", "Type", "Message", "Record", "Current value", "Recommendation"},
	}
	for _, issues := range [][]Issue{report.Errors, report.Warnings, report.Info} {
		for _, issue := range issues {
			issueRows = append(issueRows, []any{
				string(issue.Severity),
				string(issue.Type),
				issue.Message,
				issue.RecordName,
				issue.CurrentValue,
				issue.Recommendation,
			})
		}
	}
	if err := writeRows(f, issuesSheet, issueRows); err != nil {
		return err
	}

	if rs != nil {
		const recordsSheet = "Records"
		if _, err := f.NewSheet(recordsSheet); err != nil {
			return err
		}

		recordRows := [][]any{
			{"Type", "Name", "TTL", "Data", "Source"},
		}
		for _, rt := range supportedRecordTypes {
			res, ok := rs.Results[rt]
			if !ok {
				continue
			}
			if res.Err != nil {
				recordRows = append(recordRows, []any{
					string(rt), rs.Domain, "", "error: " + res.Err.Category(), res.Source(),
				})
				continue
			}
			for _, rec := range res.Records {
				recordRows = append(recordRows, []any{
					string(rec.Type), rec.Name, rec.TTL, rec.Data, res.Source(),
				})
			}
		}
		if err := writeRows(f, recordsSheet, recordRows); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// writeRows fills a sheet row by row starting at A1.
func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}
