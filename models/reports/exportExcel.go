package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExportBankReconcileExcel writes the assembled report as an xlsx workbook.
func ExportBankReconcileExcel(report *BankReconcileReport, w io.Writer) error {
	f := excelize.NewFile()
	sheetName := "Sheet1"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	// Add headers
	headings := []string{
		"RowType", "BankTransactionId", "Date", "ReferenceNumber",
		"Deposit", "Withdrawal", "VoucherType", "VoucherId",
		"VoucherAmount", "Status",
	}
	col := 'A'
	for _, h := range headings {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}

	// Add data
	for i, row := range report.Rows {
		rowNo := fmt.Sprint(i + 2)
		f.SetCellValue(sheetName, "A"+rowNo, row.RowType)
		f.SetCellValue(sheetName, "B"+rowNo, row.BankTransactionId)
		f.SetCellValue(sheetName, "C"+rowNo, row.Date.Format("2006-01-02"))
		f.SetCellValue(sheetName, "D"+rowNo, row.ReferenceNumber)
		f.SetCellValue(sheetName, "E"+rowNo, row.Deposit.String())
		f.SetCellValue(sheetName, "F"+rowNo, row.Withdrawal.String())
		f.SetCellValue(sheetName, "G"+rowNo, row.VoucherType)
		f.SetCellValue(sheetName, "H"+rowNo, row.VoucherId)
		f.SetCellValue(sheetName, "I"+rowNo, row.VoucherAmount.String())
		f.SetCellValue(sheetName, "J"+rowNo, row.StatusLabel)
	}

	summaryRow := fmt.Sprint(len(report.Rows) + 3)
	f.SetCellValue(sheetName, "A"+summaryRow, "OpeningBalancePerSystem")
	f.SetCellValue(sheetName, "B"+summaryRow, report.Summary.OpeningBalancePerSystem.String())
	f.SetCellValue(sheetName, "C"+summaryRow, "ClosingBalancePerSystem")
	f.SetCellValue(sheetName, "D"+summaryRow, report.Summary.ClosingBalancePerSystem.String())
	f.SetCellValue(sheetName, "E"+summaryRow, "ClosingBalancePerStatement")
	f.SetCellValue(sheetName, "F"+summaryRow, report.Summary.ClosingBalancePerStatement.String())
	f.SetCellValue(sheetName, "G"+summaryRow, "Difference")
	f.SetCellValue(sheetName, "H"+summaryRow, report.Summary.Difference.String())

	return f.Write(w)
}
