// internal/export/xlsx.go
package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column is one spreadsheet column of T.
type Column[T domain.Resource] struct {
	Header string
	Value  func(T) any
}

// InventoryColumns is the column set of an inventory export.
func InventoryColumns() []Column[domain.InventoryItem] {
	return []Column[domain.InventoryItem]{
		{Header: "ID", Value: func(i domain.InventoryItem) any { return i.ID }},
		{Header: "Name", Value: func(i domain.InventoryItem) any { return i.Name }},
		{Header: "SKU", Value: func(i domain.InventoryItem) any { return i.SKU }},
		{Header: "Category", Value: func(i domain.InventoryItem) any {
			c, _ := i.ResourceCategory()
			return c
		}},
		{Header: "Quantity", Value: func(i domain.InventoryItem) any { return i.Quantity }},
		{Header: "Unit Price", Value: func(i domain.InventoryItem) any { return i.UnitPrice }},
		{Header: "Stock Value", Value: func(i domain.InventoryItem) any { return i.StockValue() }},
		{Header: "Reorder Level", Value: func(i domain.InventoryItem) any { return i.ReorderLevel }},
		{Header: "Low Stock", Value: func(i domain.InventoryItem) any { return i.IsLowStock() }},
		{Header: "Supplier ID", Value: func(i domain.InventoryItem) any {
			if i.SupplierID == nil {
				return ""
			}
			return *i.SupplierID
		}},
		{Header: "Location", Value: func(i domain.InventoryItem) any { return i.Location }},
		{Header: "Updated At", Value: func(i domain.InventoryItem) any { return i.UpdatedAt }},
	}
}

// SupplierColumns is the column set of a supplier export.
func SupplierColumns() []Column[domain.Supplier] {
	return []Column[domain.Supplier]{
		{Header: "ID", Value: func(s domain.Supplier) any { return s.ID }},
		{Header: "Name", Value: func(s domain.Supplier) any { return s.Name }},
		{Header: "Category", Value: func(s domain.Supplier) any { return s.Category }},
		{Header: "Contact Person", Value: func(s domain.Supplier) any { return s.ContactPerson }},
		{Header: "Email", Value: func(s domain.Supplier) any { return s.Email }},
		{Header: "Phone", Value: func(s domain.Supplier) any { return s.Phone }},
		{Header: "Active", Value: func(s domain.Supplier) any { return s.IsActive }},
		{Header: "Updated At", Value: func(s domain.Supplier) any { return s.UpdatedAt }},
	}
}

// WriteXLSX writes rows as a single-sheet workbook with a bold header row.
func WriteXLSX[T domain.Resource](w io.Writer, sheetName string, rows []T, columns []Column[T]) error {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, col := range columns {
		cell := headerRow.AddCell()
		cell.Value = col.Header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, item := range rows {
		dataRow := sheet.AddRow()
		for _, col := range columns {
			setCell(dataRow.AddCell(), col.Value(item))
		}
	}

	if len(columns) > 0 {
		sheet.SetColWidth(1, len(columns), 18)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

// Bytes is WriteXLSX into memory.
func Bytes[T domain.Resource](sheetName string, rows []T, columns []Column[T]) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sheetName, rows, columns); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setCell(cell *xlsx.Cell, v any) {
	switch val := v.(type) {
	case int:
		cell.SetInt(val)
	case int64:
		cell.SetInt64(val)
	case bool:
		cell.SetBool(val)
	case decimal.Decimal:
		cell.SetString(val.StringFixed(2))
	case time.Time:
		if val.IsZero() {
			cell.SetString("")
			return
		}
		cell.SetString(val.UTC().Format(time.RFC3339))
	case string:
		cell.SetString(val)
	default:
		cell.SetString(fmt.Sprint(val))
	}
}
