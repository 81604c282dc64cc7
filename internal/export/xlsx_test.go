package export_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/resell-dashboard/internal/core/domain"
	"github.com/ammerola/resell-dashboard/internal/export"
	"github.com/ammerola/resell-dashboard/test/helpers"
)

func readCell(t *testing.T, sheet *xlsx.Sheet, row, col int) string {
	t.Helper()
	cell, err := sheet.Cell(row, col)
	require.NoError(t, err)
	return cell.Value
}

func TestWriteXLSX_Inventory(t *testing.T) {
	items := []domain.InventoryItem{
		*helpers.CreateTestInventoryItem(),
		*helpers.CreateTestInventoryItem(func(i *domain.InventoryItem) {
			i.ID = 2
			i.Name = "Loose Screws"
			i.Category = nil
			i.SupplierID = nil
			i.Quantity = 1
		}),
	}

	data, err := export.Bytes("Inventory", items, export.InventoryColumns())
	require.NoError(t, err)

	file, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	assert.Equal(t, "Inventory", sheet.Name)
	assert.Equal(t, 3, sheet.MaxRow)

	tests := []struct {
		name string
		row  int
		col  int
		want string
	}{
		{name: "header", row: 0, col: 1, want: "Name"},
		{name: "name", row: 1, col: 1, want: "Test Blender"},
		{name: "category", row: 1, col: 3, want: "electronics"},
		{name: "quantity", row: 1, col: 4, want: "10"},
		{name: "unit_price", row: 1, col: 5, want: "49.99"},
		{name: "stock_value", row: 1, col: 6, want: "499.90"},
		{name: "null_category", row: 2, col: 3, want: ""},
		{name: "null_supplier", row: 2, col: 9, want: ""},
		{name: "second_name", row: 2, col: 1, want: "Loose Screws"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readCell(t, sheet, tt.row, tt.col))
		})
	}
}

func TestWriteXLSX_SuppliersEmpty(t *testing.T) {
	data, err := export.Bytes[domain.Supplier]("Suppliers", nil, export.SupplierColumns())
	require.NoError(t, err)

	file, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	sheet := file.Sheets[0]
	assert.Equal(t, 1, sheet.MaxRow)
	assert.Equal(t, "Contact Person", readCell(t, sheet, 0, 3))
}
