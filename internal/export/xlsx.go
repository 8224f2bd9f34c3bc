package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/user/fleetwatch/internal/model"
)

const sheetName = "Devices"

// WriteXLSX writes the devices to an XLSX workbook with the same
// column layout as the CSV export.
func WriteXLSX(path string, devices []*model.DeviceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := Headers(devices)
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for rowIdx, device := range devices {
		for col, h := range headers {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, cellValue(device, h)); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

// cellValue keeps numbers and booleans typed in the workbook instead
// of flattening everything to text.
func cellValue(device *model.DeviceRecord, field string) any {
	v, ok := device.Get(field)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t
	default:
		if f, ok := device.Float(field); ok {
			return f
		}
		return device.String(field)
	}
}
