// Package export writes the enriched inventory to tabular files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/user/fleetwatch/internal/model"
)

// Headers derives the column set from the first record's field order,
// with country appended when the inventory did not report it.
func Headers(devices []*model.DeviceRecord) []string {
	if len(devices) == 0 {
		return nil
	}

	headers := append([]string(nil), devices[0].Keys()...)
	for _, h := range headers {
		if h == model.FieldCountry {
			return headers
		}
	}
	return append(headers, model.FieldCountry)
}

// WriteCSV writes the devices to a CSV file, passthrough fields
// included verbatim.
func WriteCSV(path string, devices []*model.DeviceRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := Headers(devices)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(headers))
	for _, device := range devices {
		for i, h := range headers {
			row[i] = device.String(h)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
