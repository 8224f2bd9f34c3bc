package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/fleetwatch/internal/model"
)

func decodeDevice(t *testing.T, raw string) *model.DeviceRecord {
	t.Helper()
	var rec model.DeviceRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	return &rec
}

func TestHeadersAppendCountry(t *testing.T) {
	devices := []*model.DeviceRecord{
		decodeDevice(t, `{"device_id":"D1","locationIp":"1.2.3.4","province":"Gauteng"}`),
	}

	assert.Equal(t,
		[]string{"device_id", "locationIp", "province", "country"},
		Headers(devices))
}

func TestHeadersKeepExistingCountry(t *testing.T) {
	devices := []*model.DeviceRecord{
		decodeDevice(t, `{"device_id":"D1","country":"ZA","city":"Durban"}`),
	}

	assert.Equal(t,
		[]string{"device_id", "country", "city"},
		Headers(devices))
}

func TestHeadersEmptyInput(t *testing.T) {
	assert.Nil(t, Headers(nil))
}

func TestWriteCSV(t *testing.T) {
	devices := []*model.DeviceRecord{
		decodeDevice(t, `{"device_id":"D1","online":true,"syncTime":1700000000,"country":"ZA"}`),
		decodeDevice(t, `{"device_id":"D2","online":false,"syncTime":null,"country":"US"}`),
	}

	path := filepath.Join(t.TempDir(), "devices.csv")
	require.NoError(t, WriteCSV(path, devices))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"device_id", "online", "syncTime", "country"}, rows[0])
	assert.Equal(t, []string{"D1", "true", "1700000000", "ZA"}, rows[1])
	assert.Equal(t, []string{"D2", "false", "", "US"}, rows[2])
}
