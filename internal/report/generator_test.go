package report

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/fleetwatch/internal/model"
	"github.com/user/fleetwatch/internal/util"
)

func sampleStats() *model.Stats {
	return &model.Stats{
		TotalDevices:                  100,
		CASActivated:                  80,
		DevicesInSA:                   90,
		DevicesNotInSA:                -10,
		DevicesOnline:                 60,
		ConnectedLast24h:              50,
		NewConnectedLast24h:           5,
		NewConnectedLast7Days:         12,
		NewConnectedSinceFirstOfMonth: 20,
		Retailers: map[string]*model.RetailerCounts{
			"ACME":           {Total: 70, Activated: 60, InSA: 65},
			"Zenith":         {Total: 70, Activated: 10, InSA: 5},
			model.NoRetailer: {Total: 30, Activated: 20, InSA: 25},
		},
	}
}

func TestRenderContainsCounters(t *testing.T) {
	gen := NewGenerator(&util.Config{})

	html, err := gen.Render(sampleStats())
	require.NoError(t, err)

	assert.Contains(t, html, "Total Number of devices: 100")
	assert.Contains(t, html, "Total Number of CAS activated devices: 80")
	assert.Contains(t, html, ">90</span>")
	assert.Contains(t, html, ">-10</span>")
	assert.Contains(t, html, "currently online: 60")
	assert.Contains(t, html, "last 24 hours: 50")
	assert.Contains(t, html, "since the first of the month: 20")
	assert.Contains(t, html, model.NoRetailer)
}

func TestRenderRetailerOrder(t *testing.T) {
	gen := NewGenerator(&util.Config{})

	html, err := gen.Render(sampleStats())
	require.NoError(t, err)

	// Largest fleet first, names break ties.
	acme := strings.Index(html, "ACME")
	zenith := strings.Index(html, "Zenith")
	none := strings.Index(html, model.NoRetailer)

	require.GreaterOrEqual(t, acme, 0)
	require.GreaterOrEqual(t, zenith, 0)
	require.GreaterOrEqual(t, none, 0)
	assert.Less(t, acme, zenith)
	assert.Less(t, zenith, none)
}

func TestRetailerRows(t *testing.T) {
	rows := retailerRows(sampleStats())

	require.Len(t, rows, 3)
	assert.Equal(t, "ACME", rows[0].Name)
	assert.Equal(t, "Zenith", rows[1].Name)
	assert.Equal(t, model.NoRetailer, rows[2].Name)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(&util.Config{ReportDir: dir})

	path, err := gen.WriteFile(sampleStats())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total Number of devices: 100")
}
