package exporter

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodsheet/pkg/contracts/domain"
)

func TestEntryCSVExporterWrite(t *testing.T) {
	exp := NewEntryCSVExporter()

	entries := []domain.TimesheetEntry{
		{
			ItemID:          "T1",
			ItemName:        "Fix login",
			LogOwner:        "alice",
			LogHoursDecimal: 4,
			LogDate:         datePtr(2025, 3, 10),
			WeeklyPoints:    1,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, exp.Write(&buf, entries))

	// BOM prefix for Excel.
	raw := buf.Bytes()
	require.True(t, len(raw) > 3)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, raw[:3])

	records, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header := records[0]
	row := records[1]
	require.Equal(t, len(header), len(row))
	assert.Equal(t, "ItemID", header[0])
	assert.Equal(t, "T1", row[0])
	assert.Equal(t, "Fix login", row[1])

	byName := make(map[string]string, len(header))
	for i, h := range header {
		byName[h] = row[i]
	}
	assert.Equal(t, "alice", byName["LogOwner"])
	assert.Equal(t, "2025-03-10", byName["LogDate"])
	assert.Equal(t, "4.00", byName["LogHours"])
	assert.Equal(t, "1.00", byName["WeeklyPoints"])
	assert.Equal(t, "", byName["RequestedDate"])
}

func TestEntryCSVExporterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEntryCSVExporter().Write(&buf, nil))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}
