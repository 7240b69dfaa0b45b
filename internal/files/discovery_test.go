package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiscovery(t *testing.T) {
	basePath := "/test/base"
	discovery := NewDiscovery(basePath)

	assert.NotNil(t, discovery)
	assert.Equal(t, basePath, discovery.basePath)
}

func TestFindWorkbooks(t *testing.T) {
	tests := []struct {
		name          string
		files         []string
		expectedCount int
		description   string
	}{
		{
			name:          "only workbooks",
			files:         []string{"march.xlsx", "april.xls", "may.XLSX"},
			expectedCount: 3,
			description:   "Should find all workbooks regardless of case",
		},
		{
			name:          "mixed file types",
			files:         []string{"timesheet.xlsx", "data.csv", "doc.pdf", "sheet.xls"},
			expectedCount: 2,
			description:   "Should find only workbooks",
		},
		{
			name:          "lock files skipped",
			files:         []string{"timesheet.xlsx", "~$timesheet.xlsx"},
			expectedCount: 1,
			description:   "Should skip Excel lock files",
		},
		{
			name:          "no workbooks",
			files:         []string{"data.csv", "doc.pdf", "readme.txt"},
			expectedCount: 0,
			description:   "Should find no workbooks",
		},
		{
			name:          "empty directory",
			files:         []string{},
			expectedCount: 0,
			description:   "Should handle empty directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
			}

			discovery := NewDiscovery(dir)
			found, err := discovery.FindWorkbooks(".")
			require.NoError(t, err)
			assert.Len(t, found, tt.expectedCount, tt.description)
		})
	}
}

func TestFindWorkbooksSortedByModTime(t *testing.T) {
	dir := t.TempDir()

	older := filepath.Join(dir, "older.xlsx")
	newer := filepath.Join(dir, "newer.xlsx")
	require.NoError(t, os.WriteFile(older, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(newer, []byte("x"), 0644))

	now := time.Now()
	require.NoError(t, os.Chtimes(older, now.Add(-time.Hour), now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(newer, now, now))

	discovery := NewDiscovery(dir)
	found, err := discovery.FindWorkbooks(".")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "older.xlsx", found[0].Name)
	assert.Equal(t, "newer.xlsx", found[1].Name)
}

func TestFindWorkbooksMissingDirectory(t *testing.T) {
	discovery := NewDiscovery(t.TempDir())
	_, err := discovery.FindWorkbooks("nope")
	assert.Error(t, err)
}

func TestFindReports(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{
		"Weekly_Prod_List_2025-03-07.xlsx",
		"Weekly_Prod_List_2025-03-14.xlsx",
		"timesheet.xlsx",
		"Weekly_Prod_List_notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	older := filepath.Join(dir, "Weekly_Prod_List_2025-03-07.xlsx")
	now := time.Now()
	require.NoError(t, os.Chtimes(older, now.Add(-time.Hour), now.Add(-time.Hour)))

	discovery := NewDiscovery(dir)
	reports, err := discovery.FindReports(".")
	require.NoError(t, err)
	require.Len(t, reports, 2)

	// Newest first
	assert.Equal(t, "Weekly_Prod_List_2025-03-14.xlsx", reports[0].Name)
	assert.Equal(t, "Weekly_Prod_List_2025-03-07.xlsx", reports[1].Name)
}

func TestGetLatestFile(t *testing.T) {
	now := time.Now()
	files := []FileInfo{
		{Name: "a.xlsx", ModTime: now.Add(-2 * time.Hour)},
		{Name: "b.xlsx", ModTime: now},
		{Name: "c.xlsx", ModTime: now.Add(-time.Hour)},
	}

	latest, ok := GetLatestFile(files)
	require.True(t, ok)
	assert.Equal(t, "b.xlsx", latest.Name)

	_, ok = GetLatestFile(nil)
	assert.False(t, ok)
}
