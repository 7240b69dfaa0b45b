package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodsheet/internal/config"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()

	root := t.TempDir()
	dataDir := filepath.Join(root, "data")
	paths := &config.Paths{
		ExecutableDir: root,
		DataDir:       dataDir,
		WebDir:        filepath.Join(root, "web"),
		StaticDir:     filepath.Join(root, "web", "static"),
		UploadsDir:    filepath.Join(dataDir, "uploads"),
		ReportsDir:    filepath.Join(dataDir, "reports"),
		LogsDir:       filepath.Join(root, "logs"),
		DatabaseFile:  filepath.Join(dataDir, "timesheet.db"),
	}
	require.NoError(t, paths.EnsureDirectories())
	return paths
}

func TestManagerFileExists(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	require.NoError(t, os.WriteFile(paths.GetReportPath("r.xlsx"), []byte("x"), 0644))

	assert.True(t, manager.FileExists("reports/r.xlsx"))
	assert.False(t, manager.FileExists("reports/missing.xlsx"))
}

func TestManagerSaveUpload(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	saved, err := manager.SaveUpload("timesheet.xlsx", strings.NewReader("workbook-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(saved, paths.UploadsDir))
	assert.True(t, strings.HasSuffix(saved, "_timesheet.xlsx"))

	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, "workbook-bytes", string(data))
}

func TestManagerSaveUploadStripsDirectories(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	saved, err := manager.SaveUpload("../../evil/timesheet.xlsx", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(saved, paths.UploadsDir))
	assert.True(t, strings.HasSuffix(saved, "_timesheet.xlsx"))
}

func TestManagerCopyFile(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	require.NoError(t, os.WriteFile(paths.GetUploadPath("src.xlsx"), []byte("content"), 0644))
	require.NoError(t, manager.CopyFile("uploads/src.xlsx", "reports/dst.xlsx"))

	data, err := os.ReadFile(paths.GetReportPath("dst.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	// Source still present
	assert.True(t, manager.FileExists("uploads/src.xlsx"))
}

func TestManagerResolvePath(t *testing.T) {
	paths := testPaths(t)
	manager := NewManager(paths)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"uploads prefix", "uploads/f.xlsx", paths.GetUploadPath("f.xlsx")},
		{"reports prefix", "reports/f.xlsx", paths.GetReportPath("f.xlsx")},
		{"logs prefix", "logs/app.log", paths.GetLogPath("app.log")},
		{"web prefix", "web/index.html", paths.GetWebFilePath("index.html")},
		{"static prefix", "static/app.css", paths.GetStaticFilePath("app.css")},
		{"bare name lands in data", "timesheet.db", paths.DatabaseFile},
		{"absolute passthrough", "/tmp/abs.xlsx", "/tmp/abs.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, manager.resolvePath(tt.path))
		})
	}
}
