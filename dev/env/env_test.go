package devenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module ratequote-backend\n\ngo 1.22.2\n"), 0600))
	nested := filepath.Join(root, "internal", "pricing")
	require.NoError(t, os.MkdirAll(nested, 0777))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	defer os.Chdir(wd)

	found, err := GetWorkspaceRoot()
	require.NoError(t, err)
	require.Equal(t, root, found)

	path, err := ResolvePath("<dev_state>/resty/bql")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dev", ".state", "resty", "bql"), path)

	path, err = ResolvePath("/tmp/out")
	require.NoError(t, err)
	require.Equal(t, "/tmp/out", path)
}
