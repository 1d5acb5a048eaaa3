package policyfile_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/corsica/corsica/policyfile"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	initialPolicyFile = `resources:
  /api/:
    access-control:
      allow-origin: "http://localhost"
`
	updatedPolicyFile = `resources:
  /api/:
    access-control:
      allow-origin: "*"
`
	reloadTimeout = 5 * time.Second
)

func startWatcher(t *testing.T, path string) <-chan *policyfile.File {
	t.Helper()
	files := make(chan *policyfile.File, 16)
	w, err := policyfile.Watch(path, zerolog.Nop(), func(f *policyfile.File) {
		files <- f
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return files
}

func awaitReload(t *testing.T, files <-chan *policyfile.File) *policyfile.File {
	t.Helper()
	select {
	case f := <-files:
		return f
	case <-time.After(reloadTimeout):
		t.Fatal("timed out waiting for a reload")
		return nil // unreachable
	}
}

func TestWatchReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corsica.yaml")
	require.NoError(t, os.WriteFile(path, []byte(initialPolicyFile), 0o644))
	files := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte(updatedPolicyFile), 0o644))
	f := awaitReload(t, files)
	policies, err := f.Policies()
	require.NoError(t, err)
	delta, ok := policies["/api/"].Evaluate("http://acme.ro")
	require.True(t, ok)
	assert.Equal(t, "*", delta["Access-Control-Allow-Origin"])
}

func TestWatchPicksUpCreatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corsica.yaml")
	files := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte(initialPolicyFile), 0o644))
	f := awaitReload(t, files)
	assert.Contains(t, f.Resources, "/api/")
}

func TestWatchIgnoresMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corsica.yaml")
	require.NoError(t, os.WriteFile(path, []byte(initialPolicyFile), 0o644))
	files := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("resources: ]["), 0o644))
	select {
	case f := <-files:
		t.Fatalf("unexpected reload of a malformed file: %+v", f)
	case <-time.After(500 * time.Millisecond):
		// no reload, as expected
	}

	require.NoError(t, os.WriteFile(path, []byte(updatedPolicyFile), 0o644))
	f := awaitReload(t, files)
	_, err := f.Policies()
	assert.NoError(t, err)
}

func TestWatchIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corsica.yaml")
	require.NoError(t, os.WriteFile(path, []byte(initialPolicyFile), 0o644))
	files := startWatcher(t, path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte(updatedPolicyFile), 0o644))
	select {
	case f := <-files:
		t.Fatalf("unexpected reload triggered by a sibling file: %+v", f)
	case <-time.After(500 * time.Millisecond):
		// no reload, as expected
	}
}
