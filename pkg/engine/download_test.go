// pkg/engine/download_test.go

package engine

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) *easy_io.RuntimeContext {
	t.Helper()
	return easy_io.NewContext(context.Background(), "test")
}

func makeTarball(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o755,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestDownloadReleaseCachesTarball(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	rc := testContext(t)

	tarball := makeTarball(t, map[string]string{
		"TES3MP-Server/tes3mp-server": "binary",
	})

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write(tarball)
	}))
	defer srv.Close()

	url := srv.URL + "/release.tar.gz"

	dest := t.TempDir()
	require.NoError(t, DownloadRelease(rc, url, dest))
	assert.FileExists(t, filepath.Join(dest, "TES3MP-Server", "tes3mp-server"))
	assert.Equal(t, 1, hits)

	// Second install reuses the cached tarball instead of refetching.
	dest2 := t.TempDir()
	require.NoError(t, DownloadRelease(rc, url, dest2))
	assert.FileExists(t, filepath.Join(dest2, "TES3MP-Server", "tes3mp-server"))
	assert.Equal(t, 1, hits)
}

func TestDownloadReleaseRejectsHTTPError(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	rc := testContext(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	err := DownloadRelease(rc, srv.URL+"/missing.tar.gz", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")

	// A failed download must not leave anything behind in the cache.
	entries, readErr := os.ReadDir(filepath.Join(os.Getenv("XDG_CACHE_HOME"), "tes3mp-easy"))
	if readErr == nil {
		assert.Empty(t, entries)
	}
}
