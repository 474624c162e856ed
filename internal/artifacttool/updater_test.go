package artifacttool

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toolServer serves a HEAD-able, GET-able zip archive containing the tool
// binary, counting requests by method.
func toolServer(t *testing.T, etag string) (*httptest.Server, *atomic.Int64, *atomic.Int64) {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, err := writer.Create(archiveStem + "/" + binaryName + binext())
	require.NoError(t, err)
	_, err = entry.Write([]byte("#!/bin/sh\nexit 0\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	var heads, gets atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", etag)
		switch r.Method {
		case http.MethodHead:
			heads.Add(1)
		case http.MethodGet:
			gets.Add(1)
			w.Write(buf.Bytes())
		}
	}))
	t.Cleanup(server.Close)

	return server, &heads, &gets
}

func TestResolveOverridePath(t *testing.T) {
	server, heads, gets := toolServer(t, `"0xABC"`)
	t.Setenv(OverridePathEnvKey, "/somewhere/else/artifacttool")
	t.Setenv(OverrideURLEnvKey, server.URL)

	u := NewUpdater(zerolog.Nop(), WithCacheRoot(t.TempDir()))
	path, err := u.Resolve(context.Background(), "https://myaccount.visualstudio.com")

	require.NoError(t, err)
	assert.Equal(t, "/somewhere/else/artifacttool", path)
	assert.Zero(t, heads.Load())
	assert.Zero(t, gets.Load())
}

func TestResolveDownloadsAndExtracts(t *testing.T) {
	server, heads, gets := toolServer(t, `"0x8D8C91F2D4F3B4A"`)
	t.Setenv(OverridePathEnvKey, "")
	t.Setenv(OverrideURLEnvKey, server.URL)

	root := t.TempDir()
	u := NewUpdater(zerolog.Nop(), WithCacheRoot(root))

	path, err := u.Resolve(context.Background(), "https://myaccount.visualstudio.com")
	require.NoError(t, err)

	// tag is the etag without quotes and 0x prefix, lowercased
	want := filepath.Join(root, cacheDirName, "8d8c91f2d4f3b4a", archiveStem, binaryName+binext())
	assert.Equal(t, want, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "exit 0")

	assert.EqualValues(t, 1, heads.Load())
	assert.EqualValues(t, 1, gets.Load())
}

func TestResolveCacheHitSkipsDownload(t *testing.T) {
	server, heads, gets := toolServer(t, `"0xCAFE"`)
	t.Setenv(OverridePathEnvKey, "")
	t.Setenv(OverrideURLEnvKey, server.URL)

	root := t.TempDir()
	cached := filepath.Join(root, cacheDirName, "cafe", archiveStem, binaryName+binext())
	require.NoError(t, os.MkdirAll(filepath.Dir(cached), 0o755))
	require.NoError(t, os.WriteFile(cached, []byte("cached"), 0o755))

	u := NewUpdater(zerolog.Nop(), WithCacheRoot(root))
	path, err := u.Resolve(context.Background(), "https://myaccount.visualstudio.com")

	require.NoError(t, err)
	assert.Equal(t, cached, path)
	// the update check still happens, only the download is skipped
	assert.EqualValues(t, 1, heads.Load())
	assert.Zero(t, gets.Load())

	// cached content is trusted as-is
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cached", string(data))
}

func TestResolveMissingETag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(server.Close)
	t.Setenv(OverridePathEnvKey, "")
	t.Setenv(OverrideURLEnvKey, server.URL)

	u := NewUpdater(zerolog.Nop(), WithCacheRoot(t.TempDir()))
	_, err := u.Resolve(context.Background(), "https://myaccount.visualstudio.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ETag")
}

func TestNormalizeTag(t *testing.T) {
	cases := map[string]string{
		`"0x8D8C91F2D4F3B4A"`: "8d8c91f2d4f3b4a",
		`"abc123"`:            "abc123",
		"W/0xFF":              "w/ff",
	}

	for etag, want := range cases {
		assert.Equal(t, want, normalizeTag(etag), "etag %s", etag)
	}
}
