package artifacttool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// Environment variables honored by the updater.
const (
	// OverridePathEnvKey points at a local artifact tool binary to use as-is,
	// skipping the update check entirely. The value is not validated.
	OverridePathEnvKey = "UPACK_TOOL_OVERRIDE_PATH"
	// OverrideURLEnvKey replaces the default archive URL.
	OverrideURLEnvKey = "UPACK_TOOL_OVERRIDE_URL"
)

// DefaultBinaryURL is the archive fetched when no URL override is configured.
const DefaultBinaryURL = "https://dist.packfeed.dev/artifacttool/artifacttool-release.zip"

const (
	cacheDirName = "ArtifactTool"
	archiveStem  = "artifacttool-release"
	binaryName   = "artifacttool"
)

// Updater resolves the path to a locally cached copy of the artifact tool,
// downloading and extracting a new copy when the remote entity tag doesn't
// match any cached version.
//
// The cache key is the normalized ETag of the remote archive; an existing
// entry is trusted on path existence alone, with no integrity check. Stale
// entries are never purged.
type Updater struct {
	client *http.Client
	log    zerolog.Logger
	root   string
}

type UpdaterOption func(u *Updater)

// WithHTTPClient replaces the client used for the HEAD and GET requests.
func WithHTTPClient(client *http.Client) UpdaterOption {
	return func(u *Updater) {
		u.client = client
	}
}

// WithCacheRoot relocates the tool cache, which otherwise lives under the
// system temp directory.
func WithCacheRoot(dir string) UpdaterOption {
	return func(u *Updater) {
		u.root = dir
	}
}

func NewUpdater(log zerolog.Logger, options ...UpdaterOption) *Updater {
	u := Updater{
		client: http.DefaultClient,
		log:    log,
		root:   filepath.Join(os.TempDir(), "upackctl"),
	}

	for _, opt := range options {
		opt(&u)
	}

	return &u
}

// Resolve returns the path to the artifact tool binary to use against the
// given service, provisioning it first when needed.
func (u *Updater) Resolve(ctx context.Context, service string) (string, error) {
	if override := os.Getenv(OverridePathEnvKey); override != "" {
		u.log.Debug().Str("path", override).Msgf("artifact tool path overridden via %s", OverridePathEnvKey)
		return override, nil
	}

	u.log.Debug().Str("service", service).Msg("checking for a new artifact tool")
	return u.update(ctx)
}

func (u *Updater) update(ctx context.Context) (string, error) {
	url := DefaultBinaryURL
	if override := os.Getenv(OverrideURLEnvKey); override != "" {
		url = override
		u.log.Debug().Str("url", url).Msgf("artifact tool url overridden via %s", OverrideURLEnvKey)
	}

	tag, err := u.latestTag(ctx, url)
	if err != nil {
		return "", err
	}
	u.log.Debug().Str("tag", tag).Msg("latest artifact tool version")

	dir := filepath.Join(u.root, cacheDirName, tag)
	binary := filepath.Join(dir, archiveStem, binaryName+binext())

	if _, err := os.Stat(binary); err == nil {
		u.log.Debug().Str("path", binary).Msg("artifact tool already cached")
		return binary, nil
	}

	if err := u.fetch(ctx, url, dir); err != nil {
		return "", err
	}

	return binary, nil
}

// latestTag reads the entity tag of the remote archive and normalizes it
// into a cache directory name. The tag is opaque; no ordering or semantic
// comparison happens anywhere.
func (u *Updater) latestTag(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to check for artifact tool updates: %w", err)
	}
	defer resp.Body.Close()

	etag := resp.Header.Get("ETag")
	if etag == "" {
		return "", fmt.Errorf("response from %s carries no ETag header", url)
	}

	return normalizeTag(etag), nil
}

// fetch downloads the archive and extracts it into the tagged cache
// directory. There is no atomicity here: a crash mid-extraction leaves a
// partial directory that later runs will treat as a cache hit.
func (u *Updater) fetch(ctx context.Context, url, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache folder %s: %w", dir, err)
	}

	u.log.Debug().Str("url", url).Str("dir", dir).Msg("downloading artifact tool")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download artifact tool: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("received unexpected response when downloading artifact tool: http%d", resp.StatusCode)
	}

	archive := filepath.Join(dir, filepath.Base(url))
	out, err := os.Create(archive)
	if err != nil {
		return fmt.Errorf("failed to create archive file %s: %w", archive, err)
	}

	data, finish := progressReader(resp.Body, resp.ContentLength)
	_, err = io.Copy(out, data)
	finish()
	out.Close()
	if err != nil {
		return fmt.Errorf("failed to write archive %s: %w", archive, err)
	}

	return extract(archive, dir)
}

// normalizeTag strips the surrounding quotes and the 0x prefix some storage
// backends put on their entity tags, and lowercases the rest.
func normalizeTag(etag string) string {
	tag := strings.Trim(etag, `"`)
	tag = strings.ReplaceAll(tag, "0x", "")
	return strings.ToLower(tag)
}

func binext() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
