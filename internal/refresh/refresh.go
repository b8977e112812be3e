package refresh

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
)

// DefaultURL serves the current native catalogue.
const DefaultURL = "https://raw.githubusercontent.com/alloc8or/gta5-nativedb-data/master/natives.json"

// ErrEmptyBody is reported when the server answers 200 with no content.
var ErrEmptyBody = errors.New("empty response body")

// Refresher downloads the latest catalogue over the local cache file.
type Refresher struct {
	URL       string
	CachePath string
	Offline   bool
	UserAgent string
	Client    *http.Client
	Logger    logr.Logger
}

// Result describes the outcome of a refresh. Err is informational only:
// refresh failures never stop a run.
type Result struct {
	Updated bool
	Bytes   int64
	Err     error
}

// New creates a Refresher for url writing to cachePath.
func New(url, cachePath string, offline bool, logger logr.Logger) *Refresher {
	return &Refresher{
		URL:       url,
		CachePath: cachePath,
		Offline:   offline,
		Client:    &http.Client{},
		Logger:    logger,
	}
}

// Refresh performs a single GET of the catalogue and replaces the cache file
// with the response body. Any failure is logged and leaves the cache file
// untouched. In offline mode no request is made.
func (r *Refresher) Refresh(ctx context.Context) Result {
	if r.Offline {
		r.Logger.Info("Offline mode")
		return Result{}
	}

	r.Logger.Info("Downloading latest catalogue", "url", r.URL)
	n, err := r.download(ctx)
	if err != nil {
		r.Logger.Error(err, "Failed to download latest catalogue, using existing data", "url", r.URL)
		return Result{Err: err}
	}
	r.Logger.Info("Catalogue updated", "path", r.CachePath, "size", formatBytes(n))
	return Result{Updated: true, Bytes: n}
}

func (r *Refresher) download(ctx context.Context) (n int64, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return 0, errors.Wrap(err, "create http request")
	}
	req.Header.Set("Accept", "application/json")
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "http request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, errors.Errorf("http status %d: %s", resp.StatusCode, string(body))
	}

	// Write next to the cache and rename over it, so a failed download
	// never leaves a partial cache behind.
	tmpFile, err := os.CreateTemp(filepath.Dir(r.CachePath), ".natives-*.json")
	if err != nil {
		return 0, errors.Wrap(err, "failed to create temporary file")
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if err != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	n, err = io.Copy(tmpFile, resp.Body)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to write %s to temporary file %s", r.URL, tmpPath)
	}
	if n == 0 {
		err = errors.WithStack(ErrEmptyBody)
		return 0, err
	}
	if err = tmpFile.Chmod(0644); err != nil {
		return 0, errors.Wrapf(err, "failed to chmod temporary file %s", tmpPath)
	}
	if err = tmpFile.Close(); err != nil {
		return 0, errors.Wrapf(err, "failed to close temporary file %s", tmpPath)
	}
	if err = os.Rename(tmpPath, r.CachePath); err != nil {
		return 0, errors.Wrapf(err, "failed to replace %s", r.CachePath)
	}
	return n, nil
}

func formatBytes(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
