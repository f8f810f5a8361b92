// pkg/engine/download.go

package engine

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/xdg"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const downloadTimeout = 10 * time.Minute

// DownloadRelease streams a release tarball into dest and leaves the
// tarball's own top-level directory in place, for installs that locate
// their root by name afterwards.
func DownloadRelease(rc *easy_io.RuntimeContext, url, dest string) error {
	return fetchTarball(rc, url, dest, false)
}

// downloadAndExtract streams a release tarball into dest and flattens a
// single top-level directory so binaries land directly in dest.
func downloadAndExtract(rc *easy_io.RuntimeContext, url, dest string) error {
	return fetchTarball(rc, url, dest, true)
}

func fetchTarball(rc *easy_io.RuntimeContext, url, dest string, flatten bool) error {
	logger := otelzap.Ctx(rc.Ctx)

	archive, err := cachedDownload(rc, url)
	if err != nil {
		return err
	}

	f, err := os.Open(archive)
	if err != nil {
		return cerr.Wrapf(err, "failed to open %s", archive)
	}
	defer f.Close()

	if err := extractTarGz(f, dest); err != nil {
		return err
	}

	if flatten {
		if err := flattenSingleSubdir(dest); err != nil {
			return err
		}
	}

	logger.Debug("Tarball extracted", zap.String("dest", dest))
	return nil
}

// cachedDownload returns a local copy of url, reusing the cached tarball
// from an earlier run so a reinstall does not refetch the release.
func cachedDownload(rc *easy_io.RuntimeContext, url string) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)

	path := xdg.CachePath(filepath.Base(url))
	if _, err := os.Stat(path); err == nil {
		logger.Debug("Using cached release tarball", zap.String("path", path))
		return path, nil
	}
	if err := xdg.EnsureDir(path); err != nil {
		return "", cerr.Wrap(err, "failed to create cache dir")
	}

	req, err := http.NewRequestWithContext(rc.Ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", cerr.Wrap(err, "failed to build download request")
	}

	client := &http.Client{Timeout: downloadTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", cerr.Wrapf(err, "download failed for %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", cerr.Newf("download failed for %s: HTTP %d", url, resp.StatusCode)
	}

	// Same-directory temp plus rename so an interrupted download never
	// poisons the cache.
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".part-*")
	if err != nil {
		return "", cerr.Wrap(err, "failed to stage download")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", cerr.Wrapf(err, "download interrupted for %s", url)
	}
	if err := tmp.Close(); err != nil {
		return "", cerr.Wrap(err, "failed to finish download")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", cerr.Wrap(err, "failed to place tarball in cache")
	}
	return path, nil
}

func extractTarGz(r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return cerr.Wrap(err, "release is not a gzip archive")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return cerr.Wrap(err, "failed to read tar entry")
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return cerr.Wrapf(err, "failed to create %s", target)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return cerr.Wrapf(err, "failed to create parent of %s", target)
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return cerr.Wrapf(err, "failed to create %s", target)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return cerr.Wrapf(err, "failed to write %s", target)
			}
			if err := f.Close(); err != nil {
				return cerr.Wrapf(err, "failed to close %s", target)
			}
		case tar.TypeSymlink:
			// Bundled lib/ dirs use relative symlinks for sonames.
			if strings.Contains(hdr.Linkname, "..") {
				continue
			}
			_ = os.Remove(target)
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return cerr.Wrapf(err, "failed to link %s", target)
			}
		}
	}
}

// safeJoin rejects tar entries that would escape dest.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", cerr.Newf("archive entry %q escapes destination", name)
	}
	return target, nil
}

// flattenSingleSubdir moves contents up when the tarball wraps everything
// in one release-named directory.
func flattenSingleSubdir(dest string) error {
	entries, err := os.ReadDir(dest)
	if err != nil {
		return cerr.Wrapf(err, "failed to read %s", dest)
	}

	var dirs []os.DirEntry
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e)
		} else {
			// A file at the top level means the layout is already flat.
			return nil
		}
	}
	if len(dirs) != 1 {
		return nil
	}

	src := filepath.Join(dest, dirs[0].Name())
	children, err := os.ReadDir(src)
	if err != nil {
		return cerr.Wrapf(err, "failed to read %s", src)
	}
	for _, child := range children {
		if err := os.Rename(filepath.Join(src, child.Name()), filepath.Join(dest, child.Name())); err != nil {
			return cerr.Wrapf(err, "failed to move %s up", child.Name())
		}
	}
	return os.Remove(src)
}
