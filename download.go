// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"syscall"
	"time"
)

// ProgressFunc receives the number of bytes written so far and the total
// announced by the server.
type ProgressFunc func(written int64, total int64)

// downloadState is the configuration collected by the downloader builders.
type downloadState struct {
	url      string
	toTemp   bool
	dir      string
	progress ProgressFunc
	opts     []ConfigOption
}

func (s downloadState) withOptions(opts []ConfigOption) downloadState {
	s.opts = append(slices.Clone(s.opts), opts...)
	return s
}

// Downloader fetches an archive over HTTP and opens it. The builder types
// ensure that Download is only reachable once the URL and the destination
// are set:
//
//	a, err := arkiv.NewDownloader().
//		URL("https://example.com/release.tar.gz").
//		ToTemp().
//		OnProgress(func(written, total int64) { ... }).
//		Download(ctx)
type Downloader struct {
	s downloadState
}

// NewDownloader returns an empty [Downloader].
func NewDownloader() Downloader {
	return Downloader{}
}

// URL sets the location of the archive.
func (d Downloader) URL(u string) DownloaderWithURL {
	d.s.url = u
	return DownloaderWithURL{d.s}
}

// ToTemp stores the archive in a temporary directory, which is removed when
// the returned [Archive] is closed or garbage collected.
func (d Downloader) ToTemp() DownloaderWithDestination {
	d.s.toTemp = true
	return DownloaderWithDestination{d.s}
}

// ToDirectory stores the archive in dir, which is created if absent.
func (d Downloader) ToDirectory(dir string) DownloaderWithDestination {
	d.s.dir = dir
	return DownloaderWithDestination{d.s}
}

// OnProgress sets a callback that observes the download.
func (d Downloader) OnProgress(fn ProgressFunc) Downloader {
	d.s.progress = fn
	return d
}

// Options adds configuration for the download and the returned [Archive].
func (d Downloader) Options(opts ...ConfigOption) Downloader {
	d.s = d.s.withOptions(opts)
	return d
}

// DownloaderWithURL is a [Downloader] that still needs a destination.
type DownloaderWithURL struct {
	s downloadState
}

// ToTemp stores the archive in a temporary directory, see [Downloader.ToTemp].
func (d DownloaderWithURL) ToTemp() ReadyDownloader {
	d.s.toTemp = true
	return ReadyDownloader{d.s}
}

// ToDirectory stores the archive in dir, which is created if absent.
func (d DownloaderWithURL) ToDirectory(dir string) ReadyDownloader {
	d.s.dir = dir
	return ReadyDownloader{d.s}
}

// OnProgress sets a callback that observes the download.
func (d DownloaderWithURL) OnProgress(fn ProgressFunc) DownloaderWithURL {
	d.s.progress = fn
	return d
}

// Options adds configuration for the download and the returned [Archive].
func (d DownloaderWithURL) Options(opts ...ConfigOption) DownloaderWithURL {
	d.s = d.s.withOptions(opts)
	return d
}

// DownloaderWithDestination is a [Downloader] that still needs a URL.
type DownloaderWithDestination struct {
	s downloadState
}

// URL sets the location of the archive.
func (d DownloaderWithDestination) URL(u string) ReadyDownloader {
	d.s.url = u
	return ReadyDownloader{d.s}
}

// OnProgress sets a callback that observes the download.
func (d DownloaderWithDestination) OnProgress(fn ProgressFunc) DownloaderWithDestination {
	d.s.progress = fn
	return d
}

// Options adds configuration for the download and the returned [Archive].
func (d DownloaderWithDestination) Options(opts ...ConfigOption) DownloaderWithDestination {
	d.s = d.s.withOptions(opts)
	return d
}

// ReadyDownloader has a URL and a destination.
type ReadyDownloader struct {
	s downloadState
}

// OnProgress sets a callback that observes the download. The callback is
// called before every chunk is read, at least once with (0, total) and, on
// success, last with (total, total). Progress tracking requires the server
// to announce the content length.
func (d ReadyDownloader) OnProgress(fn ProgressFunc) ReadyDownloader {
	d.s.progress = fn
	return d
}

// Options adds configuration for the download and the returned [Archive].
func (d ReadyDownloader) Options(opts ...ConfigOption) ReadyDownloader {
	d.s = d.s.withOptions(opts)
	return d
}

// Download fetches the archive and opens it.
//
// Failed requests and non-success status codes are reported as
// [ErrInvalidRequest], URLs without a file name as [ErrInvalidURL] and file
// names that do not resolve to a registered archive format as
// [ErrUnsupportedArchive]. Nothing is kept on failure.
func (d ReadyDownloader) Download(ctx context.Context) (*Archive, error) {
	return d.s.download(ctx)
}

// Download fetches the archive at rawURL into a temporary directory and opens it.
func Download(ctx context.Context, rawURL string, opts ...ConfigOption) (*Archive, error) {
	return NewDownloader().URL(rawURL).ToTemp().Options(opts...).Download(ctx)
}

func (s downloadState) download(ctx context.Context) (a *Archive, err error) {
	cfg := NewConfig(s.opts...)
	td := &TelemetryData{Operation: "download"}
	start := time.Now()
	defer func() { td.finish(ctx, cfg, start, err) }()

	u, err := url.Parse(s.url)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, newError(ErrInvalidURL, "download", s.url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, newError(ErrInvalidURL, "download", s.url, err)
	}
	cfg.Logger().Debug("download", "url", s.url)
	resp, err := cfg.HTTPClient().Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newError(ErrInvalidRequest, "download", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(ErrInvalidRequest, "download", s.url, fmt.Errorf("unexpected status %q", resp.Status))
	}

	name, ok := fileNameFromURL(u)
	if !ok {
		return nil, newError(ErrInvalidURL, "download", s.url, errors.New("no file name in path"))
	}
	td.ExtractedType = InferFormat(name).String()

	total := resp.ContentLength
	if s.progress != nil && total < 0 {
		return nil, newError(ErrInvalidRequest, "download", s.url, errors.New("missing content-length"))
	}

	var store *storage
	if s.toTemp {
		store, err = newTempStorage(name)
	} else {
		store, err = newDirStorage(s.dir, name, cfg.CustomCreateDirMode())
	}
	if err != nil {
		return nil, newError(ErrIo, "download", s.url, err)
	}

	n, err := s.save(ctx, cfg, store, resp.Body, total)
	td.InputSize = n
	if err != nil {
		_ = store.discard()
		return nil, err
	}
	cfg.Logger().Debug("download finished", "url", s.url, "path", store.path, "bytes", n)

	a, err = newArchive(store, cfg)
	if err != nil {
		_ = store.discard()
		return nil, err
	}
	return a, nil
}

// save copies body into the storage file.
func (s downloadState) save(ctx context.Context, cfg *Config, store *storage, body io.Reader, total int64) (int64, error) {
	f, err := store.create()
	if err != nil {
		return 0, newError(ErrIo, "download", store.path, err)
	}

	src := newLimitErrorReader(body, cfg.MaxInputSize())
	n, err := copyChunks(ctx, f, src, make([]byte, cfg.ChunkSize()), total, s.progress)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}

	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return n, err
	case errors.Is(err, ErrMaxInputSizeExceeded):
		return n, newError(ErrInvalidRequest, "download", s.url, err)
	default:
		return n, newError(ErrIo, "download", s.url, err)
	}
}

// copyChunks copies src to dst with buf. progress, if set, is called before
// every read and once more if the last read added bytes. Interrupted reads
// are retried.
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader, buf []byte, total int64, progress ProgressFunc) (int64, error) {
	var written int64
	reported := int64(-1)

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if progress != nil {
			progress(written, total)
			reported = written
		}

		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, syscall.EINTR) {
			continue
		}
		if err != nil {
			return written, err
		}
	}

	if progress != nil && reported != written {
		progress(written, total)
	}
	return written, nil
}

// fileNameFromURL returns the last segment of the URL path.
func fileNameFromURL(u *url.URL) (string, bool) {
	name := u.Path[strings.LastIndex(u.Path, "/")+1:]
	if name == "" || name == "." || name == ".." {
		return "", false
	}
	return name, true
}
