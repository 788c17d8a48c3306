// Package downloader streams resolved media locations to the local filesystem.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tokgrab-cli/tokgrab/extractor"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/history"
	"github.com/tokgrab-cli/tokgrab/key"
	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/media"
	"github.com/tokgrab-cli/tokgrab/network"
	"github.com/tokgrab-cli/tokgrab/util"
	"github.com/tokgrab-cli/tokgrab/where"
)

// Progress receives the running byte count of an in-flight download.
// A negative total means the server did not announce a content length.
type Progress func(written, total int64)

// Destination computes the target file path for a resolved reference without
// touching the network. The directory honors downloader.path when set.
func Destination(reference string, result media.Media) string {
	dir := viper.GetString(key.DownloaderPath)
	if dir == "" {
		dir = where.Downloads()
	}

	name := result.Author
	if id, ok := extractor.VideoID(reference); ok {
		if name == "" {
			name = id
		} else {
			name += "_" + id
		}
	}
	if name == "" {
		name = result.Provider
	}

	return filepath.Join(dir, util.SanitizeFilename(name)+".mp4")
}

// Download streams the resolved media to disk and returns the written path.
// The file appears atomically: bytes land in a temporary sibling first and
// are renamed into place only on success.
func Download(ctx context.Context, client *http.Client, reference string, result media.Media, onProgress Progress) (string, error) {
	path := Destination(reference, result)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, result.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", network.RandomUserAgent())

	res, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer util.Ignore(res.Body.Close)

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch media bytes: %s", res.Status)
	}

	fs := filesystem.API()
	if err = fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	temp := path + ".part"
	file, err := fs.Create(temp)
	if err != nil {
		return "", err
	}

	writer := io.Writer(file)
	if onProgress != nil {
		writer = &progressWriter{inner: file, total: res.ContentLength, report: onProgress}
	}

	if _, err = io.Copy(writer, res.Body); err != nil {
		util.Ignore(file.Close)
		util.Ignore(func() error { return fs.Remove(temp) })
		return "", err
	}

	if err = file.Close(); err != nil {
		return "", err
	}
	if err = fs.Rename(temp, path); err != nil {
		return "", err
	}

	if viper.GetBool(key.HistorySaveOnDownload) {
		if err = history.Save(reference, result, path); err != nil {
			log.Warnf("failed to save download history: %v", err)
		}
	}

	log.Infof("downloaded %s to %s", reference, path)
	return path, nil
}

type progressWriter struct {
	inner   io.Writer
	written int64
	total   int64
	report  Progress
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.inner.Write(b)
	p.written += int64(n)
	p.report(p.written, p.total)
	return n, err
}
