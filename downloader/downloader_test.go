package downloader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/history"
	"github.com/tokgrab-cli/tokgrab/key"
	"github.com/tokgrab-cli/tokgrab/media"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestDownload(t *testing.T) {
	Convey("Given a resolved media location", t, func() {
		payload := strings.Repeat("tok", 1024)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(payload))
		}))
		defer server.Close()

		viper.Set(key.DownloaderPath, "/downloads")
		viper.Set(key.HistorySaveOnDownload, true)
		defer viper.Reset()

		reference := "https://www.tiktok.com/@someone/video/7301234567890123456"
		result := media.Media{
			URL:      server.URL + "/video.mp4",
			Author:   "someone",
			Quality:  media.QualityHigh,
			Provider: "snaptik",
		}

		Convey("When downloading it", func() {
			var lastWritten int64
			path, err := Download(context.Background(), server.Client(), reference, result, func(written, _ int64) {
				lastWritten = written
			})

			Convey("The bytes land at the computed destination", func() {
				So(err, ShouldBeNil)
				So(path, ShouldEqual, "/downloads/someone_7301234567890123456.mp4")

				content, err := filesystem.API().ReadFile(path)
				So(err, ShouldBeNil)
				So(string(content), ShouldEqual, payload)
			})

			Convey("Progress reaches the full payload size", func() {
				So(err, ShouldBeNil)
				So(lastWritten, ShouldEqual, int64(len(payload)))
			})

			Convey("No partial file is left behind", func() {
				So(err, ShouldBeNil)
				exists, err := filesystem.API().Exists(path + ".part")
				So(err, ShouldBeNil)
				So(exists, ShouldBeFalse)
			})

			Convey("The download is recorded in history", func() {
				So(err, ShouldBeNil)
				saved, err := history.Get()
				So(err, ShouldBeNil)
				So(saved[reference], ShouldNotBeNil)
				So(saved[reference].Path, ShouldEqual, path)
			})
		})

		Convey("When the media server refuses", func() {
			refusing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
			defer refusing.Close()

			result.URL = refusing.URL + "/video.mp4"
			_, err := Download(context.Background(), refusing.Client(), reference, result, nil)

			Convey("Download surfaces the status", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "403")
			})
		})
	})
}

func TestDestination(t *testing.T) {
	Convey("Destination", t, func() {
		reference := "https://www.tiktok.com/@someone/video/7301234567890123456"

		Convey("Falls back to the downloads directory when unconfigured", func() {
			viper.Set(key.DownloaderPath, "")
			defer viper.Reset()

			path := Destination(reference, media.Media{Author: "someone", Provider: "snaptik"})
			So(strings.HasSuffix(path, "someone_7301234567890123456.mp4"), ShouldBeTrue)
		})

		Convey("Sanitizes hostile author names", func() {
			viper.Set(key.DownloaderPath, "/downloads")
			defer viper.Reset()

			path := Destination(reference, media.Media{Author: "so/me: one?", Provider: "snaptik"})
			So(path, ShouldEqual, "/downloads/so_me_one_7301234567890123456.mp4")
		})
	})
}
