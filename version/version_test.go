package version

import (
	"io"
	"net/http"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/network"
)

func init() {
	filesystem.SetMemMapFs()
}

type stubRoundTripper struct {
	body string
}

func (s stubRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Header:     make(http.Header),
	}, nil
}

func TestLatest(t *testing.T) {
	Convey("Given a release feed answered by the shared client", t, func() {
		previous := network.Client.Transport
		network.Client.Transport = stubRoundTripper{body: `{"tag_name":"v9.9.9"}`}
		defer func() { network.Client.Transport = previous }()

		Convey("Latest answers with the stripped tag", func() {
			version, err := Latest()
			So(err, ShouldBeNil)
			So(version, ShouldEqual, "9.9.9")

			Convey("And subsequent lookups are served from the cache", func() {
				network.Client.Transport = stubRoundTripper{body: `{"tag_name":"v0.0.1"}`}

				version, err := Latest()
				So(err, ShouldBeNil)
				So(version, ShouldEqual, "9.9.9")
			})
		})
	})
}
