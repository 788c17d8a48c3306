package provider

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tokgrab-cli/tokgrab/network"
)

type stubRoundTripper struct {
	status int
	body   string
}

func (s stubRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Header:     make(http.Header),
	}, nil
}

func stubTransport(status int, body string) *network.Transport {
	client := &http.Client{Transport: stubRoundTripper{status: status, body: body}}
	return network.NewTransport(client, 1, nil)
}

func TestRank(t *testing.T) {
	Convey("Rank", t, func() {
		Convey("Listed providers rank by position", func() {
			So(Rank("snaptik"), ShouldEqual, 0)
			So(Rank("webscraping"), ShouldEqual, 4)
			So(Rank("snaptik"), ShouldBeLessThan, Rank("webscraping"))
		})

		Convey("Unlisted providers share the sentinel rank after all listed ones", func() {
			for _, name := range []string{"tiktokapi", "dlpanda", "ssstik", "unknown"} {
				So(Rank(name), ShouldEqual, len(PreferenceOrder))
			}
		})
	})
}

func TestBuiltins(t *testing.T) {
	Convey("Builtins", t, func() {
		transport := stubTransport(http.StatusOK, "{}")
		adapters := Builtins(transport, transport)

		Convey("Registers exactly eight adapters with unique names", func() {
			So(len(adapters), ShouldEqual, 8)

			seen := make(map[string]bool)
			for _, name := range Names(adapters) {
				So(seen[name], ShouldBeFalse)
				seen[name] = true
			}
		})

		Convey("Every listed preference name has a registered adapter", func() {
			names := Names(adapters)
			for _, preferred := range PreferenceOrder {
				So(names, ShouldContain, preferred)
			}
		})
	})
}

func TestAdapterAbsence(t *testing.T) {
	Convey("Adapters report absence, not errors, for empty provider answers", t, func() {
		reference := "https://www.tiktok.com/@someone/video/7301234567890123456"

		Convey("snaptik with an empty payload", func() {
			adapter := &Snaptik{transport: stubTransport(http.StatusOK, `{"data":{}}`)}
			result, err := adapter.Resolve(context.Background(), reference)
			So(err, ShouldBeNil)
			So(result.IsAbsent(), ShouldBeTrue)
		})

		Convey("tikwm with a non-zero code", func() {
			adapter := &Tikwm{transport: stubTransport(http.StatusOK, `{"code":-1,"data":{}}`)}
			result, err := adapter.Resolve(context.Background(), reference)
			So(err, ShouldBeNil)
			So(result.IsAbsent(), ShouldBeTrue)
		})

		Convey("ssstik with a result page missing the download link", func() {
			adapter := &Ssstik{transport: stubTransport(http.StatusOK, `<div><h2>@someone</h2></div>`)}
			result, err := adapter.Resolve(context.Background(), reference)
			So(err, ShouldBeNil)
			So(result.IsAbsent(), ShouldBeTrue)
		})

		Convey("tiktokapi with a short-link reference it cannot parse", func() {
			adapter := &TiktokAPI{transport: stubTransport(http.StatusOK, `{}`)}
			result, err := adapter.Resolve(context.Background(), "https://vm.tiktok.com/ZMabcdef")
			So(err, ShouldBeNil)
			So(result.IsAbsent(), ShouldBeTrue)
		})
	})
}

func TestAdapterSuccess(t *testing.T) {
	Convey("Adapters produce tagged candidates from well-formed answers", t, func() {
		reference := "https://www.tiktok.com/@someone/video/7301234567890123456"

		Convey("tikwm prefers the HD address", func() {
			body := `{"code":0,"data":{"play":"https://cdn/sd.mp4","hdplay":"https://cdn/hd.mp4","title":"clip","author":{"unique_id":"someone"}}}`
			adapter := &Tikwm{transport: stubTransport(http.StatusOK, body)}

			result, err := adapter.Resolve(context.Background(), reference)
			So(err, ShouldBeNil)
			So(result.IsPresent(), ShouldBeTrue)

			m := result.MustGet()
			So(m.URL, ShouldEqual, "https://cdn/hd.mp4")
			So(m.Provider, ShouldEqual, "tikwm")
			So(m.Quality.String(), ShouldEqual, "high")
		})

		Convey("tikmate derives the CDN location from the token pair", func() {
			body := `{"success":true,"token":"tok","id":"42","author_name":"someone","caption":"clip"}`
			adapter := &Tikmate{transport: stubTransport(http.StatusOK, body)}

			result, err := adapter.Resolve(context.Background(), reference)
			So(err, ShouldBeNil)

			m := result.MustGet()
			So(m.URL, ShouldEqual, "https://tikmate.app/download/tok/42.mp4")
		})

		Convey("webscraping tags its candidate medium", func() {
			page := `<html><body><script id="__UNIVERSAL_DATA_FOR_REHYDRATION__">` +
				`{"__DEFAULT_SCOPE__":{"webapp.video-detail":{"itemInfo":{"itemStruct":` +
				`{"desc":"clip","author":{"uniqueId":"someone"},"video":{"playAddr":"https://cdn/v.mp4"}}}}}}` +
				`</script></body></html>`
			adapter := &Webscraping{transport: stubTransport(http.StatusOK, page)}

			result, err := adapter.Resolve(context.Background(), reference)
			So(err, ShouldBeNil)

			m := result.MustGet()
			So(m.URL, ShouldEqual, "https://cdn/v.mp4")
			So(m.Quality.String(), ShouldEqual, "medium")
			So(m.Provider, ShouldEqual, "webscraping")
		})
	})
}
