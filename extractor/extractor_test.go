package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Normalize", t, func() {
		Convey("Trims whitespace and lowercases scheme and host", func() {
			So(
				Normalize("  HTTPS://WWW.TikTok.COM/@User/video/123  "),
				ShouldEqual,
				"https://www.tiktok.com/@User/video/123",
			)
		})

		Convey("Preserves path case", func() {
			So(
				Normalize("https://vm.tiktok.com/AbCdEf"),
				ShouldEqual,
				"https://vm.tiktok.com/AbCdEf",
			)
		})

		Convey("Is idempotent", func() {
			once := Normalize(" https://VM.tiktok.com/XyZ ")
			So(Normalize(once), ShouldEqual, once)
		})
	})
}

func TestVideoID(t *testing.T) {
	Convey("VideoID", t, func() {
		cases := map[string]string{
			"https://www.tiktok.com/@someone/video/7301234567890123456": "7301234567890123456",
			"https://m.tiktok.com/v/7301234567890123456":                "7301234567890123456",
		}

		for ref, want := range cases {
			id, ok := VideoID(ref)
			So(ok, ShouldBeTrue)
			So(id, ShouldEqual, want)
		}

		Convey("Short links carry no identifier", func() {
			_, ok := VideoID("https://vm.tiktok.com/ZMabcdef")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMatches(t *testing.T) {
	Convey("Matches", t, func() {
		So(Matches("https://www.tiktok.com/@u/video/1"), ShouldBeTrue)
		So(Matches("https://vt.tiktok.com/ZMabcdef"), ShouldBeTrue)
		So(Matches("https://example.com/watch?v=1"), ShouldBeFalse)
		So(Matches("not a url"), ShouldBeFalse)
	})
}

func TestCanonicalize(t *testing.T) {
	Convey("Canonicalize", t, func() {
		Convey("Long-form references pass through normalized", func() {
			out, err := Canonicalize(
				context.Background(),
				" https://WWW.tiktok.com/@someone/video/42 ",
				http.DefaultClient,
			)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "https://www.tiktok.com/@someone/video/42")
		})

		Convey("Unknown shapes fail with ErrInvalidReference", func() {
			_, err := Canonicalize(context.Background(), "https://example.com/nope", http.DefaultClient)
			So(errors.Is(err, ErrInvalidReference), ShouldBeTrue)
		})

		Convey("Short links resolve through their redirect", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/ZMabcdef" {
					http.Redirect(w, r, "https://www.tiktok.com/@someone/video/99", http.StatusMovedPermanently)
					return
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			out, err := Canonicalize(context.Background(), "https://vm.tiktok.com/ZMabcdef", routedClient(server))
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "https://www.tiktok.com/@someone/video/99")
		})

		Convey("Short links whose redirect leads nowhere useful are invalid", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			_, err := Canonicalize(context.Background(), "https://vm.tiktok.com/ZMabcdef", routedClient(server))
			So(errors.Is(err, ErrInvalidReference), ShouldBeTrue)
		})
	})
}

// routedClient routes every request to the given test server.
func routedClient(server *httptest.Server) *http.Client {
	return &http.Client{
		Transport: rewriteTransport{target: server.URL[len("http://"):]},
	}
}

type rewriteTransport struct{ target string }

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.URL.Scheme = "http"
	clone.URL.Host = t.target
	resp, err := http.DefaultTransport.RoundTrip(clone)
	if resp != nil {
		// Restore the original request so the routing stays transparent to
		// callers that inspect resp.Request.URL.
		resp.Request = req
	}
	return resp, err
}
