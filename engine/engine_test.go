package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/tokgrab-cli/tokgrab/extractor"
	"github.com/tokgrab-cli/tokgrab/media"
	"github.com/tokgrab-cli/tokgrab/provider"
)

const testReference = "https://www.tiktok.com/@someone/video/7301234567890123456"

// stubAdapter is a deterministic in-memory provider for engine tests.
type stubAdapter struct {
	name   string
	delay  time.Duration
	result mo.Option[media.Media]
	err    error

	calls atomic.Int32
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Resolve(ctx context.Context, _ string) (mo.Option[media.Media], error) {
	s.calls.Add(1)

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return mo.None[media.Media](), ctx.Err()
		}
	}

	return s.result, s.err
}

func answering(name string, quality media.Quality) *stubAdapter {
	return &stubAdapter{
		name: name,
		result: mo.Some(media.Media{
			URL:      "https://cdn.example/" + name + ".mp4",
			Quality:  quality,
			Provider: name,
		}),
	}
}

func testConfig() Config {
	config := DefaultConfig()
	config.Timeout = 2 * time.Second
	config.MaxCacheAge = time.Hour
	return config
}

func newTestEngine(t *testing.T, config Config, stubs ...*stubAdapter) *Engine {
	t.Helper()

	adapters := make([]provider.Adapter, len(stubs))
	for i, stub := range stubs {
		adapters[i] = stub
	}

	e, err := New(config, adapters...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestResolveFanout(t *testing.T) {
	Convey("Given adapters where some time out and the rest succeed", t, func() {
		config := testConfig()
		config.Timeout = 150 * time.Millisecond

		fast := answering("snaptik", media.QualityHigh)
		alsoFast := answering("tikwm", media.QualityHigh)
		slow := &stubAdapter{name: "dlpanda", delay: 5 * time.Second}
		alsoSlow := &stubAdapter{name: "ssstik", delay: 5 * time.Second}

		e := newTestEngine(t, config, fast, alsoFast, slow, alsoSlow)

		result, err := e.Resolve(context.Background(), testReference)

		Convey("The survivors win and the stragglers are accounted as failures", func() {
			So(err, ShouldBeNil)
			So(result.Provider, ShouldEqual, "snaptik")

			snap := e.Snapshot()
			So(snap.Providers["snaptik"].Calls, ShouldEqual, 1)
			So(snap.Providers["snaptik"].Successes, ShouldEqual, 1)
			So(snap.Providers["dlpanda"].Calls, ShouldEqual, 1)
			So(snap.Providers["dlpanda"].Failures, ShouldEqual, 1)
			So(snap.Providers["ssstik"].Failures, ShouldEqual, 1)
		})
	})

	Convey("Given a concurrency cap below the adapter count", t, func() {
		config := testConfig()
		config.Concurrency = 1

		first := answering("snaptik", media.QualityHigh)
		first.delay = 20 * time.Millisecond
		second := answering("tikwm", media.QualityHigh)
		second.delay = 20 * time.Millisecond

		e := newTestEngine(t, config, first, second)

		Convey("Every adapter still settles", func() {
			result, err := e.Resolve(context.Background(), testReference)
			So(err, ShouldBeNil)
			So(result.Provider, ShouldEqual, "snaptik")
			So(first.calls.Load(), ShouldEqual, 1)
			So(second.calls.Load(), ShouldEqual, 1)
		})
	})
}

func TestResolveCaching(t *testing.T) {
	Convey("Given an engine with caching enabled", t, func() {
		adapter := answering("snaptik", media.QualityHigh)
		e := newTestEngine(t, testConfig(), adapter)

		first, err := e.Resolve(context.Background(), testReference)
		So(err, ShouldBeNil)

		Convey("A second Resolve within the max age answers from the cache", func() {
			second, err := e.Resolve(context.Background(), testReference)
			So(err, ShouldBeNil)
			So(*second, ShouldResemble, *first)
			So(adapter.calls.Load(), ShouldEqual, 1)

			Convey("And the cache hit is accounted", func() {
				snap := e.Snapshot()
				So(snap.CacheHits, ShouldEqual, 1)
				So(snap.CacheHitRatio.MustGet(), ShouldAlmostEqual, 0.5)
			})
		})
	})

	Convey("Given an engine whose cached entry has expired", t, func() {
		config := testConfig()
		config.MaxCacheAge = 50 * time.Millisecond

		adapter := answering("snaptik", media.QualityHigh)
		e := newTestEngine(t, config, adapter)

		_, err := e.Resolve(context.Background(), testReference)
		So(err, ShouldBeNil)

		time.Sleep(80 * time.Millisecond)

		Convey("The next Resolve fans out again regardless of any sweep", func() {
			_, err := e.Resolve(context.Background(), testReference)
			So(err, ShouldBeNil)
			So(adapter.calls.Load(), ShouldEqual, 2)
		})
	})

	Convey("Given an engine with caching disabled", t, func() {
		config := testConfig()
		config.CacheResults = false

		adapter := answering("snaptik", media.QualityHigh)
		other := answering("tikwm", media.QualityHigh)
		e := newTestEngine(t, config, adapter, other)

		Convey("Two consecutive Resolve calls each invoke every adapter", func() {
			_, err := e.Resolve(context.Background(), testReference)
			So(err, ShouldBeNil)
			_, err = e.Resolve(context.Background(), testReference)
			So(err, ShouldBeNil)

			So(adapter.calls.Load(), ShouldEqual, 2)
			So(other.calls.Load(), ShouldEqual, 2)
		})
	})
}

func TestResolveFailures(t *testing.T) {
	Convey("Given adapters that all fail, are absent or error", t, func() {
		silent := &stubAdapter{name: "snaptik"}
		broken := &stubAdapter{name: "dlpanda", err: errors.New("parse failure")}
		e := newTestEngine(t, testConfig(), silent, broken)

		_, err := e.Resolve(context.Background(), testReference)

		Convey("Resolve fails terminally with the concatenated reasons", func() {
			var failure *AllProvidersFailedError
			So(errors.As(err, &failure), ShouldBeTrue)
			So(failure.Reasons["snaptik"], ShouldEqual, "no result")
			So(failure.Reasons["dlpanda"], ShouldContainSubstring, "parse failure")
			So(err.Error(), ShouldContainSubstring, "all 2 providers failed")
		})

		Convey("The failure is accounted at the resolution level", func() {
			snap := e.Snapshot()
			So(snap.Resolutions, ShouldEqual, 1)
			So(snap.SuccessRate.MustGet(), ShouldAlmostEqual, 0)
		})
	})

	Convey("Given a reference matching no known shape", t, func() {
		adapter := answering("snaptik", media.QualityHigh)
		e := newTestEngine(t, testConfig(), adapter)

		_, err := e.Resolve(context.Background(), "https://example.com/watch?v=1")

		Convey("Resolve fails with ErrInvalidReference without any fan-out", func() {
			So(errors.Is(err, extractor.ErrInvalidReference), ShouldBeTrue)
			So(adapter.calls.Load(), ShouldEqual, 0)
		})
	})
}

func TestCanonicalize(t *testing.T) {
	Convey("Given an engine", t, func() {
		e := newTestEngine(t, testConfig(), answering("snaptik", media.QualityHigh))

		Convey("Equivalent spellings map to one canonical form", func() {
			canonical, err := e.Canonicalize(
				context.Background(),
				"  HTTPS://WWW.TIKTOK.COM/@someone/video/7301234567890123456",
			)
			So(err, ShouldBeNil)
			So(canonical, ShouldEqual, testReference)

			Convey("So the video id survives for name derivation", func() {
				id, ok := extractor.VideoID(canonical)
				So(ok, ShouldBeTrue)
				So(id, ShouldEqual, "7301234567890123456")
			})
		})

		Convey("Unknown shapes are rejected", func() {
			_, err := e.Canonicalize(context.Background(), "https://example.com/watch?v=1")
			So(errors.Is(err, extractor.ErrInvalidReference), ShouldBeTrue)
		})
	})
}

func TestEngineEvents(t *testing.T) {
	Convey("Given a subscribed listener", t, func() {
		adapter := answering("snaptik", media.QualityHigh)
		e := newTestEngine(t, testConfig(), adapter)

		recorder := &recordingListener{}
		e.Subscribe(recorder)

		_, err := e.Resolve(context.Background(), testReference)
		So(err, ShouldBeNil)

		Convey("It observes the full lifecycle", func() {
			So(recorder.started.Load(), ShouldEqual, 1)
			So(recorder.succeeded.Load(), ShouldEqual, 1)
			So(recorder.failed.Load(), ShouldEqual, 0)
		})
	})
}

type recordingListener struct {
	BaseListener
	started   atomic.Int32
	succeeded atomic.Int32
	failed    atomic.Int32
}

func (r *recordingListener) Started(string)                       { r.started.Add(1) }
func (r *recordingListener) Succeeded(media.Media, time.Duration) { r.succeeded.Add(1) }
func (r *recordingListener) Failed(error)                         { r.failed.Add(1) }
