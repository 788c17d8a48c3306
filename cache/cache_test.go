package cache

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tokgrab-cli/tokgrab/media"
)

func sample(provider string) media.Media {
	return media.Media{
		URL:      "https://cdn.example/video.mp4",
		Author:   "@someone",
		Quality:  media.QualityHigh,
		Provider: provider,
	}
}

func TestCache(t *testing.T) {
	Convey("Given an enabled cache", t, func() {
		c := New(time.Hour, true)
		defer c.Stop()

		Convey("Get on an empty cache misses", func() {
			So(c.Get("https://ref").IsAbsent(), ShouldBeTrue)
		})

		Convey("Put then Get hits with the stored value", func() {
			c.Put("https://ref", sample("snaptik"))
			got := c.Get("https://ref")
			So(got.IsPresent(), ShouldBeTrue)
			So(got.MustGet().Provider, ShouldEqual, "snaptik")
		})

		Convey("Put refreshes, not merges", func() {
			c.Put("https://ref", sample("snaptik"))
			c.Put("https://ref", sample("tikmate"))
			So(c.Get("https://ref").MustGet().Provider, ShouldEqual, "tikmate")
			So(c.Len(), ShouldEqual, 1)
		})

		Convey("Distinct references hash to distinct keys", func() {
			So(Key("https://a"), ShouldNotEqual, Key("https://b"))
			So(Key("https://a"), ShouldEqual, Key("https://a"))
		})
	})

	Convey("Given a cache with a short max age and a stopped sweeper", t, func() {
		c := New(20*time.Millisecond, true)
		c.Stop()

		c.Put("https://ref", sample("snaptik"))
		time.Sleep(30 * time.Millisecond)

		Convey("An expired entry is a miss even though no sweep ran", func() {
			So(c.Get("https://ref").IsAbsent(), ShouldBeTrue)

			Convey("And Get left eviction to the sweeper", func() {
				So(c.Len(), ShouldEqual, 1)
			})
		})

		Convey("An explicit Sweep removes expired entries", func() {
			c.Sweep()
			So(c.Len(), ShouldEqual, 0)
		})
	})

	Convey("Given a disabled cache", t, func() {
		c := New(time.Hour, false)
		defer c.Stop()

		Convey("Put is a no-op and Get always misses", func() {
			c.Put("https://ref", sample("snaptik"))
			So(c.Get("https://ref").IsAbsent(), ShouldBeTrue)
			So(c.Len(), ShouldEqual, 0)
		})
	})
}
