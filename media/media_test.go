package media

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuality(t *testing.T) {
	Convey("Quality", t, func() {
		Convey("Tiers are totally ordered", func() {
			So(QualityHigh, ShouldBeGreaterThan, QualityMedium)
			So(QualityMedium, ShouldBeGreaterThan, QualityLow)
		})

		Convey("ParseQuality round-trips", func() {
			for _, q := range []Quality{QualityLow, QualityMedium, QualityHigh} {
				parsed, err := ParseQuality(q.String())
				So(err, ShouldBeNil)
				So(parsed, ShouldEqual, q)
			}
		})

		Convey("ParseQuality rejects unknown values", func() {
			_, err := ParseQuality("ultra")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestMediaString(t *testing.T) {
	Convey("Media.String", t, func() {
		m := &Media{URL: "https://cdn.example/v.mp4"}
		So(m.String(), ShouldEqual, "https://cdn.example/v.mp4")

		m.Author = "@someone"
		So(m.String(), ShouldEqual, "@someone")
	})
}
