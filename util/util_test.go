package util

import (
	"regexp"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		So(SanitizeFilename("a b/c"), ShouldEqual, "a_b_c")
		So(SanitizeFilename("  weird??name  "), ShouldEqual, "weird_name")
		So(SanitizeFilename("___x___"), ShouldEqual, "x")
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "provider", "providers"), ShouldEqual, "1 provider")
		So(Quantify(3, "provider", "providers"), ShouldEqual, "3 providers")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("cache"), ShouldEqual, "Cache")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestReGroups(t *testing.T) {
	Convey("ReGroups", t, func() {
		pattern := regexp.MustCompile(`(?P<user>@[\w.]+)/video/(?P<id>\d+)`)

		Convey("Extracts named groups", func() {
			groups := ReGroups(pattern, "@someone/video/123456")
			So(groups["user"], ShouldEqual, "@someone")
			So(groups["id"], ShouldEqual, "123456")
		})

		Convey("Returns empty map on no match", func() {
			groups := ReGroups(pattern, "nothing here")
			So(groups, ShouldBeEmpty)
		})
	})
}

func TestMinMax(t *testing.T) {
	Convey("Min and Max", t, func() {
		So(Max(1, 5, 3), ShouldEqual, 5)
		So(Min(4, 2, 9), ShouldEqual, 2)
		So(Max[int](), ShouldEqual, 0)
	})
}
