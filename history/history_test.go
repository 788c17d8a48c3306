package history

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/media"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestHistory(t *testing.T) {
	Convey("Given a resolved download", t, func() {
		reference := "https://www.tiktok.com/@cookingwithlynja/video/7196984643203798318"
		result := media.Media{
			URL:         "https://cdn.example/7196984643203798318.mp4",
			Author:      "cookingwithlynja",
			Description: "60 second ramen",
			Quality:     media.QualityHigh,
			Provider:    "snaptik",
		}

		Convey("When saving it", func() {
			err := Save(reference, result, "/tmp/ramen.mp4")

			Convey("Then it should be retrievable by reference", func() {
				So(err, ShouldBeNil)

				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved[reference], ShouldNotBeNil)
				So(saved[reference].Provider, ShouldEqual, "snaptik")
				So(saved[reference].Author, ShouldEqual, "cookingwithlynja")
			})

			Convey("And it should be fuzzily searchable", func() {
				So(err, ShouldBeNil)

				matched, err := Search("ramen")
				So(err, ShouldBeNil)
				So(len(matched), ShouldEqual, 1)
				So(matched[0].Reference, ShouldEqual, reference)
			})

			Convey("And removing it should leave no trace", func() {
				So(err, ShouldBeNil)

				saved, err := Get()
				So(err, ShouldBeNil)
				So(Remove(saved[reference]), ShouldBeNil)

				saved, err = Get()
				So(err, ShouldBeNil)
				So(saved[reference], ShouldBeNil)
			})
		})
	})
}
