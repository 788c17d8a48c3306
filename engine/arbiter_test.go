package engine

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tokgrab-cli/tokgrab/media"
)

func candidate(provider string, quality media.Quality) media.Media {
	return media.Media{
		URL:      "https://cdn.example/" + provider + ".mp4",
		Quality:  quality,
		Provider: provider,
	}
}

func TestSelectBest(t *testing.T) {
	Convey("SelectBest", t, func() {
		Convey("Prefers the listed provider among equal tiers", func() {
			winner := SelectBest([]media.Media{
				candidate("webscraping", media.QualityHigh),
				candidate("snaptik", media.QualityHigh),
			}, media.QualityHigh)

			So(winner.Provider, ShouldEqual, "snaptik")
		})

		Convey("Quality tier dominates provider preference", func() {
			winner := SelectBest([]media.Media{
				candidate("snaptik", media.QualityMedium),
				candidate("webscraping", media.QualityHigh),
			}, media.QualityHigh)

			So(winner.Provider, ShouldEqual, "webscraping")
		})

		Convey("Unlisted providers rank after listed ones", func() {
			winner := SelectBest([]media.Media{
				candidate("ssstik", media.QualityHigh),
				candidate("tikwm", media.QualityHigh),
			}, media.QualityHigh)

			So(winner.Provider, ShouldEqual, "tikwm")
		})

		Convey("Is deterministic across repeated invocations", func() {
			set := []media.Media{
				candidate("dlpanda", media.QualityHigh),
				candidate("tikmate", media.QualityHigh),
				candidate("webscraping", media.QualityMedium),
			}

			first := SelectBest(set, media.QualityHigh)
			for i := 0; i < 20; i++ {
				So(SelectBest(set, media.QualityHigh).Provider, ShouldEqual, first.Provider)
			}
		})

		Convey("Preferred quality is a soft preference", func() {
			set := []media.Media{
				candidate("snaptik", media.QualityHigh),
				candidate("webscraping", media.QualityMedium),
			}

			Convey("An exact tier match wins when present", func() {
				winner := SelectBest(set, media.QualityMedium)
				So(winner.Provider, ShouldEqual, "webscraping")
			})

			Convey("Without a match, the winner equals the high-preference one", func() {
				highOnly := []media.Media{
					candidate("snaptik", media.QualityHigh),
					candidate("tikmate", media.QualityHigh),
				}

				So(
					SelectBest(highOnly, media.QualityMedium).Provider,
					ShouldEqual,
					SelectBest(highOnly, media.QualityHigh).Provider,
				)
			})

			Convey("A request for low still returns a high result over failing", func() {
				winner := SelectBest([]media.Media{candidate("snaptik", media.QualityHigh)}, media.QualityLow)
				So(winner.Provider, ShouldEqual, "snaptik")
			})
		})
	})
}
