package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/mo"
	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/media"
	"github.com/tokgrab-cli/tokgrab/network"
)

// Webscraping is the generic markup-scraping fallback: it fetches the video
// page itself through the TLS-fingerprint transport and digs the play
// address out of the embedded hydration state. The direct address it finds
// is watermarked, hence the medium quality tier.
type Webscraping struct {
	transport *network.Transport
}

func (w *Webscraping) Name() string { return "webscraping" }

// hydrationState mirrors the fragment of the page's embedded JSON we need.
type hydrationState struct {
	DefaultScope struct {
		VideoDetail struct {
			ItemInfo struct {
				ItemStruct struct {
					Desc   string `json:"desc"`
					Author struct {
						UniqueID string `json:"uniqueId"`
					} `json:"author"`
					Video struct {
						PlayAddr string `json:"playAddr"`
					} `json:"video"`
				} `json:"itemStruct"`
			} `json:"itemInfo"`
		} `json:"webapp.video-detail"`
	} `json:"__DEFAULT_SCOPE__"`
}

func (w *Webscraping) Resolve(ctx context.Context, reference string) (mo.Option[media.Media], error) {
	resp, err := w.transport.Fetch(ctx, network.Request{
		Method: http.MethodGet,
		URL:    reference,
		Headers: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.5",
		},
	})
	if err != nil {
		return mo.None[media.Media](), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mo.None[media.Media](), fmt.Errorf("video page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return mo.None[media.Media](), fmt.Errorf("parse video page: %w", err)
	}

	raw := doc.Find("script#__UNIVERSAL_DATA_FOR_REHYDRATION__").First().Text()
	if raw == "" {
		log.Debugf("no hydration state on page for %s", reference)
		return mo.None[media.Media](), nil
	}

	var state hydrationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return mo.None[media.Media](), fmt.Errorf("decode hydration state: %w", err)
	}

	item := state.DefaultScope.VideoDetail.ItemInfo.ItemStruct
	if item.Video.PlayAddr == "" {
		log.Debugf("webscraping had no result for %s", reference)
		return mo.None[media.Media](), nil
	}

	return mo.Some(media.Media{
		URL:         item.Video.PlayAddr,
		Author:      item.Author.UniqueID,
		Description: item.Desc,
		Quality:     media.QualityMedium,
		Provider:    w.Name(),
	}), nil
}
