package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/mo"
	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/media"
	"github.com/tokgrab-cli/tokgrab/network"
)

const musicaldownEndpoint = "https://musicaldown.com/download"

// Musicaldown resolves through musicaldown.com, which answers a form post
// with a result page carrying the download links.
type Musicaldown struct {
	transport *network.Transport
}

func (m *Musicaldown) Name() string { return "musicaldown" }

func (m *Musicaldown) Resolve(ctx context.Context, reference string) (mo.Option[media.Media], error) {
	form := url.Values{}
	form.Set("url", reference)

	resp, err := m.transport.Fetch(ctx, network.Request{
		Method: http.MethodPost,
		URL:    musicaldownEndpoint,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"Referer":      "https://musicaldown.com/",
		},
		Body: []byte(form.Encode()),
	})
	if err != nil {
		return mo.None[media.Media](), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mo.None[media.Media](), fmt.Errorf("musicaldown returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return mo.None[media.Media](), fmt.Errorf("parse musicaldown page: %w", err)
	}

	link, ok := doc.Find("a[data-event=\"mp4_click\"]").First().Attr("href")
	if !ok || link == "" {
		log.Debugf("musicaldown had no result for %s", reference)
		return mo.None[media.Media](), nil
	}

	return mo.Some(media.Media{
		URL:         link,
		Author:      doc.Find("h2.video-author").First().Text(),
		Description: doc.Find("p.video-desc").First().Text(),
		Quality:     media.QualityHigh,
		Provider:    m.Name(),
	}), nil
}
