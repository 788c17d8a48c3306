package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/mo"
	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/media"
	"github.com/tokgrab-cli/tokgrab/network"
)

const ssstikEndpoint = "https://ssstik.io/abc?url=dl"

// Ssstik resolves through ssstik.io, which answers a form post with an HTML
// fragment carrying the no-watermark link.
type Ssstik struct {
	transport *network.Transport
}

func (s *Ssstik) Name() string { return "ssstik" }

func (s *Ssstik) Resolve(ctx context.Context, reference string) (mo.Option[media.Media], error) {
	form := url.Values{}
	form.Set("id", reference)
	form.Set("locale", "en")

	resp, err := s.transport.Fetch(ctx, network.Request{
		Method: http.MethodPost,
		URL:    ssstikEndpoint,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"Origin":       "https://ssstik.io",
		},
		Body: []byte(form.Encode()),
	})
	if err != nil {
		return mo.None[media.Media](), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mo.None[media.Media](), fmt.Errorf("ssstik returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return mo.None[media.Media](), fmt.Errorf("parse ssstik fragment: %w", err)
	}

	link, ok := doc.Find("a.download_link.without_watermark").First().Attr("href")
	if !ok || link == "" {
		log.Debugf("ssstik had no result for %s", reference)
		return mo.None[media.Media](), nil
	}

	return mo.Some(media.Media{
		URL:         link,
		Author:      strings.TrimSpace(doc.Find("h2").First().Text()),
		Description: strings.TrimSpace(doc.Find("p.maintext").First().Text()),
		Quality:     media.QualityHigh,
		Provider:    s.Name(),
	}), nil
}
