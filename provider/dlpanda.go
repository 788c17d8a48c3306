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

const dlpandaEndpoint = "https://dlpanda.com/"

// Dlpanda resolves through dlpanda.com, queried by URL parameter and parsed
// from the result markup.
type Dlpanda struct {
	transport *network.Transport
}

func (d *Dlpanda) Name() string { return "dlpanda" }

func (d *Dlpanda) Resolve(ctx context.Context, reference string) (mo.Option[media.Media], error) {
	query := url.Values{}
	query.Set("url", reference)

	resp, err := d.transport.Fetch(ctx, network.Request{
		Method: http.MethodGet,
		URL:    dlpandaEndpoint + "?" + query.Encode(),
	})
	if err != nil {
		return mo.None[media.Media](), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mo.None[media.Media](), fmt.Errorf("dlpanda returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return mo.None[media.Media](), fmt.Errorf("parse dlpanda page: %w", err)
	}

	source, ok := doc.Find("video > source").First().Attr("src")
	if !ok || strings.TrimSpace(source) == "" {
		log.Debugf("dlpanda had no result for %s", reference)
		return mo.None[media.Media](), nil
	}

	if strings.HasPrefix(source, "//") {
		source = "https:" + source
	}

	return mo.Some(media.Media{
		URL:      source,
		Author:   strings.TrimSpace(doc.Find(".video-info .author").First().Text()),
		Quality:  media.QualityHigh,
		Provider: d.Name(),
	}), nil
}
