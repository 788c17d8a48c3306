package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/samber/mo"
	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/media"
	"github.com/tokgrab-cli/tokgrab/network"
)

const snaptikEndpoint = "https://snaptik.app/abc2.php"

// Snaptik resolves through the snaptik.app conversion endpoint.
type Snaptik struct {
	transport *network.Transport
}

func (s *Snaptik) Name() string { return "snaptik" }

// snaptikResponse is the anticipated JSON response shape.
type snaptikResponse struct {
	Data struct {
		Play   string `json:"play"`
		Author struct {
			Nickname string `json:"nickname"`
		} `json:"author"`
		Title string `json:"title"`
	} `json:"data"`
}

func (s *Snaptik) Resolve(ctx context.Context, reference string) (mo.Option[media.Media], error) {
	form := url.Values{}
	form.Set("url", reference)

	resp, err := s.transport.Fetch(ctx, network.Request{
		Method: http.MethodPost,
		URL:    snaptikEndpoint,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"Origin":       "https://snaptik.app",
		},
		Body: []byte(form.Encode()),
	})
	if err != nil {
		return mo.None[media.Media](), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mo.None[media.Media](), fmt.Errorf("snaptik returned status %d", resp.StatusCode)
	}

	var decoded snaptikResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return mo.None[media.Media](), fmt.Errorf("decode snaptik response: %w", err)
	}

	if decoded.Data.Play == "" {
		log.Debugf("snaptik had no result for %s", reference)
		return mo.None[media.Media](), nil
	}

	return mo.Some(media.Media{
		URL:         decoded.Data.Play,
		Author:      decoded.Data.Author.Nickname,
		Description: decoded.Data.Title,
		Quality:     media.QualityHigh,
		Provider:    s.Name(),
	}), nil
}
