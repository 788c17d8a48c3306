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

const (
	tikmateEndpoint = "https://api.tikmate.app/api/lookup"
	tikmateCDN      = "https://tikmate.app/download/%s/%s.mp4"
)

// Tikmate resolves through the tikmate.app lookup API. The API answers with
// a token pair from which the CDN location is derived.
type Tikmate struct {
	transport *network.Transport
}

func (t *Tikmate) Name() string { return "tikmate" }

type tikmateResponse struct {
	Success    bool   `json:"success"`
	Token      string `json:"token"`
	ID         string `json:"id"`
	AuthorName string `json:"author_name"`
	Caption    string `json:"caption"`
}

func (t *Tikmate) Resolve(ctx context.Context, reference string) (mo.Option[media.Media], error) {
	form := url.Values{}
	form.Set("url", reference)

	resp, err := t.transport.Fetch(ctx, network.Request{
		Method: http.MethodPost,
		URL:    tikmateEndpoint,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
		Body: []byte(form.Encode()),
	})
	if err != nil {
		return mo.None[media.Media](), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mo.None[media.Media](), fmt.Errorf("tikmate returned status %d", resp.StatusCode)
	}

	var decoded tikmateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return mo.None[media.Media](), fmt.Errorf("decode tikmate response: %w", err)
	}

	if !decoded.Success || decoded.Token == "" || decoded.ID == "" {
		log.Debugf("tikmate had no result for %s", reference)
		return mo.None[media.Media](), nil
	}

	return mo.Some(media.Media{
		URL:         fmt.Sprintf(tikmateCDN, decoded.Token, decoded.ID),
		Author:      decoded.AuthorName,
		Description: decoded.Caption,
		Quality:     media.QualityHigh,
		Provider:    t.Name(),
	}), nil
}
