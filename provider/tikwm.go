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

const tikwmEndpoint = "https://www.tikwm.com/api/"

// Tikwm resolves through the tikwm.com JSON API, queried by URL parameter.
type Tikwm struct {
	transport *network.Transport
}

func (t *Tikwm) Name() string { return "tikwm" }

type tikwmResponse struct {
	Code int `json:"code"`
	Data struct {
		Play   string `json:"play"`
		Hdplay string `json:"hdplay"`
		Title  string `json:"title"`
		Author struct {
			UniqueID string `json:"unique_id"`
		} `json:"author"`
	} `json:"data"`
}

func (t *Tikwm) Resolve(ctx context.Context, reference string) (mo.Option[media.Media], error) {
	query := url.Values{}
	query.Set("url", reference)
	query.Set("hd", "1")

	resp, err := t.transport.Fetch(ctx, network.Request{
		Method: http.MethodGet,
		URL:    tikwmEndpoint + "?" + query.Encode(),
	})
	if err != nil {
		return mo.None[media.Media](), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mo.None[media.Media](), fmt.Errorf("tikwm returned status %d", resp.StatusCode)
	}

	var decoded tikwmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return mo.None[media.Media](), fmt.Errorf("decode tikwm response: %w", err)
	}

	playURL := decoded.Data.Hdplay
	if playURL == "" {
		playURL = decoded.Data.Play
	}

	if decoded.Code != 0 || playURL == "" {
		log.Debugf("tikwm had no result for %s", reference)
		return mo.None[media.Media](), nil
	}

	return mo.Some(media.Media{
		URL:         playURL,
		Author:      decoded.Data.Author.UniqueID,
		Description: decoded.Data.Title,
		Quality:     media.QualityHigh,
		Provider:    t.Name(),
	}), nil
}
