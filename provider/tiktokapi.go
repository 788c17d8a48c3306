package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/samber/mo"
	"github.com/tokgrab-cli/tokgrab/extractor"
	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/media"
	"github.com/tokgrab-cli/tokgrab/network"
)

const tiktokAPIEndpoint = "https://api16-normal-c-useast1a.tiktokv.com/aweme/v1/feed/"

// TiktokAPI resolves against the unofficial mobile feed API, queried by the
// numeric video identifier.
type TiktokAPI struct {
	transport *network.Transport
}

func (t *TiktokAPI) Name() string { return "tiktokapi" }

type tiktokAPIResponse struct {
	AwemeList []struct {
		Desc   string `json:"desc"`
		Author struct {
			UniqueID string `json:"unique_id"`
		} `json:"author"`
		Video struct {
			PlayAddr struct {
				URLList []string `json:"url_list"`
			} `json:"play_addr"`
		} `json:"video"`
	} `json:"aweme_list"`
}

func (t *TiktokAPI) Resolve(ctx context.Context, reference string) (mo.Option[media.Media], error) {
	id, ok := extractor.VideoID(reference)
	if !ok {
		// The feed API only understands numeric identifiers.
		return mo.None[media.Media](), nil
	}

	query := url.Values{}
	query.Set("aweme_id", id)

	resp, err := t.transport.Fetch(ctx, network.Request{
		Method: http.MethodGet,
		URL:    tiktokAPIEndpoint + "?" + query.Encode(),
	})
	if err != nil {
		return mo.None[media.Media](), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mo.None[media.Media](), fmt.Errorf("tiktokapi returned status %d", resp.StatusCode)
	}

	var decoded tiktokAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return mo.None[media.Media](), fmt.Errorf("decode tiktokapi response: %w", err)
	}

	if len(decoded.AwemeList) == 0 || len(decoded.AwemeList[0].Video.PlayAddr.URLList) == 0 {
		log.Debugf("tiktokapi had no result for %s", reference)
		return mo.None[media.Media](), nil
	}

	item := decoded.AwemeList[0]
	return mo.Some(media.Media{
		URL:         item.Video.PlayAddr.URLList[0],
		Author:      item.Author.UniqueID,
		Description: item.Desc,
		Quality:     media.QualityHigh,
		Provider:    t.Name(),
	}), nil
}
