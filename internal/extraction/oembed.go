package extraction

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const oembedTimeout = 10 * time.Second

type oembedResponse struct {
	Title          string `json:"title"`
	AuthorName     string `json:"author_name"`
	AuthorURL      string `json:"author_url"`
	AuthorUniqueID string `json:"author_unique_id"`
	ThumbnailURL   string `json:"thumbnail_url"`
}

// OEmbedClient fetches caption, author and thumbnail for a post from a
// platform's oEmbed endpoint.
type OEmbedClient struct {
	provider string
	endpoint string
	params   func(target string) (url.Values, error)
	http     *http.Client
}

// NewInstagramOEmbed uses the Graph API endpoint, which needs app credentials.
func NewInstagramOEmbed(endpoint, appID, appSecret string, client *http.Client) *OEmbedClient {
	return &OEmbedClient{
		provider: "Instagram oEmbed",
		endpoint: endpoint,
		http:     orDefault(client),
		params: func(target string) (url.Values, error) {
			if appID == "" || appSecret == "" {
				return nil, NotConfigured("Instagram oEmbed")
			}
			return url.Values{
				"url":          {target},
				"access_token": {appID + "|" + appSecret},
				"omitscript":   {"true"},
			}, nil
		},
	}
}

func NewYouTubeOEmbed(endpoint string, client *http.Client) *OEmbedClient {
	return &OEmbedClient{
		provider: "YouTube oEmbed",
		endpoint: endpoint,
		http:     orDefault(client),
		params: func(target string) (url.Values, error) {
			return url.Values{"url": {target}, "format": {"json"}}, nil
		},
	}
}

func NewTikTokOEmbed(endpoint string, client *http.Client) *OEmbedClient {
	return &OEmbedClient{
		provider: "TikTok oEmbed",
		endpoint: endpoint,
		http:     orDefault(client),
		params: func(target string) (url.Values, error) {
			return url.Values{"url": {target}}, nil
		},
	}
}

func orDefault(client *http.Client) *http.Client {
	if client == nil {
		return newHTTPClient(oembedTimeout)
	}
	return client
}

// Fetch returns the post's caption, author and thumbnail.
func (o *OEmbedClient) Fetch(ctx context.Context, target string) (*AcquiredContent, error) {
	params, err := o.params(target)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, oembedTimeout)
	defer cancel()

	var resp oembedResponse
	if err := doJSON(ctx, o.http, o.provider, http.MethodGet, o.endpoint+"?"+params.Encode(), nil, nil, &resp); err != nil {
		return nil, err
	}

	out := &AcquiredContent{
		Caption:      stripTags(resp.Title),
		AuthorHandle: resp.AuthorName,
		ThumbnailURL: resp.ThumbnailURL,
		Sources:      []string{o.provider},
	}
	if resp.AuthorUniqueID != "" {
		out.AuthorHandle = "@" + resp.AuthorUniqueID
	}
	if out.IsEmpty() {
		return nil, fmt.Errorf("%s returned no metadata", o.provider)
	}
	return out, nil
}
