// Package pixabay implements the media-search provider client. The wire
// contract: one generic image endpoint plus dedicated video and music
// endpoints, keyed API access, and a hits array whose shape depends on the
// endpoint. Non-2xx responses resolve to zero hits; only transport-level
// failures surface as errors.
package pixabay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/m3rciful/pixbot/internal/models"
)

const (
	defaultBaseURL = "https://pixabay.com/api/"
	defaultPerPage = 20
	defaultTimeout = 10 * time.Second
)

// Config holds provider settings.
type Config struct {
	Key     string `yaml:"key" envconfig:"PIXABAY_API_KEY"`
	BaseURL string `yaml:"base_url" envconfig:"PIXABAY_BASE_URL"`
	PerPage int    `yaml:"per_page" envconfig:"PIXABAY_PER_PAGE"`
	// TimeoutSeconds bounds every provider call; 0 -> default
	TimeoutSeconds int `yaml:"timeout_seconds" envconfig:"PIXABAY_TIMEOUT_SECONDS"`
}

// Client queries the Pixabay API.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a client with the fixed network timeout from cfg.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = defaultPerPage
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

type imageHit struct {
	Tags          string `json:"tags"`
	Views         int64  `json:"views"`
	Likes         int64  `json:"likes"`
	Downloads     int64  `json:"downloads"`
	WebFormatURL  string `json:"webformatURL"`
	LargeImageURL string `json:"largeImageURL"`
	PageURL       string `json:"pageURL"`
}

type videoHit struct {
	Tags     string `json:"tags"`
	Views    int64  `json:"views"`
	Likes    int64  `json:"likes"`
	Duration int    `json:"duration"`
	Videos   struct {
		Medium struct {
			URL string `json:"url"`
		} `json:"medium"`
	} `json:"videos"`
	PageURL string `json:"pageURL"`
}

type musicHit struct {
	Tags     string `json:"tags"`
	Views    int64  `json:"views"`
	Duration int    `json:"duration"`
	Audio    struct {
		MP3 string `json:"mp3"`
	} `json:"audio"`
	PageURL string `json:"pageURL"`
}

// Search runs a query against the endpoint selected by category. It returns
// a normalized result snapshot; an empty slice means the provider answered
// with no usable hits.
func (c *Client) Search(ctx context.Context, query string, category models.Category) ([]models.Result, error) {
	endpoint, params := c.request(query, category)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pixabay: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pixabay: %s search: %w", category, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pixabay: read response: %w", err)
	}
	return decodeHits(body, category)
}

func (c *Client) request(query string, category models.Category) (string, url.Values) {
	params := url.Values{}
	params.Set("key", c.cfg.Key)
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(c.cfg.PerPage))
	params.Set("safesearch", "true")

	switch category {
	case models.CategoryVideo:
		return c.cfg.BaseURL + "videos/", params
	case models.CategoryMusic:
		return c.cfg.BaseURL + "music/", params
	case models.CategoryGif:
		// No dedicated gif endpoint; the generic one with a wide type filter.
		params.Set("image_type", "all")
		params.Set("category", "computer")
		return c.cfg.BaseURL, params
	default:
		params.Set("image_type", string(category))
		return c.cfg.BaseURL, params
	}
}

func decodeHits(body []byte, category models.Category) ([]models.Result, error) {
	switch category {
	case models.CategoryVideo:
		var payload struct {
			Hits []videoHit `json:"hits"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("pixabay: decode video hits: %w", err)
		}
		out := make([]models.Result, 0, len(payload.Hits))
		for _, h := range payload.Hits {
			out = append(out, models.Result{
				Tags:     h.Tags,
				Views:    h.Views,
				Likes:    h.Likes,
				Duration: h.Duration,
				VideoURL: h.Videos.Medium.URL,
				PageURL:  h.PageURL,
			})
		}
		return out, nil
	case models.CategoryMusic:
		var payload struct {
			Hits []musicHit `json:"hits"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("pixabay: decode music hits: %w", err)
		}
		out := make([]models.Result, 0, len(payload.Hits))
		for _, h := range payload.Hits {
			out = append(out, models.Result{
				Tags:     h.Tags,
				Views:    h.Views,
				Duration: h.Duration,
				AudioURL: h.Audio.MP3,
				PageURL:  h.PageURL,
			})
		}
		return out, nil
	default:
		var payload struct {
			Hits []imageHit `json:"hits"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("pixabay: decode image hits: %w", err)
		}
		out := make([]models.Result, 0, len(payload.Hits))
		for _, h := range payload.Hits {
			imageURL := h.WebFormatURL
			if imageURL == "" {
				imageURL = h.LargeImageURL
			}
			out = append(out, models.Result{
				Tags:      h.Tags,
				Views:     h.Views,
				Likes:     h.Likes,
				Downloads: h.Downloads,
				ImageURL:  imageURL,
				PageURL:   h.PageURL,
			})
		}
		return out, nil
	}
}
