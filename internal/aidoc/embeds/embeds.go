// Пакет embeds проверяет и разрешает ссылки для встраиваемого контента.
// Команда Video палитры принимает только YouTube ссылки; метаданные ролика
// запрашиваются через oEmbed с повторными попытками.
package embeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const oembedEndpoint = "https://www.youtube.com/oembed"

var ErrUnsupportedLink = errors.New("unsupported embed link")

// Embed - метаданные встраиваемого видео.
type Embed struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

type Resolver struct {
	client *retryablehttp.Client
}

func NewResolver() *Resolver {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil
	client.HTTPClient.Timeout = 10 * time.Second
	return &Resolver{client: client}
}

// Resolve проверяет, что rawURL является YouTube ссылкой, и запрашивает
// метаданные ролика. Невалидная ссылка возвращает ErrUnsupportedLink.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*Embed, error) {
	normalized, err := NormalizeYouTubeURL(rawURL)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s?url=%s&format=json", oembedEndpoint, url.QueryEscape(normalized))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("oembed request failed: %s", resp.Status)
	}

	var embed Embed
	if err := json.NewDecoder(resp.Body).Decode(&embed); err != nil {
		return nil, err
	}
	embed.URL = normalized

	return &embed, nil
}

// NormalizeYouTubeURL проверяет, что ссылка ведет на YouTube ролик, и приводит
// ее к канонической форме watch.
func NormalizeYouTubeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ErrUnsupportedLink
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrUnsupportedLink
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	var videoID string
	switch host {
	case "youtube.com", "m.youtube.com":
		switch {
		case u.Path == "/watch":
			videoID = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			videoID = strings.TrimPrefix(u.Path, "/shorts/")
		case strings.HasPrefix(u.Path, "/embed/"):
			videoID = strings.TrimPrefix(u.Path, "/embed/")
		}
	case "youtu.be":
		videoID = strings.TrimPrefix(u.Path, "/")
	}

	videoID = strings.Trim(videoID, "/")
	if videoID == "" {
		return "", ErrUnsupportedLink
	}

	return "https://www.youtube.com/watch?v=" + videoID, nil
}
