// Package provider получает медиа постов X/Twitter через публичный
// JSON API fxtwitter.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"mediazip/internal/logger"
	"mediazip/internal/model"
)

type Media = model.Media

var (
	ErrInvalidLink = model.ErrInvalidLink
	ErrNoMedia     = model.ErrNoMedia
	ErrProvider    = model.ErrProvider
)

const maxResponseSize = 4 << 20

var linkRe = regexp.MustCompile(`(?i)https?://(?:www\.)?(?:twitter\.com|x\.com)/([^/]+)/status/(\d+)`)

// ParseLink извлекает автора и ID поста из ссылки.
func ParseLink(link string) (user, postID string, err error) {
	m := linkRe.FindStringSubmatch(strings.TrimSpace(link))
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidLink, link)
	}
	return m[1], m[2], nil
}

type Client struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	now     func() time.Time
}

func New(client *http.Client, baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		now:     time.Now,
	}
}

// ответ api.fxtwitter.com/<user>/status/<id>
type apiResponse struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Tweet   *apiTweet `json:"tweet"`
}

type apiTweet struct {
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	Author    struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
		AvatarURL  string `json:"avatar_url"`
	} `json:"author"`
	Media *struct {
		Photos []struct {
			URL string `json:"url"`
		} `json:"photos"`
		Videos []struct {
			URL          string `json:"url"`
			ThumbnailURL string `json:"thumbnail_url"`
		} `json:"videos"`
	} `json:"media"`
}

// Fetch возвращает медиа поста. Если в посте есть видео, возвращаются только
// видео, иначе фотографии. Пост без медиа - ErrNoMedia.
func (c *Client) Fetch(ctx context.Context, link string) ([]Media, error) {
	link = strings.TrimSpace(link)
	log := logger.FromContext(ctx).With("op", "fetch", "link", link)

	user, postID, err := ParseLink(link)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	apiURL := fmt.Sprintf("%s/%s/status/%s", c.baseURL, user, postID)
	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug("request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug("unexpected status", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	var data apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&data); err != nil {
		log.Debug("decode failed", "error", err)
		return nil, fmt.Errorf("%w: decode response: %v", ErrProvider, err)
	}
	if data.Tweet == nil {
		return nil, fmt.Errorf("%w: no post data in response", ErrProvider)
	}

	media := c.collectMedia(data.Tweet, link, user, postID)
	if len(media) == 0 {
		log.Warn("post has no media")
		return nil, fmt.Errorf("%w: %s", ErrNoMedia, link)
	}

	log.Debug("success", "media", len(media))
	return media, nil
}

func (c *Client) collectMedia(tw *apiTweet, link, user, postID string) []Media {
	base := Media{
		AuthorName:   tw.Author.Name,
		AuthorID:     tw.Author.ScreenName,
		AuthorAvatar: tw.Author.AvatarURL,
		Text:         tw.Text,
		Time:         tw.CreatedAt,
		Link:         link,
		PostID:       postID,
	}
	if base.AuthorName == "" {
		base.AuthorName = user
	}
	if base.AuthorID == "" {
		base.AuthorID = user
	}
	if base.Time == "" {
		base.Time = c.now().UTC().Format(time.RFC3339)
	}

	if tw.Media == nil {
		return nil
	}

	var media []Media
	if len(tw.Media.Videos) > 0 {
		var firstPhoto string
		if len(tw.Media.Photos) > 0 {
			firstPhoto = tw.Media.Photos[0].URL
		}
		for _, v := range tw.Media.Videos {
			m := base
			m.Type = model.MediaVideo
			m.URL = v.URL
			m.PreviewURL = v.ThumbnailURL
			if m.PreviewURL == "" {
				m.PreviewURL = firstPhoto
			}
			media = append(media, m)
		}
		return media
	}

	for _, p := range tw.Media.Photos {
		m := base
		m.Type = model.MediaImage
		m.URL = p.URL
		m.PreviewURL = p.URL
		media = append(media, m)
	}
	return media
}

// FetchAll обрабатывает ссылки по очереди. Невалидные ссылки пропускаются,
// ошибки отдельных постов объединяются, медиа остальных постов возвращаются.
func (c *Client) FetchAll(ctx context.Context, links []string) ([]Media, error) {
	var (
		all  []Media
		errs []error
	)
	for _, link := range links {
		if strings.TrimSpace(link) == "" {
			continue
		}
		media, err := c.Fetch(ctx, link)
		if err != nil {
			if errors.Is(err, ErrInvalidLink) {
				logger.FromContext(ctx).Warn("invalid link skipped", "op", "fetchAll", "link", link)
			}
			errs = append(errs, err)
			continue
		}
		all = append(all, media...)
	}
	return all, errors.Join(errs...)
}
