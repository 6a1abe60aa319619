package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"mediazip/internal/model"
)

const photoPost = `{
	"code": 200,
	"tweet": {
		"text": "two photos",
		"created_at": "Wed Oct 05 20:17:27 +0000 2022",
		"author": {"name": "Alice", "screen_name": "alice1", "avatar_url": "https://pbs.twimg.com/a.jpg"},
		"media": {"photos": [{"url": "https://pbs.twimg.com/media/p1.jpg"}, {"url": "https://pbs.twimg.com/media/p2.png"}]}
	}
}`

const videoPost = `{
	"code": 200,
	"tweet": {
		"text": "video",
		"created_at": "Wed Oct 05 20:17:27 +0000 2022",
		"author": {},
		"media": {
			"photos": [{"url": "https://pbs.twimg.com/media/p1.jpg"}],
			"videos": [{"url": "https://video.twimg.com/v1.mp4", "thumbnail_url": "https://pbs.twimg.com/t1.jpg"}, {"url": "https://video.twimg.com/v2.mp4"}]
		}
	}
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /alice1/status/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(photoPost))
	})
	mux.HandleFunc("GET /bob/status/2", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(videoPost))
	})
	mux.HandleFunc("GET /carol/status/3", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 200, "tweet": {"text": "no media", "author": {"screen_name": "carol"}}}`))
	})
	mux.HandleFunc("GET /dave/status/4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 404, "message": "NOT_FOUND"}`))
	})
	mux.HandleFunc("GET /eve/status/5", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	c := New(srv.Client(), srv.URL+"/", 5*time.Second)
	c.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return c
}

func TestParseLink(t *testing.T) {
	tests := []struct {
		link   string
		user   string
		postID string
		valid  bool
	}{
		{"https://x.com/alice1/status/12345", "alice1", "12345", true},
		{"https://twitter.com/Bob/status/987?s=20", "Bob", "987", true},
		{"http://www.twitter.com/c/status/1/photo/1", "c", "1", true},
		{"  HTTPS://X.COM/d/status/2  ", "d", "2", true},
		{"https://x.com/alice1", "", "", false},
		{"https://example.com/alice1/status/1", "", "", false},
		{"not a link", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			user, postID, err := ParseLink(tt.link)
			if !tt.valid {
				be.Err(t, err, ErrInvalidLink)
				return
			}
			be.Err(t, err, nil)
			be.Equal(t, user, tt.user)
			be.Equal(t, postID, tt.postID)
		})
	}
}

func TestFetchPhotos(t *testing.T) {
	c := newTestClient(newTestServer(t))

	media, err := c.Fetch(context.Background(), "https://x.com/alice1/status/1")
	be.Err(t, err, nil)
	be.Equal(t, len(media), 2)

	m := media[1]
	be.Equal(t, m.Type, model.MediaImage)
	be.Equal(t, m.URL, "https://pbs.twimg.com/media/p2.png")
	be.Equal(t, m.PreviewURL, m.URL)
	be.Equal(t, m.AuthorName, "Alice")
	be.Equal(t, m.AuthorID, "alice1")
	be.Equal(t, m.AuthorAvatar, "https://pbs.twimg.com/a.jpg")
	be.Equal(t, m.Text, "two photos")
	be.Equal(t, m.Time, "Wed Oct 05 20:17:27 +0000 2022")
	be.Equal(t, m.Link, "https://x.com/alice1/status/1")
	be.Equal(t, m.PostID, "1")
}

func TestFetchVideosWinOverPhotos(t *testing.T) {
	c := newTestClient(newTestServer(t))

	media, err := c.Fetch(context.Background(), "https://twitter.com/bob/status/2")
	be.Err(t, err, nil)
	be.Equal(t, len(media), 2)
	be.Equal(t, media[0].Type, model.MediaVideo)
	be.Equal(t, media[0].PreviewURL, "https://pbs.twimg.com/t1.jpg")
	be.Equal(t, media[1].PreviewURL, "https://pbs.twimg.com/media/p1.jpg")

	// автор не пришел - берется из ссылки
	be.Equal(t, media[0].AuthorName, "bob")
	be.Equal(t, media[0].AuthorID, "bob")
}

func TestFetchErrors(t *testing.T) {
	c := newTestClient(newTestServer(t))
	ctx := context.Background()

	_, err := c.Fetch(ctx, "https://x.com/carol/status/3")
	be.Err(t, err, ErrNoMedia)

	_, err = c.Fetch(ctx, "https://x.com/dave/status/4")
	be.Err(t, err, ErrProvider)

	_, err = c.Fetch(ctx, "https://x.com/eve/status/5")
	be.Err(t, err, ErrProvider)
	be.Err(t, err, "429")

	_, err = c.Fetch(ctx, "https://example.com/nope")
	be.Err(t, err, ErrInvalidLink)
}

func TestFetchMissingTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 200, "tweet": {"media": {"photos": [{"url": "https://pbs.twimg.com/media/p.jpg"}]}}}`))
	}))
	defer srv.Close()
	c := newTestClient(srv)

	media, err := c.Fetch(context.Background(), "https://x.com/zed/status/9")
	be.Err(t, err, nil)
	be.Equal(t, media[0].Time, "2024-01-02T03:04:05Z")
}

func TestFetchAll(t *testing.T) {
	c := newTestClient(newTestServer(t))

	media, err := c.FetchAll(context.Background(), []string{
		"https://x.com/alice1/status/1",
		"",
		"garbage",
		"https://x.com/carol/status/3",
		"https://x.com/bob/status/2",
	})
	be.Equal(t, len(media), 4)
	be.True(t, errors.Is(err, ErrInvalidLink))
	be.True(t, errors.Is(err, ErrNoMedia))
}
