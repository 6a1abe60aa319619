package model

import "mediazip/internal/pattern"

const (
	MediaVideo = "video"
	MediaImage = "image"
)

// Media - один медиафайл поста.
type Media struct {
	Type         string `json:"type"`
	URL          string `json:"url"`
	PreviewURL   string `json:"preview_url,omitempty"`
	AuthorName   string `json:"author_name,omitempty"`
	AuthorID     string `json:"author_id,omitempty"`
	AuthorAvatar string `json:"author_avatar,omitempty"`
	Text         string `json:"text,omitempty"`
	Time         string `json:"time,omitempty"`
	Link         string `json:"link,omitempty"`
	PostID       string `json:"post_id,omitempty"`
}

// Metadata возвращает поля, которые участвуют в построении имени файла.
func (m Media) Metadata() pattern.Metadata {
	return pattern.Metadata{
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		Text:       m.Text,
		Time:       m.Time,
		Link:       m.Link,
	}
}
