package main

import (
	"strings"
	"testing"
	"time"

	"github.com/nalgeon/be"

	"mediazip/internal/pattern"
)

func TestLoadMetadata(t *testing.T) {
	t.Run("yaml_list", func(t *testing.T) {
		records, err := loadMetadata(strings.NewReader(`
- authorId: alice1
  authorName: Alice
  time: 2023-05-01T10:20:30Z
  url: https://pbs.twimg.com/media/a.png
- authorId: bob
  text: "Hi: there"
`))
		be.Err(t, err, nil)
		be.Equal(t, len(records), 2)
		be.Equal(t, records[0].AuthorName, "Alice")
		be.Equal(t, records[0].Time, "2023-05-01T10:20:30Z")
		be.Equal(t, records[0].URL, "https://pbs.twimg.com/media/a.png")
		be.Equal(t, records[1].Text, "Hi: there")
	})

	t.Run("json_record", func(t *testing.T) {
		records, err := loadMetadata(strings.NewReader(`{"authorId": "alice1", "link": "https://x.com/alice1/status/1"}`))
		be.Err(t, err, nil)
		be.Equal(t, len(records), 1)
		be.Equal(t, records[0].AuthorID, "alice1")
		be.Equal(t, records[0].Link, "https://x.com/alice1/status/1")
	})

	t.Run("json_list", func(t *testing.T) {
		records, err := loadMetadata(strings.NewReader(`[{"authorId": "a"}, {"authorId": "b"}]`))
		be.Err(t, err, nil)
		be.Equal(t, len(records), 2)
		be.Equal(t, records[1].AuthorID, "b")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := loadMetadata(strings.NewReader(""))
		be.Err(t, err, "no metadata records")
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := loadMetadata(strings.NewReader("just a string"))
		be.Err(t, err, "parse metadata")
	})
}

func TestWriteNames(t *testing.T) {
	res := pattern.New(pattern.Config{Location: time.UTC})
	records := []metaRecord{
		{Metadata: pattern.Metadata{AuthorID: "alice1", AuthorName: "Alice", Time: "2023-05-01T10:20:30Z"}},
		{
			Metadata: pattern.Metadata{AuthorID: "bob", AuthorName: "Bob", Time: "2024-03-02T14:05:09Z"},
			URL:      "https://video.twimg.com/amplify_video/2/vid",
		},
	}

	var sb strings.Builder
	err := writeNames(&sb, res, "", records, "https://pbs.twimg.com/media/a.png")
	be.Err(t, err, nil)
	be.Equal(t, sb.String(), "Alice_5_1_2023_@alice1.png\nBob_3_2_2024_@bob.mp4\n")

	sb.Reset()
	err = writeNames(&sb, res, `{time:"yyyy"}-{id}`, records[:1], "")
	be.Err(t, err, nil)
	be.Equal(t, sb.String(), "2023-alice1\n")
}
