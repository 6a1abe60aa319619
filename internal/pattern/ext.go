package pattern

import (
	"net/url"
	"path"
	"strings"
)

const maxExtLen = 4 // без точки

// Extension выводит расширение файла из пути URL медиа. Если расширения нет
// или оно длиннее maxExtLen, возвращает ".mp4" для URL со словом "video",
// иначе ".jpg".
//
//	"https://pbs.twimg.com/media/abc.png?name=orig" -> ".png"
//	"https://video.twimg.com/amplify_video/123/vid" -> ".mp4"
func Extension(mediaURL string) string {
	if u, err := url.Parse(mediaURL); err == nil {
		if ext := path.Ext(u.Path); len(ext) > 1 && len(ext) <= maxExtLen+1 {
			return ext
		}
	}
	if strings.Contains(mediaURL, "video") {
		return ".mp4"
	}
	return ".jpg"
}
