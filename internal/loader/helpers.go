package loader

import (
	"net/http"
	"strconv"
	"strings"
)

func getContentLength(resp *http.Response) int64 {
	sizeStr := resp.Header.Get("Content-Length")
	if sizeStr == "" {
		return 0
	}
	size, err := strconv.ParseInt(sizeStr, 10, 64)
	if err != nil {
		return 0
	}
	return size
}

func getContentType(resp *http.Response) string {
	contentType := resp.Header.Get("Content-Type")
	if end := strings.IndexByte(contentType, ';'); end != -1 {
		contentType = contentType[:end]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// genericContentType - заголовок ничего не говорит о типе, решает сигнатура.
func genericContentType(contentType string) bool {
	switch contentType {
	case "", "application/octet-stream", "binary/octet-stream":
		return true
	}
	return false
}
