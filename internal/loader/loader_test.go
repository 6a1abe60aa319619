package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/nalgeon/be"
)

var (
	jpegData = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte("j"), 100)...)
	pngData  = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}, bytes.Repeat([]byte("p"), 100)...)
	webpData = append([]byte("RIFF\x00\x00\x00\x00WEBPVP8 "), bytes.Repeat([]byte("w"), 100)...)
	mp4Data  = append([]byte("\x00\x00\x00\x18ftypmp42"), bytes.Repeat([]byte("v"), 100)...)
	textData = []byte("definitely not an image")
)

var validTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "video/mp4"}

func serve(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write(body)
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle("/a.jpg", serve("image/jpeg", jpegData))
	mux.Handle("/b.png", serve("image/png; charset=binary", pngData))
	mux.Handle("/fake.jpg", serve("image/jpeg", textData))
	mux.Handle("/pic.webp", serve("application/octet-stream", webpData))
	mux.Handle("/clip.mp4", serve("video/mp4", mp4Data))
	mux.Handle("/doc.pdf", serve("application/pdf", []byte("%PDF-1.4")))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCheck(t *testing.T) {
	srv := newTestServer(t)
	ldr := New(srv.Client(), validTypes)

	files := []File{
		{URL: srv.URL + "/a.jpg", Name: "Alice.jpg"},
		{URL: srv.URL + "/missing.jpg", Name: "missing.jpg"},
		{URL: srv.URL + "/doc.pdf", Name: "doc.pdf"},
		{URL: srv.URL + "/pic.webp", Name: "pic.webp"},
		{URL: "not a url", Name: "bad.jpg"},
	}

	got, err := ldr.Check(context.Background(), files)
	be.Err(t, err, nil)
	be.Equal(t, len(got), len(files))

	be.Equal(t, got[0].Status, http.StatusOK)
	be.Equal(t, got[0].Name, "Alice.jpg")
	be.Equal(t, got[0].ContentType, "image/jpeg")
	be.Equal(t, got[0].Size, int64(len(jpegData)))

	be.Equal(t, got[1].Status, http.StatusNotFound)
	be.Equal(t, got[1].ErrorMsg, "Not Found")

	be.Equal(t, got[2].Status, http.StatusForbidden)
	be.Equal(t, got[2].ErrorMsg, `file type "application/pdf" is not allowed`)

	be.Equal(t, got[3].Status, http.StatusOK)

	be.Equal(t, got[4].Status, http.StatusBadRequest)
	be.Equal(t, got[4].Name, "bad.jpg")
}

func TestDownload(t *testing.T) {
	srv := newTestServer(t)
	ldr := New(srv.Client(), validTypes)

	files := []File{
		{URL: srv.URL + "/a.jpg", Name: "Alice.jpg"},
		{URL: srv.URL + "/b.png", Name: "Alice.jpg"},
		{URL: srv.URL + "/missing.jpg", Name: "x.jpg"},
		{URL: srv.URL + "/fake.jpg", Name: "fake.jpg"},
		{URL: srv.URL + "/pic.webp"},
		{URL: srv.URL + "/clip.mp4", Name: "clip.mp4"},
		{URL: srv.URL + "/doc.pdf", Name: "doc.pdf"},
	}

	var buf bytes.Buffer
	got, err := ldr.Download(context.Background(), files, &buf)
	be.Err(t, err, nil)

	statuses := make([]int, len(got))
	for i, f := range got {
		statuses[i] = f.Status
	}
	be.Equal(t, statuses, []int{200, 200, 404, 403, 200, 200, 403})
	be.Equal(t, got[3].ErrorMsg, ErrUnknownFileType.Error())
	be.Equal(t, got[1].RealType, "image/png")
	be.Equal(t, got[4].RealType, "image/webp")
	be.Equal(t, got[5].RealType, "video/mp4")
	be.Equal(t, got[0].Size, int64(len(jpegData)))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	be.Err(t, err, nil)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	be.Equal(t, names, []string{"Alice.jpg", "Alice-2.jpg", "unnamed.webp", "clip.mp4", "status.json"})

	be.Equal(t, readEntry(t, zr.File[0]), jpegData)
	be.Equal(t, readEntry(t, zr.File[3]), mp4Data)

	var status []File
	err = json.Unmarshal(readEntry(t, zr.File[4]), &status)
	be.Err(t, err, nil)
	be.Equal(t, len(status), len(files))
	be.Equal(t, status[1].Name, "Alice-2.jpg")
	be.Equal(t, status[2].Status, http.StatusNotFound)
}

func TestDownloadAllFailed(t *testing.T) {
	srv := newTestServer(t)
	ldr := New(srv.Client(), validTypes)

	files := []File{
		{URL: srv.URL + "/missing.jpg", Name: "x.jpg"},
		{URL: srv.URL + "/doc.pdf", Name: "doc.pdf"},
	}

	var buf bytes.Buffer
	got, err := ldr.Download(context.Background(), files, &buf)
	be.Err(t, err, ErrAllFailed)
	be.Equal(t, len(got), 2)

	// status.json пишется и в этом случае
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	be.Err(t, err, nil)
	be.Equal(t, len(zr.File), 1)
	be.Equal(t, zr.File[0].Name, statusFileName)
}

func TestGetFileTypeBySignature(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want string
	}{
		{"jpeg", jpegData[:magicLen], "image/jpeg"},
		{"png", pngData[:magicLen], "image/png"},
		{"gif", []byte("GIF89a"), "image/gif"},
		{"webp", webpData[:magicLen], "image/webp"},
		{"mp4", mp4Data[:magicLen], "video/mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft, err := getFileTypeBySignature(tt.head)
			be.Err(t, err, nil)
			be.Equal(t, ft.MIMEType, tt.want)
		})
	}

	t.Run("riff_without_webp", func(t *testing.T) {
		_, err := getFileTypeBySignature([]byte("RIFF\x00\x00\x00\x00WAVE"))
		be.Err(t, err, ErrUnknownFileType)
	})
	t.Run("short", func(t *testing.T) {
		_, err := getFileTypeBySignature([]byte{0x00, 0x00})
		be.Err(t, err, ErrUnknownFileType)
	})
}

func readEntry(t *testing.T, f *zip.File) []byte {
	t.Helper()
	rc, err := f.Open()
	be.Err(t, err, nil)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	be.Err(t, err, nil)
	return data
}
