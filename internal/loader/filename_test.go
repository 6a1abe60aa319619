package loader

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestEntryName(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		uniqueNum int
		want      string
	}{
		{
			name:     "resolved_name",
			fileName: "Alice_5_1_2023_@alice1.jpg",
			want:     "Alice_5_1_2023_@alice1.jpg",
		},
		{
			name:     "empty_base",
			fileName: ".jpg",
			want:     "unnamed.jpg",
		},
		{
			name:     "empty",
			fileName: "",
			want:     "unnamed",
		},
		{
			name:      "unique",
			fileName:  "photo.jpg",
			uniqueNum: 2,
			want:      "photo-2.jpg",
		},
		{
			name:      "empty_with_unique",
			fileName:  ".mp4",
			uniqueNum: 5,
			want:      "unnamed-5.mp4",
		},
		{
			name:     "reserved_name",
			fileName: "con.jpg",
			want:     "con_.jpg",
		},
		{
			name:      "reserved_name_with_unique",
			fileName:  "con.jpg",
			uniqueNum: 2,
			want:      "con-2.jpg",
		},
		{
			name:     "backslash",
			fileName: `a\b.png`,
			want:     "a_b.png",
		},
		{
			name:     "control_chars",
			fileName: "file\x00\x01end.mp4",
			want:     "fileend.mp4",
		},
		{
			name:     "trailing_dots_and_spaces",
			fileName: "  name. .jpg",
			want:     "name.jpg",
		},
		{
			name:     "no_ext",
			fileName: "noext",
			want:     "noext",
		},
		{
			name:     "long_ext_is_part_of_name",
			fileName: "text_with.verylongext",
			want:     "text_with.verylongext",
		},
		{
			name:     "double_ext",
			fileName: "archive.tar.gz",
			want:     "archive.tar.gz",
		},
		{
			name:     "unicode",
			fileName: "Иван_2023 🎉.jpg",
			want:     "Иван_2023 🎉.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entryName(tt.fileName, tt.uniqueNum)
			be.Equal(t, got, tt.want)
		})
	}
}

func TestUniqueNames(t *testing.T) {
	names := newUniqueNames(statusFileName)

	be.Equal(t, names.next("a.jpg"), "a.jpg")
	be.Equal(t, names.next("A.JPG"), "A-2.JPG")
	be.Equal(t, names.next("a.jpg"), "a-3.jpg")
	be.Equal(t, names.next("b.jpg"), "b.jpg")
	be.Equal(t, names.next("status.json"), "status-2.json")
	be.Equal(t, names.next(""), "unnamed")
	be.Equal(t, names.next(""), "unnamed-2")
}
