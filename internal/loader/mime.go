package loader

import (
	"bytes"
	"errors"
)

// signature - байты, которые должны стоять в файле по смещению Offset.
type signature struct {
	Offset int
	Bytes  []byte
}

type FileType struct {
	MIMEType   string
	Magic      []signature // все сигнатуры должны совпасть
	Extensions []string
}

func (f FileType) Extension() string {
	if len(f.Extensions) == 0 {
		return ""
	}
	return f.Extensions[0]
}

func (f FileType) match(head []byte) bool {
	for _, sig := range f.Magic {
		if len(head) < sig.Offset+len(sig.Bytes) {
			return false
		}
		if !bytes.Equal(head[sig.Offset:sig.Offset+len(sig.Bytes)], sig.Bytes) {
			return false
		}
	}
	return len(f.Magic) > 0
}

var fileTypes = []FileType{
	{
		MIMEType:   "image/jpeg",
		Magic:      []signature{{0, []byte{0xFF, 0xD8, 0xFF}}},
		Extensions: []string{".jpg", ".jpeg"},
	},
	{
		MIMEType:   "image/png",
		Magic:      []signature{{0, []byte{0x89, 'P', 'N', 'G'}}},
		Extensions: []string{".png"},
	},
	{
		MIMEType:   "image/gif",
		Magic:      []signature{{0, []byte("GIF8")}},
		Extensions: []string{".gif"},
	},
	{
		MIMEType:   "image/webp",
		Magic:      []signature{{0, []byte("RIFF")}, {8, []byte("WEBP")}},
		Extensions: []string{".webp"},
	},
	{
		MIMEType:   "video/mp4",
		Magic:      []signature{{4, []byte("ftyp")}}, // ISO BMFF: size(4) + "ftyp"
		Extensions: []string{".mp4", ".m4v"},
	},
}

// magicLen - сколько байт нужно прочитать, чтобы проверить любую сигнатуру.
const magicLen = 12

var ErrUnknownFileType = errors.New("unknown file type")

func getFileTypeBySignature(head []byte) (FileType, error) {
	for _, ft := range fileTypes {
		if ft.match(head) {
			return ft, nil
		}
	}
	return FileType{}, ErrUnknownFileType
}
