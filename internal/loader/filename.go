package loader

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	defaultFileName = "unnamed"
	statusFileName  = "status.json"
)

var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true,
	"COM4": true, "COM5": true, "COM6": true,
	"COM7": true, "COM8": true, "COM9": true,
	"COM¹": true, "COM²": true, "COM³": true,
	"LPT1": true, "LPT2": true, "LPT3": true,
	"LPT4": true, "LPT5": true, "LPT6": true,
	"LPT7": true, "LPT8": true, "LPT9": true,
	"LPT¹": true, "LPT²": true, "LPT³": true,
}

// entryName делает имя, построенное по шаблону, пригодным для записи в архив.
// Запрещенные символы шаблон уже заменил, здесь доводится остальное:
//
//   - удаляются управляющие и неграфические символы;
//   - '\' заменяется на '_';
//   - точки и пробелы по краям базового имени удаляются;
//   - пустое базовое имя заменяется на "unnamed";
//   - если uniqueNum > 0, базовое имя дополняется суффиксом '-<uniqueNum>';
//   - зарезервированные имена windows дополняются символом подчеркивания.
//
// Примеры:
//
//	"Alice_5_1_2023_@alice1.jpg", 0 -> "Alice_5_1_2023_@alice1.jpg"
//	".jpg", 0 -> "unnamed.jpg"
//	"photo.jpg", 2 -> "photo-2.jpg"
//	"con.jpg", 0 -> "con_.jpg"
func entryName(name string, uniqueNum int) string {
	base, ext := splitExt(name)
	base = cleanBaseName(base)
	ext = cleanBaseName(ext)

	if base == "" {
		base = defaultFileName
	}

	if uniqueNum > 0 {
		return base + "-" + strconv.Itoa(uniqueNum) + ext
	}

	// Защита от зарезервированных имён Windows
	if reservedNames[strings.ToUpper(base)] {
		base += "_"
	}

	return base + ext
}

// splitExt отделяет расширение вида ".xxx" (до 5 символов с точкой).
func splitExt(name string) (string, string) {
	p := strings.LastIndexByte(name, '.')
	if p == -1 || len(name)-p > 5 || len(name)-p < 2 {
		return name, ""
	}
	return name[:p], name[p:]
}

func cleanBaseName(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteByte('_')
		case unicode.IsSpace(r):
			sb.WriteByte(' ')
		case unicode.IsControl(r) || !unicode.IsPrint(r):
			// Удаляем управляющие и неграфические символы
		default:
			sb.WriteRune(r)
		}
	}

	return strings.Trim(sb.String(), ". ")
}

// uniqueNames выдает имена записей архива без повторов (без учета регистра).
type uniqueNames struct {
	used map[string]bool
}

func newUniqueNames(reserved ...string) *uniqueNames {
	u := &uniqueNames{used: make(map[string]bool)}
	for _, name := range reserved {
		u.used[strings.ToLower(name)] = true
	}
	return u
}

func (u *uniqueNames) next(name string) string {
	n := entryName(name, 0)
	for i := 2; u.used[strings.ToLower(n)]; i++ {
		n = entryName(name, i)
	}
	u.used[strings.ToLower(n)] = true
	return n
}
