package pattern

import (
	"cmp"
	"strings"
)

const (
	unknownValue = "unknown"
	contextLen   = 30 // сколько code units текста попадает в {context}
)

// illegalChars заменяет символы, запрещенные в именах файлов Windows и POSIX.
var illegalChars = strings.NewReplacer(
	"/", "_",
	":", "_",
	"*", "_",
	"?", "_",
	`"`, "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// Sanitize заменяет / : * ? " < > | на '_'. Идемпотентна.
func Sanitize(s string) string {
	return illegalChars.Replace(s)
}

// expandVars подставляет простые переменные за один проход: подставленные
// значения повторно не разбираются.
func (r *Resolver) expandVars(s string, md Metadata) string {
	if !strings.Contains(s, "{") {
		return s
	}
	date, _ := r.ShortDate(md.Time)
	return strings.NewReplacer(
		"{id}", cmp.Or(md.AuthorID, unknownValue),
		"{name}", cmp.Or(md.AuthorName, unknownValue),
		"{context}", Sanitize(substring(md.Text, 0, contextLen)),
		"{time}", cmp.Or(date, unknownValue),
		"{link}", cmp.Or(md.Link, unknownValue),
	).Replace(s)
}
