package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var dateTokenRe = regexp.MustCompile(`\{time:"([^"]+)"\}`)

// Токены формата в порядке проверки: длинные раньше коротких.
// Регистр важен: mm - месяц, MM - минуты.
var dateTokens = []string{"yyyy", "yy", "mm", "dd", "hh", "MM", "ss"}

var timeLayouts = []struct {
	layout string
	utc    bool // строка без зоны читается как UTC
}{
	{layout: time.RFC3339},
	{layout: time.RubyDate}, // created_at твиттера: "Wed Oct 05 20:17:27 +0000 2022"
	{layout: time.RFC1123Z},
	{layout: time.RFC1123},
	{layout: "2006-01-02T15:04:05"},
	{layout: "2006-01-02 15:04:05"},
	{layout: "2006-01-02T15:04"},
	{layout: "2006-01-02", utc: true},
}

// parseTime разбирает метку времени и переводит ее в зону резолвера.
func (r *Resolver) parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		loc := r.loc
		if l.utc {
			loc = time.UTC
		}
		if t, err := time.ParseInLocation(l.layout, s, loc); err == nil {
			return t.In(r.loc), true
		}
	}
	return time.Time{}, false
}

// ShortDate возвращает короткую дату для подстановки {time}.
// Если метку не удалось разобрать, возвращает "", false.
func (r *Resolver) ShortDate(ts string) (string, bool) {
	t, ok := r.parseTime(ts)
	if !ok {
		return "", false
	}
	return t.Format(r.dateLayout), true
}

func (r *Resolver) expandDates(s string, md Metadata) string {
	if !strings.Contains(s, `{time:"`) {
		return s
	}
	t, ok := r.parseTime(md.Time)
	if !ok {
		r.logger().Debug("unparseable time", "op", "expandDates", "time", md.Time)
	}
	return dateTokenRe.ReplaceAllStringFunc(s, func(tok string) string {
		format := dateTokenRe.FindStringSubmatch(tok)[1]
		return formatCustomDate(format, t, ok)
	})
}

// formatCustomDate заменяет токены формата слева направо без перекрытий.
// Для невалидной даты все токены заменяются пустой строкой.
func formatCustomDate(format string, t time.Time, valid bool) string {
	var fields map[string]string
	if valid {
		year := fmt.Sprintf("%04d", t.Year())
		fields = map[string]string{
			"yyyy": year,
			"yy":   year[len(year)-2:],
			"mm":   fmt.Sprintf("%02d", int(t.Month())),
			"dd":   fmt.Sprintf("%02d", t.Day()),
			"hh":   fmt.Sprintf("%02d", t.Hour()),
			"MM":   fmt.Sprintf("%02d", t.Minute()),
			"ss":   fmt.Sprintf("%02d", t.Second()),
		}
	}

	var sb strings.Builder
	sb.Grow(len(format))

loop:
	for i := 0; i < len(format); {
		for _, tok := range dateTokens {
			if strings.HasPrefix(format[i:], tok) {
				sb.WriteString(fields[tok])
				i += len(tok)
				continue loop
			}
		}
		sb.WriteByte(format[i])
		i++
	}

	return sb.String()
}
