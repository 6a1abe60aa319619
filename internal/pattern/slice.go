package pattern

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

// rangeRe: {VAR}[a:b] или VAR[a:b]. Голая форма захватывает весь текст
// до ближайшей скобки слева.
var rangeRe = regexp.MustCompile(`\{([^}]+)\}\[(\d*):(\d*)\]|([^{}\[\]]+)\[(\d*):(\d*)\]`)

func (r *Resolver) expandRanges(s string, md Metadata) string {
	if !strings.Contains(s, "[") {
		return s
	}
	return replaceAllSubmatchFunc(rangeRe, s, func(groups []string, matched []bool) string {
		name, start, end := groups[4], groups[5], groups[6]
		if matched[1] {
			name, start, end = groups[1], groups[2], groups[3]
		}

		value := r.displayValue(name, md)
		return substring(value, parseIndex(start, 0), parseIndex(end, math.MaxInt))
	})
}

// parseIndex: пустая строка - значение по умолчанию, переполнение - "бесконечность".
func parseIndex(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return math.MaxInt
	}
	return n
}

// substring возвращает s[start:end] в UTF-16 code units. Индексы
// ограничиваются длиной строки, при start > end меняются местами.
func substring(s string, start, end int) string {
	units := utf16.Encode([]rune(s))
	start = min(max(start, 0), len(units))
	end = min(max(end, 0), len(units))
	if start > end {
		start, end = end, start
	}
	return string(utf16.Decode(units[start:end]))
}

// replaceAllSubmatchFunc как ReplaceAllStringFunc, но отдает группы
// совпадения и признак участия каждой группы.
func replaceAllSubmatchFunc(re *regexp.Regexp, s string, repl func(groups []string, matched []bool) string) string {
	locs := re.FindAllStringSubmatchIndex(s, -1)
	if locs == nil {
		return s
	}

	var sb strings.Builder
	last := 0
	for _, loc := range locs {
		sb.WriteString(s[last:loc[0]])

		groups := make([]string, len(loc)/2)
		matched := make([]bool, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = s[loc[2*i]:loc[2*i+1]]
				matched[i] = true
			}
		}

		sb.WriteString(repl(groups, matched))
		last = loc[1]
	}
	sb.WriteString(s[last:])

	return sb.String()
}
