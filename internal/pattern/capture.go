package pattern

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// captureToken - разобранный {"OUT":r/REGEX/, VAR}.
type captureToken struct {
	output string
	expr   string
	name   string
}

const captureOpen = `{"`

// groupRefRe находит $n в OUT.
var groupRefRe = regexp.MustCompile(`\$(\d+)`)

// expandCaptures заменяет все токены с регулярными выражениями. Токены
// разбираются сканером, а не общим regex: внутри REGEX и OUT могут быть
// скобки, которые иначе перепутаются с синтаксисом шаблона.
func (r *Resolver) expandCaptures(s string, md Metadata) string {
	if !strings.Contains(s, captureOpen) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))

	for {
		i := strings.Index(s, captureOpen)
		if i < 0 {
			break
		}
		sb.WriteString(s[:i])

		tok, n, ok := parseCapture(s[i:])
		if !ok {
			// не токен: оставляем '{' как текст и ищем дальше
			sb.WriteByte('{')
			s = s[i+1:]
			continue
		}

		sb.WriteString(r.capture(tok, md))
		s = s[i+n:]
	}

	sb.WriteString(s)
	return sb.String()
}

// parseCapture разбирает токен в начале s. Возвращает токен и его длину в байтах.
//
// Грамматика:
//
//	{"OUT":r/REGEX/ , VAR}
//
// OUT непустой и без '"'; REGEX непустой, '/' внутри экранируется '\'; VAR непустой;
// пробелы вокруг ',' и VAR допускаются.
func parseCapture(s string) (captureToken, int, bool) {
	var tok captureToken

	if !strings.HasPrefix(s, captureOpen) {
		return tok, 0, false
	}
	i := len(captureOpen)

	end := strings.IndexByte(s[i:], '"')
	if end <= 0 {
		return tok, 0, false
	}
	tok.output = s[i : i+end]
	i += end + 1

	if !strings.HasPrefix(s[i:], ":r/") {
		return tok, 0, false
	}
	i += len(":r/")

	start := i
	for i < len(s) && s[i] != '/' {
		if s[i] == '\\' {
			i++
		}
		i++
	}
	if i >= len(s) || i == start {
		return tok, 0, false
	}
	tok.expr = s[start:i]
	i++

	i = skipSpaces(s, i)
	if i >= len(s) || s[i] != ',' {
		return tok, 0, false
	}
	i++

	end = strings.IndexByte(s[i:], '}')
	if end <= 0 {
		return tok, 0, false
	}
	tok.name = strings.TrimSpace(s[i : i+end])
	if tok.name == "" {
		return tok, 0, false
	}

	return tok, i + end + 1, true
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// capture выполняет выражение над сырым значением переменной и подставляет
// группы в OUT. Любая ошибка дает пустую строку.
func (r *Resolver) capture(tok captureToken, md Metadata) string {
	log := r.logger().With("op", "capture", "regex", tok.expr, "var", tok.name)

	re, err := regexp2.Compile(tok.expr, regexp2.ECMAScript|regexp2.Unicode)
	if err != nil {
		log.Warn("invalid regex", "error", err)
		return ""
	}
	re.MatchTimeout = r.matchTimeout

	m, err := re.FindStringMatch(rawValue(tok.name, md))
	if err != nil {
		log.Warn("regex match failed", "error", err)
		return ""
	}
	if m == nil {
		return ""
	}

	return expandGroups(tok.output, m)
}

// expandGroups заменяет $n на группу n ($0 - все совпадение).
// Несуществующая или не участвовавшая группа дает пустую строку.
func expandGroups(output string, m *regexp2.Match) string {
	return groupRefRe.ReplaceAllStringFunc(output, func(ref string) string {
		n, err := strconv.Atoi(ref[1:])
		if err != nil {
			return ""
		}
		g := m.GroupByNumber(n)
		if g == nil || len(g.Captures) == 0 {
			return ""
		}
		return g.String()
	})
}
