// Package pattern строит имя файла для скачанного медиа из пользовательского
// шаблона и метаданных поста.
//
// Шаблон переписывается последовательно, каждый этап получает результат
// предыдущего:
//
//  1. {"OUT":r/REGEX/, VAR} - подстановка групп регулярного выражения;
//  2. {time:"FORMAT"}       - дата по пользовательскому формату;
//  3. {VAR}[a:b], VAR[a:b]  - подстрока значения переменной;
//  4. {id} {name} {context} {time} {link} - простые переменные;
//  5. замена запрещенных в именах файлов символов на '_'.
//
// Ни один этап не возвращает ошибок: непонятный синтаксис остается как есть,
// некорректные выражения и даты дают пустую строку.
package pattern

import (
	"cmp"
	"log/slog"
	"time"
)

// DefaultPattern используется, когда пользователь не задал шаблон.
const DefaultPattern = "{name}_{time}_@{id}"

const (
	defaultDateLayout   = "1/2/2006" // как toLocaleDateString в en-US
	defaultMatchTimeout = 100 * time.Millisecond
)

// Metadata описывает происхождение медиафайла.
type Metadata struct {
	AuthorID   string `json:"authorId,omitempty" yaml:"authorId"`
	AuthorName string `json:"authorName,omitempty" yaml:"authorName"`
	Text       string `json:"text,omitempty" yaml:"text"`
	Time       string `json:"time,omitempty" yaml:"time"`
	Link       string `json:"link,omitempty" yaml:"link"`
}

type Config struct {
	Location     *time.Location // "локальное" время, по умолчанию time.Local
	DateLayout   string         // короткая дата для {time}
	MatchTimeout time.Duration  // ограничение на выполнение пользовательского regex
	Logger       *slog.Logger
}

// Resolver не имеет изменяемого состояния и может использоваться конкурентно.
type Resolver struct {
	loc          *time.Location
	dateLayout   string
	matchTimeout time.Duration
	log          *slog.Logger
}

func New(cfg Config) *Resolver {
	r := &Resolver{
		loc:          cfg.Location,
		dateLayout:   cmp.Or(cfg.DateLayout, defaultDateLayout),
		matchTimeout: cmp.Or(cfg.MatchTimeout, defaultMatchTimeout),
		log:          cfg.Logger,
	}
	if r.loc == nil {
		r.loc = time.Local
	}
	return r
}

var std = New(Config{})

// Resolve разрешает шаблон резолвером с настройками по умолчанию.
func Resolve(pattern string, md Metadata) string {
	return std.Resolve(pattern, md)
}

// FileName разрешает шаблон (DefaultPattern, если пустой) и добавляет
// расширение, выведенное из URL медиа.
func FileName(pattern string, md Metadata, mediaURL string) string {
	return std.FileName(pattern, md, mediaURL)
}

// Resolve превращает шаблон в имя файла. Результат не содержит символов
// / : * ? " < > | и может быть пустым.
func (r *Resolver) Resolve(pattern string, md Metadata) string {
	s := r.expandCaptures(pattern, md)
	s = r.expandDates(s, md)
	s = r.expandRanges(s, md)
	s = r.expandVars(s, md)
	return Sanitize(s)
}

func (r *Resolver) FileName(pattern string, md Metadata, mediaURL string) string {
	return r.Resolve(cmp.Or(pattern, DefaultPattern), md) + Extension(mediaURL)
}

func (r *Resolver) logger() *slog.Logger {
	if r.log != nil {
		return r.log
	}
	return slog.Default()
}

// rawValue - значение переменной без форматирования (для regex).
func rawValue(name string, md Metadata) string {
	switch name {
	case "id":
		return md.AuthorID
	case "name":
		return md.AuthorName
	case "context":
		return md.Text
	case "time":
		return md.Time
	case "link":
		return md.Link
	}
	return ""
}

// displayValue - значение переменной в том виде, в котором оно попадает в имя.
func (r *Resolver) displayValue(name string, md Metadata) string {
	if name == "time" {
		date, _ := r.ShortDate(md.Time)
		return date
	}
	return rawValue(name, md)
}
