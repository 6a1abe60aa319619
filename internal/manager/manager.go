// Package manager связывает хранилище задач, провайдер медиа, загрузчик и
// шаблоны имен файлов.
package manager

import (
	"cmp"
	"context"
	"io"
	"net/http"
	"sync"

	"mediazip/internal/config"
	"mediazip/internal/logger"
	"mediazip/internal/memstor"
	"mediazip/internal/model"
	"mediazip/internal/pattern"
)

type (
	Task  = model.Task
	File  = model.File
	Media = model.Media
)

var (
	ErrTaskNotFound     = model.ErrTaskNotFound
	ErrMaxFilesExceeded = model.ErrMaxFilesExceeded
	ErrServerBusy       = model.ErrServerBusy
	ErrServerCancelled  = model.ErrServerCancelled
)

type Provider interface {
	Fetch(ctx context.Context, link string) ([]Media, error)
	FetchAll(ctx context.Context, links []string) ([]Media, error)
}

type Loader interface {
	Check(ctx context.Context, files []File) ([]File, error)
	Download(ctx context.Context, files []File, out io.Writer) ([]File, error)
}

type Manager struct {
	cfg            config.Manager
	store          *memstor.Memstor
	provider       Provider
	loader         Loader
	resolver       *pattern.Resolver
	defaultPattern string
	muActive       sync.Mutex
	active         int // количество активных загрузок
}

func New(cfg config.Manager, pcfg config.Pattern, stor *memstor.Memstor, prv Provider, ldr Loader) *Manager {
	return &Manager{
		cfg:      cfg,
		store:    stor,
		provider: prv,
		loader:   ldr,
		resolver: pattern.New(pattern.Config{
			Location:     pcfg.TimeZone,
			DateLayout:   pcfg.DateLayout,
			MatchTimeout: pcfg.MatchTimeout,
		}),
		defaultPattern: cmp.Or(pcfg.Default, pattern.DefaultPattern),
	}
}

// CreateTask создает задачу. Пустой шаблон заменяется шаблоном по умолчанию.
func (m *Manager) CreateTask(ctx context.Context, tmpl string) (Task, error) {
	return m.store.CreateTask(ctx, cmp.Or(tmpl, m.defaultPattern))
}

func (m *Manager) DeleteTask(ctx context.Context, taskID int64) error {
	return m.store.DeleteTask(ctx, taskID)
}

// AddLinkToTask получает медиа поста и добавляет их в задачу. Имя каждого
// файла вычисляется по шаблону задачи сразу.
func (m *Manager) AddLinkToTask(ctx context.Context, taskID int64, link string) (Task, error) {
	ctx = logger.With(ctx, "taskID", taskID)
	log := logger.FromContext(ctx).With("op", "addLinkToTask")

	task, err := m.store.GetTask(ctx, taskID)
	if err != nil {
		return Task{}, err
	}

	// ходим к провайдеру без блокировок хранилища
	media, err := m.provider.Fetch(ctx, link)
	if err != nil {
		log.Debug("fetch failed", "link", link, "error", err)
		return Task{}, err
	}

	files := FilesFromMedia(m.resolver, task.Pattern, media)
	log.Debug("media added", "link", link, "count", len(files))

	return m.store.AddFilesToTask(ctx, taskID, files)
}

// FilesFromMedia строит файлы задачи, называя каждый по шаблону tmpl.
func FilesFromMedia(res *pattern.Resolver, tmpl string, media []Media) []File {
	files := make([]File, 0, len(media))
	for _, md := range media {
		files = append(files, File{
			URL:   md.URL,
			Name:  res.FileName(tmpl, md.Metadata(), md.URL),
			Media: &md,
		})
	}
	return files
}

// ResolveName строит имя файла без создания задачи (для предпросмотра).
func (m *Manager) ResolveName(tmpl string, md pattern.Metadata, mediaURL string) (name, ext string) {
	return m.resolver.Resolve(cmp.Or(tmpl, m.defaultPattern), md), pattern.Extension(mediaURL)
}

// FetchMedia получает медиа постов без создания задачи.
func (m *Manager) FetchMedia(ctx context.Context, links []string) ([]Media, error) {
	return m.provider.FetchAll(ctx, links)
}

func (m *Manager) GetTaskStatus(ctx context.Context, taskID int64) (Task, error) {
	ctx = logger.With(ctx, "taskID", taskID)

	files, err := m.store.GetTaskFiles(ctx, taskID)
	if err != nil {
		return Task{}, err
	}

	// составляем список файлов требующих проверки (еще не проверяли или BadGateway на прошлой проверке)
	check := make([]File, 0, len(files))
	idxs := make([]int, 0, len(files))

	for i := range files {
		if s := files[i].Status; s == 0 || s == http.StatusBadGateway {
			check = append(check, files[i])
			idxs = append(idxs, i)
		}
	}

	// чекаем
	if len(check) > 0 {
		check, err = m.loader.Check(ctx, check)
		if err != nil {
			return Task{}, err
		}
	}

	return m.store.UpdateTaskFiles(ctx, taskID, idxs, check)
}

func (m *Manager) getDownloadSlot() bool {
	m.muActive.Lock()
	defer m.muActive.Unlock()

	if m.active < m.cfg.MaxActive {
		m.active++
		return true
	}

	return false
}

func (m *Manager) freeDownloadSlot() {
	m.muActive.Lock()
	defer m.muActive.Unlock()
	m.active--
}

// ProcessTask собирает архив задачи в out. Одновременно собирается
// не больше MaxActive архивов, сверх этого - ErrServerBusy.
func (m *Manager) ProcessTask(ctx context.Context, taskID int64, out io.Writer) error {
	if !m.getDownloadSlot() {
		return ErrServerBusy
	}
	defer m.freeDownloadSlot()

	ctx = logger.With(ctx, "taskID", taskID)

	files, err := m.store.GetTaskFiles(ctx, taskID)
	if err != nil {
		return err
	}

	// составляем список файлов для загрузки (еще не проверяли или OK на прошлой проверке)
	download := make([]File, 0, len(files))
	idxs := make([]int, 0, len(files))

	for i := range files {
		if s := files[i].Status; s == 0 || s == http.StatusOK {
			download = append(download, files[i])
			idxs = append(idxs, i)
		}
	}

	// загружаем
	download, err = m.loader.Download(ctx, download, out)

	// статусы сохраняем и при ошибке загрузки
	_, _ = m.store.UpdateTaskFiles(ctx, taskID, idxs, download)

	return err
}
