// Package memstor хранит задачи в памяти процесса и удаляет их по истечении TTL.
package memstor

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"mediazip/internal/model"
)

const (
	cleanTimeout = 1 * time.Minute
)

type (
	Task = model.Task
	File = model.File
)

// Config задает ограничения хранилища. Отрицательное значение - без ограничений,
// ноль - запрещено.
type Config struct {
	MaxTotal int
	MaxFiles int
	TaskTTL  time.Duration
}

var (
	ErrTaskNotFound     = model.ErrTaskNotFound
	ErrMaxFilesExceeded = model.ErrMaxFilesExceeded
	ErrServerBusy       = model.ErrServerBusy
	ErrServerCancelled  = model.ErrServerCancelled
)

type Memstor struct {
	cfg       Config
	mu        sync.RWMutex
	tasks     map[int64]*model.Task
	cancel    context.CancelFunc
	cancelled bool
}

func New(cfg Config) *Memstor {
	m := &Memstor{
		cfg:   cfg,
		tasks: make(map[int64]*model.Task),
	}
	m.startTaskCleaner()
	return m
}

// CreateTask создает пустую задачу с шаблоном имен pattern.
func (m *Memstor) CreateTask(ctx context.Context, pattern string) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancelled {
		return Task{}, ErrServerCancelled
	}

	if m.cfg.MaxTotal >= 0 && len(m.tasks) >= m.cfg.MaxTotal {
		return Task{}, ErrServerBusy
	}

	id := rand.Int64()
	for id == 0 || m.tasks[id] != nil {
		id = rand.Int64()
	}

	now := time.Now()
	task := &model.Task{
		ID:        id,
		Pattern:   pattern,
		Files:     make([]model.File, 0),
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.TaskTTL),
	}
	m.tasks[id] = task

	return task.Clone(), nil
}

func (m *Memstor) DeleteTask(ctx context.Context, taskID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancelled {
		return ErrServerCancelled
	}

	// не проверяем наличие задачи для обеспечения идемпотентности
	delete(m.tasks, taskID)
	return nil
}

func (m *Memstor) GetTask(ctx context.Context, taskID int64) (Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cancelled {
		return Task{}, ErrServerCancelled
	}

	task, exists := m.tasks[taskID]
	if !exists {
		return Task{}, ErrTaskNotFound
	}

	return task.Clone(), nil
}

// AddFilesToTask добавляет файлы целиком или не добавляет ни одного,
// если будет превышен лимит файлов задачи.
func (m *Memstor) AddFilesToTask(ctx context.Context, taskID int64, files []File) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancelled {
		return Task{}, ErrServerCancelled
	}

	task, exists := m.tasks[taskID]
	if !exists {
		return Task{}, ErrTaskNotFound
	}

	if m.cfg.MaxFiles >= 0 && len(task.Files)+len(files) > m.cfg.MaxFiles {
		return Task{}, ErrMaxFilesExceeded
	}

	task.Files = append(task.Files, files...)
	task.UpdatedAt = time.Now()
	return task.Clone(), nil
}

func (m *Memstor) GetTaskFiles(ctx context.Context, taskID int64) ([]File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cancelled {
		return nil, ErrServerCancelled
	}

	task, exists := m.tasks[taskID]
	if !exists {
		return nil, ErrTaskNotFound
	}

	return slices.Clone(task.Files), nil
}

// UpdateTaskFiles заменяет файлы задачи с индексами idxs на files[i].
func (m *Memstor) UpdateTaskFiles(ctx context.Context, taskID int64, idxs []int, files []File) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancelled {
		return Task{}, ErrServerCancelled
	}

	task, exists := m.tasks[taskID]
	if !exists {
		return Task{}, ErrTaskNotFound
	}

	if len(idxs) > 0 {
		for i, idx := range idxs {
			if idx < len(task.Files) && i < len(files) {
				task.Files[idx] = files[i]
			}
		}
		task.UpdatedAt = time.Now()
	}

	return task.Clone(), nil
}

func (m *Memstor) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks)
}

func (m *Memstor) cleanExpiredTasks() {
	// FIXME: для перформанса нужно использовать PriorityQueue по ExpiresAt

	var expiredTasks []int64
	func() {
		m.mu.RLock()
		defer m.mu.RUnlock()

		now := time.Now()
		for _, task := range m.tasks {
			if task.ExpiresAt.Before(now) {
				expiredTasks = append(expiredTasks, task.ID)
			}
		}
	}()

	if len(expiredTasks) > 0 {
		m.mu.Lock()
		defer m.mu.Unlock()

		for _, taskID := range expiredTasks {
			delete(m.tasks, taskID)
		}
	}
}

func (m *Memstor) startTaskCleaner() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	go func() {
		tm := time.NewTimer(cleanTimeout)
		defer tm.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-tm.C:
				m.cleanExpiredTasks()
				tm.Reset(cleanTimeout)
			}
		}
	}()
}

// Cancel останавливает очистку и удаляет все задачи. Повторный вызов ничего не делает.
func (m *Memstor) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cancelled {
		m.cancel()
		clear(m.tasks)
		m.cancelled = true
	}
}
