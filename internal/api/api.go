package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"mediazip/internal/logger"
	"mediazip/internal/model"
	"mediazip/internal/pattern"
)

type Manager interface {
	CreateTask(ctx context.Context, tmpl string) (model.Task, error)
	DeleteTask(ctx context.Context, taskID int64) error
	AddLinkToTask(ctx context.Context, taskID int64, link string) (model.Task, error)
	GetTaskStatus(ctx context.Context, taskID int64) (model.Task, error)
	ProcessTask(ctx context.Context, taskID int64, out io.Writer) error
	ResolveName(tmpl string, md pattern.Metadata, mediaURL string) (name, ext string)
	FetchMedia(ctx context.Context, links []string) ([]model.Media, error)
}

// New собирает роутер API. Все пути вне /api отдаются static (если не nil).
func New(manager Manager, static http.Handler, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(logger.Middleware(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", Ping())
		r.Post("/names", ResolveName(manager))
		r.Post("/media", FetchMedia(manager))
		r.Post("/tasks", CreateTask(manager))
		r.Delete("/tasks/{id}", DeleteTask(manager))
		r.Get("/tasks/{id}", GetTaskStatus(manager))
		r.Post("/tasks/{id}/links", AddLinkToTask(manager))
		r.Get("/tasks/{id}/archive", ProcessTask(manager))
	})

	if static != nil {
		r.Handle("/*", static)
	}

	return r
}

func Ping() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "Ping")
		h.WriteResponse(map[string]string{"status": "ok"}, http.StatusOK)
	}
}

type resolveNameRequest struct {
	Pattern  string           `json:"pattern"`
	Metadata pattern.Metadata `json:"metadata"`
	URL      string           `json:"url"`
}

type resolveNameResponse struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
	FileName  string `json:"file_name"`
}

func ResolveName(m Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "ResolveName")

		var req resolveNameRequest
		if err := h.ReadRequest(&req); err != nil {
			h.WriteError(err)
			return
		}

		name, ext := m.ResolveName(req.Pattern, req.Metadata, req.URL)
		h.WriteResponse(resolveNameResponse{
			Name:      name,
			Extension: ext,
			FileName:  name + ext,
		}, http.StatusOK)
	}
}

type fetchMediaRequest struct {
	Links []string `json:"links"`
}

type fetchMediaResponse struct {
	Media  []model.Media `json:"media"`
	Errors []string      `json:"errors,omitempty"`
}

func FetchMedia(m Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "FetchMedia")

		var req fetchMediaRequest
		if err := h.ReadRequest(&req); err != nil {
			h.WriteError(err)
			return
		}

		if len(req.Links) == 0 {
			h.WriteError(&httpError{
				StatusCode: http.StatusBadRequest,
				StatusMsg:  "links is required",
			})
			return
		}

		media, err := m.FetchMedia(h.Ctx(), req.Links)
		resp := fetchMediaResponse{
			Media:  media,
			Errors: errorMessages(err),
		}
		if resp.Media == nil {
			resp.Media = []model.Media{}
		}

		h.WriteResponse(resp, http.StatusOK)
	}
}

// errorMessages раскладывает ошибку, собранную errors.Join, на сообщения.
func errorMessages(err error) []string {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []string{err.Error()}
	}
	var msgs []string
	for _, e := range joined.Unwrap() {
		msgs = append(msgs, e.Error())
	}
	return msgs
}

type createTaskRequest struct {
	Pattern string `json:"pattern,omitempty"`
}

type createTaskResponse struct {
	TaskID  int64  `json:"task_id"`
	Pattern string `json:"pattern"`
}

func CreateTask(m Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "CreateTask")

		// тело необязательно: без него задача получает шаблон по умолчанию
		var req createTaskRequest
		if err := h.ReadOptionalRequest(&req); err != nil {
			h.WriteError(err)
			return
		}

		task, err := m.CreateTask(h.Ctx(), req.Pattern)
		if err != nil {
			h.WriteError(err)
			return
		}

		resp := createTaskResponse{TaskID: task.ID, Pattern: task.Pattern}
		h.WriteResponse(resp, http.StatusCreated)
	}
}

func DeleteTask(m Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "DeleteTask")

		taskID, err := h.GetID()
		if err != nil {
			h.WriteError(err)
			return
		}

		if err := m.DeleteTask(h.Ctx(), taskID); err != nil {
			h.WriteError(err)
			return
		}

		h.WriteResponse(struct{}{}, http.StatusOK)
	}
}

type addLinkToTaskRequest struct {
	Link string `json:"link,omitempty"`
}

func AddLinkToTask(m Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "AddLinkToTask")

		taskID, err := h.GetID()
		if err != nil {
			h.WriteError(err)
			return
		}

		var req addLinkToTaskRequest
		if err := h.ReadRequest(&req); err != nil {
			h.WriteError(err)
			return
		}

		if strings.TrimSpace(req.Link) == "" {
			h.WriteError(&httpError{
				StatusCode: http.StatusBadRequest,
				StatusMsg:  "link is required",
			})
			return
		}

		task, err := m.AddLinkToTask(h.Ctx(), taskID, req.Link)
		if err != nil {
			h.WriteError(err)
			return
		}

		h.WriteResponse(taskResponse(task), http.StatusOK)
	}
}

type getTaskStatusResponse struct {
	Task    model.Task `json:"task"`
	Archive string     `json:"archive,omitempty"`
}

func taskResponse(task model.Task) getTaskStatusResponse {
	resp := getTaskStatusResponse{Task: task}
	if len(task.Files) > 0 {
		resp.Archive = fmt.Sprintf("/api/tasks/%d/archive", task.ID)
	}
	return resp
}

func GetTaskStatus(m Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "GetTaskStatus")

		taskID, err := h.GetID()
		if err != nil {
			h.WriteError(err)
			return
		}

		task, err := m.GetTaskStatus(h.Ctx(), taskID)
		if err != nil {
			h.WriteError(err)
			return
		}

		h.WriteResponse(taskResponse(task), http.StatusOK)
	}
}

// archiveName - имя архива, которое видит пользователь.
func archiveName(now time.Time) string {
	return "media_" + now.Format(time.DateOnly) + ".zip"
}

// archiveWriter отправляет заголовки архива при первой записи. Пока ничего
// не записано, вместо архива еще можно ответить ошибкой.
type archiveWriter struct {
	w       http.ResponseWriter
	name    string
	started bool
}

func (aw *archiveWriter) Write(p []byte) (int, error) {
	if !aw.started {
		aw.started = true
		aw.w.Header().Set("Content-Type", "application/zip")
		aw.w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, aw.name))
		aw.w.WriteHeader(http.StatusOK)
	}
	return aw.w.Write(p)
}

func ProcessTask(m Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := newHelper(w, r, "ProcessTask")

		taskID, err := h.GetID()
		if err != nil {
			h.WriteError(err)
			return
		}

		// обновляем статусы, чтобы не качать заведомо недоступные файлы
		if _, err := m.GetTaskStatus(h.Ctx(), taskID); err != nil {
			h.WriteError(err)
			return
		}

		aw := &archiveWriter{w: w, name: archiveName(time.Now())}
		bw := bufio.NewWriterSize(aw, 64*1024)

		err = m.ProcessTask(h.Ctx(), taskID, bw)
		switch {
		case err == nil || errors.Is(err, model.ErrAllFilesFailed):
			// архив со status.json отдаем и когда не скачался ни один файл
			if err != nil {
				h.log.Warn("all files failed", "taskID", taskID)
			}
			if err := bw.Flush(); err != nil {
				h.log.Error("flush failed", "error", err)
			}
		case !aw.started:
			h.WriteError(err)
		default:
			// заголовок уже отправлен, остается только лог
			h.log.Error("process task failed", "error", err)
		}
	}
}
