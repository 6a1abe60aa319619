// Package loader проверяет и скачивает медиафайлы задачи в zip-архив.
package loader

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"mediazip/internal/logger"
	"mediazip/internal/model"
)

const bufSize = 32 * 1024

type File = model.File

var ErrAllFailed = model.ErrAllFilesFailed

type Loader struct {
	client *http.Client
	valid  map[string]bool
}

func New(client *http.Client, validMIMETypes []string) *Loader {
	valid := make(map[string]bool, len(validMIMETypes))
	for _, contentType := range validMIMETypes {
		valid[contentType] = true
	}
	return &Loader{
		client: client,
		valid:  valid,
	}
}

// Check параллельно проверяет доступность файлов запросом HEAD.
// Имена и метаданные файлов сохраняются, обновляются только статус, тип и размер.
func (ldr *Loader) Check(ctx context.Context, files []File) ([]File, error) {
	var wg sync.WaitGroup
	wg.Add(len(files))

	checked := make([]File, len(files))
	errs := make([]error, len(files))

	for i, file := range files {
		go func(i int, file File) {
			defer wg.Done()
			checked[i], errs[i] = ldr.CheckFile(ctx, file)
		}(i, file)
	}

	wg.Wait()

	return checked, errors.Join(errs...)
}

func (ldr *Loader) CheckFile(ctx context.Context, file File) (File, error) {
	log := logger.FromContext(ctx).With("op", "checkFile", "url", file.URL)

	file = resetFile(file)
	defer func() {
		if file.Status != http.StatusOK && file.ErrorMsg == "" {
			file.ErrorMsg = http.StatusText(file.Status)
		}
	}()

	// Валидация URL
	u, err := url.ParseRequestURI(file.URL)
	if err != nil {
		file.Status = http.StatusBadRequest
		file.ErrorMsg = fmt.Sprintf("invalid url: %v", err)
		log.Debug("invalid url", "error", err)
		return file, nil
	}

	// Запрос заголовков
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		file.Status = http.StatusInternalServerError
		log.Error("create request failed", "error", err)
		return file, fmt.Errorf("create request failed: %w", err)
	}

	resp, err := ldr.client.Do(req)
	if err != nil {
		file.Status = http.StatusBadGateway
		log.Debug("request failed", "error", err)
		return file, nil
	}
	resp.Body.Close()

	// Проверка статуса
	file.Status = resp.StatusCode
	if file.Status != http.StatusOK {
		log.Debug("unexpected status", "status", file.Status)
		return file, nil
	}

	file.Size = getContentLength(resp)

	// Проверка Content-Type
	file.ContentType = getContentType(resp)
	if !ldr.allowedHeaderType(file.ContentType) {
		file.Status = http.StatusForbidden
		file.ErrorMsg = fmt.Sprintf("file type %q is not allowed", file.ContentType)
		log.Debug("blocked by content-type", "contentType", file.ContentType)
		return file, nil
	}

	log.Debug("success")
	return file, nil
}

// Download последовательно скачивает файлы в zip-архив и дописывает status.json.
// Записи архива называются по File.Name, повторы получают суффикс "-N".
// Ошибка возвращается при сбое записи архива или если не удалось скачать ни одного файла.
func (ldr *Loader) Download(ctx context.Context, files []File, out io.Writer) ([]File, error) {
	zipWriter := zip.NewWriter(out)
	defer zipWriter.Close()

	names := newUniqueNames(statusFileName)

	var failed int

	result := make([]File, 0, len(files))
	for _, file := range files {
		file, err := ldr.downloadFile(ctx, zipWriter, names, file)
		result = append(result, file)

		if err != nil {
			return result, err
		}

		if file.Status != http.StatusOK {
			failed++
		}
	}

	if err := ldr.writeStatus(zipWriter, result); err != nil {
		return result, err
	}

	if failed == len(result) {
		return result, ErrAllFailed
	}

	return result, nil
}

func (ldr *Loader) writeStatus(zw *zip.Writer, files []File) error {
	fw, err := zw.Create(statusFileName)
	if err != nil {
		return fmt.Errorf("create zip entry failed: %w", err)
	}
	cdr := json.NewEncoder(fw)
	cdr.SetIndent("", "    ")
	return cdr.Encode(files)
}

func (ldr *Loader) downloadFile(ctx context.Context, zipWriter *zip.Writer, names *uniqueNames, file File) (File, error) {
	log := logger.FromContext(ctx).With("op", "downloadFile", "url", file.URL)

	file = resetFile(file)
	defer func() {
		if file.Status != http.StatusOK && file.ErrorMsg == "" {
			file.ErrorMsg = http.StatusText(file.Status)
		}
	}()

	// Валидация URL
	u, err := url.ParseRequestURI(file.URL)
	if err != nil {
		file.Status = http.StatusBadRequest
		file.ErrorMsg = fmt.Sprintf("invalid url: %v", err)
		log.Debug("invalid url", "error", err)
		return file, nil
	}

	// Запрос файла
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		file.Status = http.StatusInternalServerError
		log.Error("create request failed", "error", err)
		return file, fmt.Errorf("create request failed: %w", err)
	}

	resp, err := ldr.client.Do(req)
	if err != nil {
		file.Status = http.StatusBadGateway
		log.Debug("request failed", "error", err)
		return file, nil
	}
	defer resp.Body.Close()

	// Проверка статуса
	file.Status = resp.StatusCode
	if file.Status != http.StatusOK {
		log.Debug("unexpected status", "status", file.Status)
		return file, nil
	}

	// Проверка Content-Type
	file.ContentType = getContentType(resp)
	if !ldr.allowedHeaderType(file.ContentType) {
		file.Status = http.StatusForbidden
		file.ErrorMsg = fmt.Sprintf("file type %q is not allowed", file.ContentType)
		log.Debug("blocked by content-type", "contentType", file.ContentType)
		return file, nil
	}

	buf := make([]byte, bufSize)
	var readErr error

	// Чтение первого чанка (нужен для проверки сигнатуры)
	for file.Size < magicLen && readErr == nil {
		var n int
		n, readErr = resp.Body.Read(buf[file.Size:])
		file.Size += int64(n)
	}
	if readErr != nil && readErr != io.EOF {
		file.Status = http.StatusBadGateway
		log.Debug("first chunk read failed", "error", readErr)
		return file, nil
	}

	// Проверка сигнатуры
	fileType, err := getFileTypeBySignature(buf[:file.Size])
	if err != nil {
		file.Status = http.StatusForbidden
		file.ErrorMsg = err.Error()
		log.Debug("can't check real file type", "error", err)
		return file, nil
	}

	file.RealType = fileType.MIMEType
	if !ldr.valid[file.RealType] {
		file.Status = http.StatusForbidden
		file.ErrorMsg = fmt.Sprintf("file type %q is not allowed", file.RealType)
		log.Debug("blocked by real file type", "realType", file.RealType)
		return file, nil
	}

	// Создание файла в архиве
	if file.Name == "" {
		file.Name = defaultFileName + fileType.Extension()
	}
	file.Name = names.next(file.Name)
	fileWriter, err := zipWriter.Create(file.Name)
	if err != nil {
		file.Status = http.StatusInternalServerError
		log.Error("create zip entry failed", "error", err)
		return file, fmt.Errorf("create zip entry failed: %w", err)
	}

	// Запись первого чанка
	if file.Size > 0 {
		if _, err := fileWriter.Write(buf[:file.Size]); err != nil {
			file.Status = http.StatusInternalServerError
			log.Error("write failed", "error", err)
			return file, fmt.Errorf("write failed: %w", err)
		}
	}

	// Копирование оставшихся данных
	for readErr == nil {
		var n int
		n, readErr = resp.Body.Read(buf)
		if n == 0 {
			continue
		}
		file.Size += int64(n)

		if _, err := fileWriter.Write(buf[:n]); err != nil {
			file.Status = http.StatusInternalServerError
			log.Error("write failed", "error", err)
			return file, fmt.Errorf("write failed: %w", err)
		}
	}

	if readErr != io.EOF {
		file.Status = http.StatusBadGateway
		log.Debug("read failed", "error", readErr)
		return file, nil
	}

	log.Debug("success", "name", file.Name, "size", file.Size)
	return file, nil
}

// allowedHeaderType: обобщенный Content-Type пропускается, тип проверит сигнатура.
func (ldr *Loader) allowedHeaderType(contentType string) bool {
	return ldr.valid[contentType] || genericContentType(contentType)
}

// resetFile сбрасывает результат предыдущей проверки, сохраняя URL, имя и медиа.
func resetFile(f File) File {
	return File{URL: f.URL, Name: f.Name, Media: f.Media}
}
