// Package artifact хранит скачиваемые файлы (PDF-отчёты), привязанные
// к сообщениям чата. Файл получают при создании сообщения и явно
// освобождают, когда сообщение вытесняется из журнала или сессия закрывается.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound - файл не существует или уже освобождён
var ErrNotFound = errors.New("artifact not found")

// Blob - содержимое файла
type Blob struct {
	Data     []byte
	MimeType string
	FileName string
}

// Store - хранилище файлов
type Store interface {
	Put(ctx context.Context, blob Blob) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*Blob, error)
	Release(ctx context.Context, id uuid.UUID) error
}

// ReportFileName - имя файла отчёта, производное от времени получения
func ReportFileName(at time.Time) string {
	return fmt.Sprintf("audit-report-%d.pdf", at.UnixMilli())
}

// DownloadURL - путь, по которому браузер скачивает файл
func DownloadURL(id uuid.UUID) string {
	return "/artifacts/" + id.String()
}

// ContentDisposition - значение заголовка для скачивания файла как вложения
func (b *Blob) ContentDisposition() string {
	name := strings.ReplaceAll(b.FileName, `"`, "")
	if name == "" {
		name = "artifact"
	}
	return fmt.Sprintf(`attachment; filename="%s"`, name)
}

// MemoryStore - хранилище в памяти процесса
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[uuid.UUID]Blob
}

// NewMemoryStore создаёт пустое хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[uuid.UUID]Blob)}
}

func (s *MemoryStore) Put(_ context.Context, blob Blob) (uuid.UUID, error) {
	id := uuid.New()
	data := make([]byte, len(blob.Data))
	copy(data, blob.Data)
	blob.Data = data

	s.mu.Lock()
	s.blobs[id] = blob
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Blob, error) {
	s.mu.RLock()
	blob, ok := s.blobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &blob, nil
}

// Release удаляет файл; повторное освобождение не считается ошибкой
func (s *MemoryStore) Release(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	delete(s.blobs, id)
	s.mu.Unlock()
	return nil
}

// Len - число хранимых файлов
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
