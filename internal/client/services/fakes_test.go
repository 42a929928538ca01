package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/client/api"
	"github.com/dmitrijs2005/skydrive/internal/logging"
	"github.com/dmitrijs2005/skydrive/internal/models"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// memStore is an in-memory localdata.Repository for service tests.
type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	value, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return value, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) List(_ context.Context, prefix string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string][]byte)
	for key, value := range m.data {
		if strings.HasPrefix(key, prefix) {
			result[key] = value
		}
	}
	return result, nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

// fakeAPI records calls and plays back canned responses.
type fakeAPI struct {
	calls []string

	intentResult *api.UploadIntentResult
	intentErr    error
	intents      []*api.UploadIntentRequest

	markErr error
	marked  []string

	listRecords []*models.FileRecord
	listErr     error

	downloadURLs map[string]string
	downloadErr  error

	objects   map[string][]byte
	objectErr error

	putErr error
	puts   map[string][]byte

	deleteErr error
	deleted   []string

	changesDelta *models.Delta
	changesErr   error
	changesSince []time.Time
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		downloadURLs: make(map[string]string),
		objects:      make(map[string][]byte),
		puts:         make(map[string][]byte),
	}
}

func (f *fakeAPI) UploadIntent(_ context.Context, req *api.UploadIntentRequest) (*api.UploadIntentResult, error) {
	f.calls = append(f.calls, "upload-intent")
	f.intents = append(f.intents, req)
	return f.intentResult, f.intentErr
}

func (f *fakeAPI) MarkUploaded(_ context.Context, _, fileID string) error {
	f.calls = append(f.calls, "mark-uploaded")
	f.marked = append(f.marked, fileID)
	return f.markErr
}

func (f *fakeAPI) ListFiles(context.Context) ([]*models.FileRecord, error) {
	f.calls = append(f.calls, "list")
	return f.listRecords, f.listErr
}

func (f *fakeAPI) DownloadURL(_ context.Context, fileID string) (string, error) {
	f.calls = append(f.calls, "download-url")
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	return f.downloadURLs[fileID], nil
}

func (f *fakeAPI) DeleteFile(_ context.Context, fileID string) error {
	f.calls = append(f.calls, "delete")
	f.deleted = append(f.deleted, fileID)
	return f.deleteErr
}

func (f *fakeAPI) Changes(_ context.Context, since time.Time) (*models.Delta, error) {
	f.calls = append(f.calls, "changes")
	f.changesSince = append(f.changesSince, since)
	return f.changesDelta, f.changesErr
}

func (f *fakeAPI) PutObject(_ context.Context, url, _ string, body io.Reader, _ int64) error {
	f.calls = append(f.calls, "put-object")
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.puts[url] = data
	return nil
}

func (f *fakeAPI) GetObject(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, "get-object")
	if f.objectErr != nil {
		return nil, f.objectErr
	}
	return f.objects[url], nil
}
