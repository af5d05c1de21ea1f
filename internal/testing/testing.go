// package testing contains shared testing utilities and pipeline doubles
package testing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sogik/TuneHarvester/internal/models"
	"github.com/sogik/TuneHarvester/internal/services"
)

// MockPrimary is a test double for tasks.PrimarySource. Metadata is keyed
// by descriptor ID, falling back to Query.
type MockPrimary struct {
	Records map[string]*models.TrackMetadata
	Err     error
	Calls   int
}

func (m *MockPrimary) FetchPrimary(ctx context.Context, d models.QueryDescriptor) (*models.TrackMetadata, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if record, ok := m.Records[d.ID]; ok {
		return record, nil
	}
	return m.Records[d.Query], nil
}

// MockSecondary is a test double for tasks.SecondarySource.
type MockSecondary struct {
	Record *models.TrackMetadata
	Err    error
	Calls  int
}

func (m *MockSecondary) Enrich(ctx context.Context, primary *models.TrackMetadata, d models.QueryDescriptor) (*models.TrackMetadata, error) {
	m.Calls++
	return m.Record, m.Err
}

// MockStreams is a test double for tasks.StreamProvider. Download writes a
// placeholder file so path discovery behaves like the real provider.
type MockStreams struct {
	Video       *services.Video
	FindErr     error
	DownloadErr error
	Searches    []string
	Downloads   []string
}

func (m *MockStreams) FindStream(ctx context.Context, query string) (*services.Video, error) {
	m.Searches = append(m.Searches, query)
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	if m.Video != nil {
		return m.Video, nil
	}
	return &services.Video{ID: "mock", Title: query}, nil
}

func (m *MockStreams) Download(ctx context.Context, videoURL, destDir, baseName string) (string, error) {
	m.Downloads = append(m.Downloads, videoURL)
	if m.DownloadErr != nil {
		return "", m.DownloadErr
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(destDir, baseName+".m4a")
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// MockCache is an in-memory test double for tasks.StreamCacher.
type MockCache struct {
	mu      sync.Mutex
	entries map[string]*services.Video
	Hits    int
	Misses  int
	GetErr  error
	PutErr  error
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[string]*services.Video)}
}

func (m *MockCache) Get(key string) (*services.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if video, ok := m.entries[key]; ok {
		m.Hits++
		return video, nil
	}
	m.Misses++
	return nil, nil
}

func (m *MockCache) Put(key string, video *services.Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.entries[key] = video
	return nil
}

// MockTagger records tagging calls for tasks.MetadataTagger.
type MockTagger struct {
	mu    sync.Mutex
	Err   error
	Paths []string
	Metas []models.TrackMetadata
}

func (m *MockTagger) Tag(ctx context.Context, path string, meta models.TrackMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Paths = append(m.Paths, path)
	m.Metas = append(m.Metas, meta)
	return m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
