package imagehost

import (
	"context"
	"errors"
	"fmt"
)

// MockUploader records uploads and destroys for tests.
type MockUploader struct {
	Uploaded   [][]byte
	Destroyed  []string
	ShouldFail bool
}

func (m *MockUploader) Upload(ctx context.Context, data []byte) (string, error) {
	if m.ShouldFail {
		return "", fmt.Errorf("%w: mock failure", ErrUpload)
	}
	m.Uploaded = append(m.Uploaded, data)
	return fmt.Sprintf("https://images.example.com/asset-%d.jpg", len(m.Uploaded)), nil
}

func (m *MockUploader) Destroy(ctx context.Context, publicID string) error {
	if m.ShouldFail {
		return errors.New("mock destroy failed")
	}
	m.Destroyed = append(m.Destroyed, publicID)
	return nil
}
