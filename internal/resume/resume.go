// Package resume uploads, downloads, and displays the user's stored resume.
package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/jonathan/jtrack/internal/api"
	"github.com/jonathan/jtrack/internal/gateway"
)

// ErrNoResume means the user has not uploaded a resume yet.
var ErrNoResume = errors.New("no resume uploaded yet")

const mimePDF = "application/pdf"

// Backend is the part of the API the manager calls.
type Backend interface {
	UploadResume(ctx context.Context, fileName string, content io.Reader) error
	DownloadResume(ctx context.Context) (*api.Resume, error)
}

// Manager handles the stored resume.
type Manager struct {
	backend Backend
	logger  *zap.Logger
	extract func(data []byte) (string, error)
}

// NewManager creates a Manager.
func NewManager(backend Backend, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{backend: backend, logger: logger, extract: ExtractText}
}

// Upload sends the PDF at path, replacing any stored resume.
func (m *Manager) Upload(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}
	if ct := http.DetectContentType(data); ct != mimePDF {
		return fmt.Errorf("%s is not a PDF (detected %s)", filepath.Base(path), ct)
	}
	if err := m.backend.UploadResume(ctx, filepath.Base(path), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to upload resume: %w", err)
	}
	m.logger.Info("resume uploaded", zap.String("file", filepath.Base(path)), zap.Int("bytes", len(data)))
	return nil
}

// Download fetches the stored resume. A backend 400 becomes ErrNoResume.
func (m *Manager) Download(ctx context.Context) (*api.Resume, error) {
	r, err := m.backend.DownloadResume(ctx)
	if err != nil {
		if gateway.StatusOf(err) == http.StatusBadRequest {
			return nil, ErrNoResume
		}
		return nil, fmt.Errorf("failed to download resume: %w", err)
	}
	if len(r.Data) == 0 {
		return nil, ErrNoResume
	}
	return r, nil
}

// Save downloads the resume into dir under its stored file name and returns the path.
func (m *Manager) Save(ctx context.Context, dir string) (string, error) {
	r, err := m.Download(ctx)
	if err != nil {
		return "", err
	}
	name := filepath.Base(r.FileName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "resume.pdf"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, r.Data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write resume: %w", err)
	}
	return path, nil
}

// View downloads the resume and returns its plain text.
func (m *Manager) View(ctx context.Context) (string, error) {
	r, err := m.Download(ctx)
	if err != nil {
		return "", err
	}
	text, err := m.extract(r.Data)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", r.FileName, err)
	}
	return text, nil
}

// ExtractText returns the plain text of a PDF, one line per text line.
func ExtractText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return tidy(buf.String()), nil
}

func tidy(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
