// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/kurbezz/discord-bot/internal/schedule"
)

// MockSource is a test double for [schedule.Source]
type MockSource struct {
	EventsFn func(ctx context.Context, sourceID string) ([]schedule.SourceEvent, error)
}

func (m *MockSource) Events(ctx context.Context, sourceID string) ([]schedule.SourceEvent, error) {
	if m.EventsFn != nil {
		return m.EventsFn(ctx, sourceID)
	}
	return []schedule.SourceEvent{}, nil
}

// MockMirror is a test double for [schedule.Mirror]
type MockMirror struct {
	OwnedEventsFn func(ctx context.Context, targetID string) ([]schedule.MirrorEvent, error)
	CreateFn      func(ctx context.Context, targetID string, req schedule.CreateRequest) (schedule.MirrorEvent, error)
	UpdateFn      func(ctx context.Context, targetID, eventID string, req schedule.UpdateRequest) (schedule.MirrorEvent, error)
	DeleteFn      func(ctx context.Context, targetID, eventID string) error
}

func (m *MockMirror) OwnedEvents(ctx context.Context, targetID string) ([]schedule.MirrorEvent, error) {
	if m.OwnedEventsFn != nil {
		return m.OwnedEventsFn(ctx, targetID)
	}
	return []schedule.MirrorEvent{}, nil
}

func (m *MockMirror) Create(ctx context.Context, targetID string, req schedule.CreateRequest) (schedule.MirrorEvent, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, targetID, req)
	}
	return schedule.MirrorEvent{}, nil
}

func (m *MockMirror) Update(ctx context.Context, targetID, eventID string, req schedule.UpdateRequest) (schedule.MirrorEvent, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, targetID, eventID, req)
	}
	return schedule.MirrorEvent{}, nil
}

func (m *MockMirror) Delete(ctx context.Context, targetID, eventID string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, targetID, eventID)
	}
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
