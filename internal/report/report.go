// Package report forwards unexpected errors to an external error tracker.
package report

import (
	"fmt"
	"sync"

	"github.com/getsentry/raven-go"
	log "github.com/sirupsen/logrus"
)

// Reporter records an unexpected error with searchable tags.
type Reporter interface {
	Report(err error, tags map[string]string)
	Close()
}

// Nop discards every report.
type Nop struct{}

// Report does nothing.
func (Nop) Report(error, map[string]string) {}

// Close does nothing.
func (Nop) Close() {}

// Sentry sends reports to a Sentry DSN.
type Sentry struct {
	client *raven.Client
}

// New returns a Sentry reporter for dsn, or Nop when dsn is empty.
func New(dsn string) (Reporter, error) {
	if dsn == "" {
		return Nop{}, nil
	}

	client, err := raven.New(dsn)
	if err != nil {
		return nil, fmt.Errorf("init sentry client: %w", err)
	}
	log.Info("Error reporting enabled")
	return &Sentry{client: client}, nil
}

// Report captures err without waiting for delivery.
func (s *Sentry) Report(err error, tags map[string]string) {
	if id := s.client.CaptureError(err, tags); id != "" {
		log.Debugf("Reported error as event %s", id)
	}
}

// Close waits for queued events and releases the client.
func (s *Sentry) Close() {
	s.client.Wait()
	s.client.Close()
}

// Recorder keeps reports in memory. Tests use it to assert what was reported.
type Recorder struct {
	mu     sync.Mutex
	errors []error
	tags   []map[string]string
}

// Report appends err and tags.
func (r *Recorder) Report(err error, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
	r.tags = append(r.tags, tags)
}

// Reports returns copies of everything reported so far.
func (r *Recorder) Reports() ([]error, []map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errors...), append([]map[string]string(nil), r.tags...)
}

// Close does nothing.
func (r *Recorder) Close() {}
