// Package statistics tracks counters for one minification run.
package statistics

import (
	"fmt"
	"sync"
	"time"
)

// Statistics contains all counters for a batch minification run. Sizes
// come from os.Stat on source and target; image content is never read.
type Statistics struct {
	FilesFound     int64
	FilesProcessed int64
	FilesSucceeded int64
	FilesFailed    int64
	FilesSkipped   int64

	BytesOriginal   int64
	BytesCompressed int64

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Errors []RunError

	mutex sync.RWMutex
}

// RunError records one per-file failure for external reporting.
type RunError struct {
	FilePath  string
	Operation string
	Message   string
	Timestamp time.Time
}

// New returns a Statistics instance with the start time set.
func New() *Statistics {
	return &Statistics{
		StartTime: time.Now(),
		Errors:    make([]RunError, 0),
	}
}

// RecordSuccess counts a successfully minified file and its byte sizes.
// compressed may be zero when the target could not be stat'ed.
func (s *Statistics) RecordSuccess(original, compressed int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.FilesProcessed++
	s.FilesSucceeded++
	s.BytesOriginal += original
	s.BytesCompressed += compressed
}

// RecordFailure counts a failed file and keeps its error for the report.
func (s *Statistics) RecordFailure(path, operation, message string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.FilesProcessed++
	s.FilesFailed++
	s.Errors = append(s.Errors, RunError{
		FilePath:  path,
		Operation: operation,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// RecordSkip counts a file that matched discovery but had no compressor.
func (s *Statistics) RecordSkip() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.FilesSkipped++
}

// Finish stamps the end time and computes the duration.
func (s *Statistics) Finish() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// PercentSaved returns the byte savings across all succeeded files.
func (s *Statistics) PercentSaved() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.percentSavedLocked()
}

// Summary returns a one-line human-readable report.
func (s *Statistics) Summary() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return fmt.Sprintf("%d/%d files minified, %d failed, %d skipped, %.1f%% saved in %s",
		s.FilesSucceeded, s.FilesFound, s.FilesFailed, s.FilesSkipped,
		s.percentSavedLocked(), s.Duration.Round(time.Millisecond))
}

func (s *Statistics) percentSavedLocked() float64 {
	if s.BytesOriginal == 0 {
		return 0
	}
	return float64(s.BytesOriginal-s.BytesCompressed) / float64(s.BytesOriginal) * 100
}
