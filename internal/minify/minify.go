// Package minify drives a batch minification run: one compressor
// invocation per discovered file, strictly sequential, with a per-file
// success/failure ledger.
package minify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"imgminify/internal/command"
	"imgminify/internal/executor"
	"imgminify/internal/pathmap"
	"imgminify/internal/registry"
	"imgminify/internal/statistics"
)

var (
	// ErrInvalidMinifier means the configured minifier override is
	// neither a registered compressor nor a custom strategy.
	ErrInvalidMinifier = errors.New("invalid minifier")

	// ErrDirectoryCreateFailed means a target parent directory could not
	// be created.
	ErrDirectoryCreateFailed = errors.New("cannot create target directory")
)

// Job is one source-file-to-target-path unit of work.
type Job struct {
	SourcePath string
	TargetPath string
}

// BatchResult is the per-run ledger. Paths appear in processing order.
type BatchResult struct {
	Succeeded   []string
	Failed      []string
	Skipped     []string
	Destination string
}

// Success reports whether every processed file minified cleanly.
func (r *BatchResult) Success() bool {
	return len(r.Failed) == 0
}

// Total returns the number of files that were actually processed.
func (r *BatchResult) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// Resolver is the slice of the executable resolver the orchestrator
// needs; the resolver package provides the production implementation.
type Resolver interface {
	Resolve(name string) (string, error)
}

// Orchestrator runs one batch. It owns no global state; every run gets
// a fresh ledger and the resolver carries the per-run download cache.
type Orchestrator struct {
	builder  *command.Builder
	resolver Resolver
	exec     executor.Executor
	log      *logrus.Logger
	stats    *statistics.Statistics

	// minifier is the run-wide override; empty selects by extension.
	minifier string
	options  command.Options
}

// NewOrchestrator returns an Orchestrator wired to its collaborators.
func NewOrchestrator(
	builder *command.Builder,
	res Resolver,
	exe executor.Executor,
	log *logrus.Logger,
	stats *statistics.Statistics,
) *Orchestrator {
	return &Orchestrator{
		builder:  builder,
		resolver: res,
		exec:     exe,
		log:      log,
		stats:    stats,
	}
}

// SetMinifier installs a run-wide compressor override with its options.
func (o *Orchestrator) SetMinifier(name string, opts command.Options) {
	o.minifier = name
	o.options = opts
}

// BuildJobs maps discovered source files onto target paths.
func BuildJobs(files []string, targetDir, basePath string) ([]Job, error) {
	jobs := make([]Job, 0, len(files))
	for _, src := range files {
		dst, err := pathmap.Target(src, targetDir, basePath)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, Job{SourcePath: src, TargetPath: dst})
	}
	return jobs, nil
}

// Run processes jobs in order and returns the ledger. Configuration
// errors abort before any file is touched; per-file compressor failures
// are recorded and the run continues. A resolution failure aborts on
// the first file that actually needs the missing compressor.
func (o *Orchestrator) Run(ctx context.Context, jobs []Job, destination string) (*BatchResult, error) {
	if err := o.validateMinifier(); err != nil {
		return nil, err
	}

	result := &BatchResult{Destination: destination}
	o.stats.FilesFound = int64(len(jobs))

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		name := o.identifierFor(job)
		if name == "" {
			o.log.WithField("file", job.SourcePath).Warn("no compressor for extension, skipping")
			result.Skipped = append(result.Skipped, job.SourcePath)
			o.stats.RecordSkip()
			continue
		}

		o.log.WithFields(logrus.Fields{
			"file":       job.SourcePath,
			"compressor": name,
			"progress":   fmt.Sprintf("%d/%d", i+1, len(jobs)),
		}).Info("minifying")

		if err := o.processFile(ctx, job, name, result); err != nil {
			return result, err
		}
	}

	o.stats.Finish()
	return result, nil
}

// validateMinifier rejects an unknown override before the loop starts.
// A custom strategy bypasses the registry entirely.
func (o *Orchestrator) validateMinifier() error {
	if o.minifier == "" || o.builder.Custom != nil {
		return nil
	}
	if !registry.Known(o.minifier) {
		return fmt.Errorf("%w: %s", ErrInvalidMinifier, o.minifier)
	}
	return nil
}

// identifierFor picks the effective compressor for a job.
func (o *Orchestrator) identifierFor(job Job) string {
	if o.builder.Custom != nil {
		return "custom"
	}
	if o.minifier != "" {
		return o.minifier
	}
	return registry.DefaultFor(filepath.Ext(job.SourcePath))
}

// processFile runs one job end to end. The returned error is non-nil
// only for run-level failures; a nonzero compressor exit lands in the
// failed set instead.
func (o *Orchestrator) processFile(ctx context.Context, job Job, name string, result *BatchResult) error {
	if err := os.MkdirAll(filepath.Dir(job.TargetPath), 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDirectoryCreateFailed, filepath.Dir(job.TargetPath), err)
	}

	if err := o.prepareTarget(job, name); err != nil {
		o.recordFailure(result, job, "prepare", err.Error())
		return nil
	}

	argv, err := o.builder.Build(name, job.SourcePath, job.TargetPath, o.options)
	if err != nil {
		return err
	}

	argv, err = o.resolveExecutable(argv, name)
	if err != nil {
		return err
	}

	originalSize := fileSize(job.SourcePath)

	res := o.exec.Run(ctx, argv)
	if !res.Ok() {
		msg := strings.TrimSpace(res.Stderr)
		if res.Err != nil {
			msg = res.Err.Error()
		}
		o.log.WithFields(logrus.Fields{
			"file":     job.SourcePath,
			"exitCode": res.ExitCode,
			"stderr":   msg,
		}).Error("compressor failed")
		o.recordFailure(result, job, name, msg)
		return nil
	}

	result.Succeeded = append(result.Succeeded, job.SourcePath)
	o.stats.RecordSuccess(originalSize, fileSize(job.TargetPath))
	return nil
}

// prepareTarget applies the per-compressor quirks: optipng refuses to
// overwrite an existing output file, and in-place tools operate on a
// copy of the source placed at the target path.
func (o *Orchestrator) prepareTarget(job Job, name string) error {
	spec, err := registry.Lookup(name)
	if err != nil {
		// Custom strategies have no registry quirks.
		return nil
	}

	if spec.PreDeleteTarget {
		if err := os.Remove(job.TargetPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale target: %w", err)
		}
	}

	if spec.InPlace {
		if err := copyFile(job.SourcePath, job.TargetPath); err != nil {
			return fmt.Errorf("copy for in-place compressor: %w", err)
		}
	}
	return nil
}

// resolveExecutable substitutes the resolved path into argv[0]. A
// vendored or custom argv[0] that already points at a file is left
// alone; resolution failure aborts the run since the compressor is
// needed from here on.
func (o *Orchestrator) resolveExecutable(argv []string, name string) ([]string, error) {
	if o.builder.Custom != nil || strings.ContainsRune(argv[0], os.PathSeparator) {
		return argv, nil
	}
	path, err := o.resolver.Resolve(name)
	if err != nil {
		return nil, err
	}
	argv[0] = path
	return argv, nil
}

func (o *Orchestrator) recordFailure(result *BatchResult, job Job, operation, message string) {
	result.Failed = append(result.Failed, job.SourcePath)
	o.stats.RecordFailure(job.SourcePath, operation, message)
}

// fileSize returns the size of path, or 0 when it cannot be stat'ed.
func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

// copyFile copies src to dst, truncating dst if it exists.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
