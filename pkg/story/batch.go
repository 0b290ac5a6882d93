package story

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// BatchConverter converts many story files concurrently, a batch at a time.
type BatchConverter struct {
	converter *Converter
	logger    *logrus.Logger
	batchSize int
}

// NewBatchConverter creates a batch converter with a batch size of 10.
func NewBatchConverter(converter *Converter, logger *logrus.Logger) *BatchConverter {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &BatchConverter{
		converter: converter,
		logger:    logger,
		batchSize: 10,
	}
}

// SetBatchSize changes how many files are converted at once.
func (b *BatchConverter) SetBatchSize(n int) {
	if n > 0 {
		b.batchSize = n
	}
}

// ConvertDir converts every .md file under dir in place. Files without a
// document payload are not rewritten.
func (b *BatchConverter) ConvertDir(ctx context.Context, dir string, dryRun bool) ([]*Conversion, error) {
	files, err := MarkdownFiles(dir)
	if err != nil {
		return nil, err
	}
	return b.ConvertFiles(ctx, files, dryRun)
}

// ConvertFiles converts paths in place. Results keep the order of paths. The
// first error of a batch stops processing after that batch.
func (b *BatchConverter) ConvertFiles(ctx context.Context, paths []string, dryRun bool) ([]*Conversion, error) {
	runID := uuid.New().String()
	logger := b.logger.WithFields(logrus.Fields{"run_id": runID, "file_count": len(paths)})
	logger.Info("Starting batch conversion")

	results := make([]*Conversion, len(paths))

	for i := 0; i < len(paths); i += b.batchSize {
		if err := ctx.Err(); err != nil {
			return results, errors.Wrap(err, "batch conversion cancelled")
		}

		end := i + b.batchSize
		if end > len(paths) {
			end = len(paths)
		}

		errs := make(chan error, end-i)
		var wg sync.WaitGroup

		for j := i; j < end; j++ {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()

				timer := prometheus.NewTimer(conversionDuration.WithLabelValues("batch"))
				conv, err := b.converter.ConvertFile(paths[j], ConvertOptions{DryRun: dryRun, SkipPassthrough: true})
				timer.ObserveDuration()

				if err != nil {
					logger.WithError(err).WithField("path", paths[j]).Error("Failed to convert story file")
					errs <- err
					return
				}
				results[j] = conv
			}(j)
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				return results, errors.Wrap(err, "batch conversion failed")
			}
		}
	}

	logger.Info("Batch conversion completed")
	return results, nil
}

// MarkdownFiles lists the .md files under dir, sorted.
func MarkdownFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(path), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", dir)
	}
	sort.Strings(files)
	return files, nil
}
