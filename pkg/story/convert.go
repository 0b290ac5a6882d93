package story

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sirupsen/logrus"
)

// ConvertOptions controls ConvertFile.
type ConvertOptions struct {
	// Output is the destination path. Empty means convert in place.
	Output string
	// DryRun computes the result and a diff without writing anything.
	DryRun bool
	// SkipPassthrough leaves files that carry no document payload untouched.
	SkipPassthrough bool
}

// Conversion describes one converted file.
type Conversion struct {
	Input    string
	Output   string
	Source   Source
	Content  string
	Diff     string
	Warnings []string
	Written  bool
}

// Converter rewrites stored story files whose body is an embedded document
// into plain Markdown.
type Converter struct {
	extractor *Extractor
	logger    *logrus.Logger
}

// NewConverter creates a converter. A nil extractor or logger gets a default.
func NewConverter(extractor *Extractor, logger *logrus.Logger) *Converter {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if extractor == nil {
		extractor = NewExtractor(WithLogger(logger))
	}
	return &Converter{extractor: extractor, logger: logger}
}

// Convert converts file content held in memory.
func (c *Converter) Convert(content string) (string, *Result) {
	result := c.extractor.Extract(content)
	conversionsTotal.WithLabelValues(string(result.Source())).Inc()
	return Compose(result), result
}

// ConvertFile reads path, converts it and writes the result to opts.Output,
// or back to path when no output is given.
func (c *Converter) ConvertFile(path string, opts ConvertOptions) (*Conversion, error) {
	timer := prometheus.NewTimer(conversionDuration.WithLabelValues("file"))
	defer timer.ObserveDuration()

	raw, err := os.ReadFile(path)
	if err != nil {
		conversionErrors.WithLabelValues("read").Inc()
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	output := opts.Output
	if output == "" {
		output = path
	}

	content, result := c.Convert(string(raw))
	conv := &Conversion{
		Input:    path,
		Output:   output,
		Source:   result.Source(),
		Content:  content,
		Warnings: result.Warnings,
	}

	if output == path && (content == string(raw) || (opts.SkipPassthrough && conv.Source == SourcePassthrough)) {
		conv.Content = string(raw)
		c.logger.WithFields(logrus.Fields{
			"input":  path,
			"source": conv.Source,
		}).Debug("Story file left unchanged")
		return conv, nil
	}

	if opts.DryRun {
		conv.Diff = LineDiff(string(raw), content)
		return conv, nil
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		conversionErrors.WithLabelValues("write").Inc()
		return nil, errors.Wrapf(err, "failed to create directory for %s", output)
	}
	if err := os.WriteFile(output, []byte(content), 0644); err != nil {
		conversionErrors.WithLabelValues("write").Inc()
		return nil, errors.Wrapf(err, "failed to write %s", output)
	}
	conv.Written = true

	c.logger.WithFields(logrus.Fields{
		"input":  path,
		"output": output,
		"source": conv.Source,
	}).Info("Converted story file")

	return conv, nil
}

// LineDiff returns a line-oriented diff of before and after, with "-", "+"
// and " " prefixes. It is empty when nothing changed.
func LineDiff(before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix + strings.TrimSuffix(line, "\n") + "\n")
		}
	}
	return out.String()
}
