package story

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/athapong/story-mcp/pkg/adf"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

var (
	headlinePattern = regexp.MustCompile(`^#+[ \t]+\S`)
	payloadTags     = mapset.NewSet("json", "mdc", "")
)

// Source tells where the body of an extraction came from.
type Source string

const (
	// SourceRendered means an embedded document was parsed and rendered.
	SourceRendered Source = "rendered"
	// SourceFallback means a payload was found but could not be parsed.
	SourceFallback Source = "fallback"
	// SourcePassthrough means no payload was found and the body is already Markdown.
	SourcePassthrough Source = "passthrough"
)

// Result is the outcome of extracting a story file.
type Result struct {
	Headline     string
	Metadata     Metadata
	Document     *adf.Document
	Markdown     string
	FallbackText string
	Strategy     string
	Warnings     []string
}

// Source reports how the body was produced.
func (r *Result) Source() Source {
	switch {
	case r.Document != nil:
		return SourceRendered
	case len(r.Warnings) > 0:
		return SourceFallback
	default:
		return SourcePassthrough
	}
}

// Body returns the rendered document, or the fallback text when there is none.
func (r *Result) Body() string {
	if r.Document != nil {
		return r.Markdown
	}
	return r.FallbackText
}

// Locator finds a document payload inside a file. Locate returns false when
// the strategy does not apply.
type Locator struct {
	Name   string
	Locate func(content string) (string, bool)
}

// DefaultLocators are tried in order; the first match wins.
var DefaultLocators = []Locator{
	{Name: "fenced", Locate: LocateFenced},
	{Name: "trailing", Locate: LocateTrailingObject},
	{Name: "legacy", Locate: LocateLegacy},
}

// LocateFenced returns the contents of a fenced block tagged json, mdc or left
// untagged when that fence is the first thing after the headline and metadata
// block. A fence further down is part of the story text, not a payload.
func LocateFenced(content string) (string, bool) {
	lines := strings.Split(content, "\n")
	header := headerLines(lines)

	start := 0
	for start < len(lines) && (header[start] || isBlankLine(lines[start])) {
		start++
	}
	if start == len(lines) || !strings.HasPrefix(lines[start], "```") {
		return "", false
	}
	if tag := strings.TrimSpace(strings.TrimPrefix(lines[start], "```")); !payloadTags.Contains(tag) {
		return "", false
	}

	for end := start + 1; end < len(lines); end++ {
		if strings.TrimSpace(lines[end]) == "```" {
			return strings.TrimSpace(strings.Join(lines[start+1:end], "\n")), true
		}
	}
	return "", false
}

// LocateTrailingObject returns a top-level object running from the start of a
// line to the end of the file. When several lines open such an object the
// earliest one holding valid JSON is chosen; if none is valid the earliest is
// returned so the parse failure can be reported.
func LocateTrailingObject(content string) (string, bool) {
	trimmed := strings.TrimRightFunc(content, isSpace)
	if !strings.HasSuffix(trimmed, "}") {
		return "", false
	}

	var candidates []string
	for i := 0; i < len(trimmed)-1; i++ {
		if trimmed[i] == '\n' && trimmed[i+1] == '{' {
			candidates = append(candidates, trimmed[i+1:])
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	for _, candidate := range candidates {
		if gjson.Valid(candidate) {
			return candidate, true
		}
	}
	return candidates[0], true
}

// LocateLegacy treats the whole file as the payload when it is a bare object.
func LocateLegacy(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") {
		return "", false
	}
	return trimmed, true
}

// Extractor splits a stored story file into headline, metadata and body.
type Extractor struct {
	renderer *adf.Renderer
	locators []Locator
	logger   *logrus.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithLogger sets the logger used for payload warnings.
func WithLogger(logger *logrus.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithLocators replaces the payload search chain.
func WithLocators(locators ...Locator) ExtractorOption {
	return func(e *Extractor) {
		e.locators = locators
	}
}

// WithRenderer replaces the document renderer.
func WithRenderer(renderer *adf.Renderer) ExtractorOption {
	return func(e *Extractor) {
		e.renderer = renderer
	}
}

// NewExtractor creates an extractor that renders with the stored-file flavor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	e := &Extractor{
		renderer: adf.NewRenderer(adf.WithStoredFlavor()),
		locators: DefaultLocators,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract never fails: a payload that cannot be parsed is reported as a
// warning and the stripped body is returned as fallback text.
func (e *Extractor) Extract(content string) *Result {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	result := &Result{Metadata: Metadata{}}

	if i := headlineIndex(lines); i >= 0 {
		result.Headline = strings.TrimRightFunc(lines[i], isSpace)
	}
	if start, end, ok := metadataBounds(lines); ok {
		result.Metadata = ParseMetadata(strings.Join(lines[start+1:end], "\n"))
	}

	skip := headerLines(lines)
	var kept []string
	for i, line := range lines {
		if skip[i] {
			continue
		}
		kept = append(kept, line)
	}
	body := strings.TrimSpace(strings.Join(kept, "\n"))

	payload, strategy, found := e.locate(content)
	if !found || !strings.HasPrefix(payload, "{") {
		result.FallbackText = body
		return result
	}

	doc, err := adf.Parse([]byte(payload))
	if err != nil {
		result.Strategy = strategy
		e.logger.WithError(err).WithField("strategy", strategy).Warn("Failed to parse document payload, using raw content as fallback")
		result.Warnings = append(result.Warnings, fmt.Sprintf("failed to parse document payload: %v", err))
		result.FallbackText = body
		return result
	}

	// Any other JSON object is sample data in an already-Markdown body.
	if !gjson.Get(payload, "content").IsArray() {
		result.FallbackText = body
		return result
	}
	result.Strategy = strategy

	result.Document = doc
	result.Markdown = e.renderer.Render(doc)
	return result
}

func (e *Extractor) locate(content string) (string, string, bool) {
	for _, locator := range e.locators {
		if payload, ok := locator.Locate(content); ok {
			return payload, locator.Name, true
		}
	}
	return "", "", false
}

func headlineIndex(lines []string) int {
	for i, line := range lines {
		if headlinePattern.MatchString(line) {
			return i
		}
	}
	return -1
}

// headerLines marks the headline and every line of the metadata block,
// delimiters included.
func headerLines(lines []string) map[int]bool {
	header := make(map[int]bool)
	if i := headlineIndex(lines); i >= 0 {
		header[i] = true
	}
	if start, end, ok := metadataBounds(lines); ok {
		for i := start; i <= end; i++ {
			header[i] = true
		}
	}
	return header
}

// metadataBounds returns the indexes of the first two lines that are exactly "---".
func metadataBounds(lines []string) (int, int, bool) {
	start := -1
	for i, line := range lines {
		if line != "---" {
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		return start, i, true
	}
	return 0, 0, false
}

func isBlankLine(line string) bool {
	return strings.TrimFunc(line, isSpace) == ""
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
