package adf

// Renderer turns ADF trees into Markdown. A Renderer holds no per-call state
// and may be shared between goroutines.
type Renderer struct {
	emphasis string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEmphasis sets the delimiter written around em-marked text.
func WithEmphasis(delim string) Option {
	return func(r *Renderer) {
		r.emphasis = delim
	}
}

// WithStoredFlavor matches the Markdown written for locally stored story
// files, which use underscores for emphasis.
func WithStoredFlavor() Option {
	return WithEmphasis("_")
}

// NewRenderer creates a renderer. The default flavor matches documents read
// from the Jira REST API.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{emphasis: "*"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = NewRenderer()

// Render renders doc with the default renderer.
func Render(doc *Document) string {
	return defaultRenderer.Render(doc)
}

// RenderInline renders inline nodes with the default renderer.
func RenderInline(nodes []*Node) string {
	return defaultRenderer.RenderInline(nodes)
}
