package adf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderInline_Text(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []*Node
		expected string
	}{
		{"plain", []*Node{text("hello world")}, "hello world"},
		{"missing text", []*Node{{Type: TypeText}}, ""},
		{"strong", []*Node{text("x", mark(MarkStrong))}, "**x**"},
		{"em", []*Node{text("x", mark(MarkEm))}, "*x*"},
		{"code", []*Node{text("x", mark(MarkCode))}, "`x`"},
		{"strike", []*Node{text("x", mark(MarkStrike))}, "~~x~~"},
		{"strikethrough", []*Node{text("x", mark(MarkStrikethrough))}, "~~x~~"},
		{"link", []*Node{text("docs", link("https://example.com"))}, "[docs](https://example.com)"},
		{"link without href", []*Node{text("docs", mark(MarkLink))}, "[docs]()"},
		{"underline passes through", []*Node{text("x", mark(MarkUnderline))}, "x"},
		{"unknown mark ignored", []*Node{text("x", mark("textColor"))}, "x"},
		{"nil mark ignored", []*Node{text("x", nil)}, "x"},
		{"link then strong", []*Node{text("a", link("u"), mark(MarkStrong))}, "**[a](u)**"},
		{"strong then link", []*Node{text("a", mark(MarkStrong), link("u"))}, "[**a**](u)"},
		{"concatenation", []*Node{text("a "), text("b", mark(MarkCode)), text(" c")}, "a `b` c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderInline(tt.nodes))
		})
	}
}

func TestRenderInline_MarkOrder(t *testing.T) {
	r := NewRenderer(WithStoredFlavor())

	assert.Equal(t, "**_x_**", r.RenderInline([]*Node{text("x", mark(MarkEm), mark(MarkStrong))}))
	assert.Equal(t, "_**x**_", r.RenderInline([]*Node{text("x", mark(MarkStrong), mark(MarkEm))}))
	assert.Equal(t, "~~`x`~~", r.RenderInline([]*Node{text("x", mark(MarkCode), mark(MarkStrike))}))
}

func TestRenderInline_Leaves(t *testing.T) {
	tests := []struct {
		name     string
		node     *Node
		expected string
	}{
		{"hard break", node(TypeHardBreak, nil), "\n"},
		{"lowercase hard break", node("hardbreak", nil), "\n"},
		{"soft break", node(TypeSoftBreak, nil), " "},
		{"mention id", node(TypeMention, map[string]interface{}{"id": "abc123", "text": "@Ann"}), "@abc123"},
		{"mention text fallback", node(TypeMention, map[string]interface{}{"text": "Ann"}), "@Ann"},
		{"mention empty", node(TypeMention, nil), "@"},
		{"emoji", node(TypeEmoji, map[string]interface{}{"shortName": ":smile:"}), ":smile:"},
		{"emoji missing", node(TypeEmoji, nil), ""},
		{"image", node(TypeImage, map[string]interface{}{"src": "a.png"}), "![image](a.png)"},
		{"image missing src", node(TypeImage, nil), "![image]()"},
		{"non-string attr", node(TypeEmoji, map[string]interface{}{"shortName": 7}), ""},
		{"unknown container", node("inlineGroup", nil, text("a"), text("b")), "ab"},
		{"unknown leaf", node("inlineCard", map[string]interface{}{"url": "x"}), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderInline([]*Node{tt.node}))
		})
	}
}

func TestRenderInline_DoesNotMutate(t *testing.T) {
	n := text("x", mark(MarkStrong), mark(MarkEm))
	RenderInline([]*Node{n})
	RenderInline([]*Node{n})

	assert.Equal(t, "x", n.Text)
	assert.Len(t, n.Marks, 2)
}

func TestWithEmphasis(t *testing.T) {
	r := NewRenderer(WithEmphasis("__"))
	assert.Equal(t, "__x__", r.RenderInline([]*Node{text("x", mark(MarkEm))}))
}
