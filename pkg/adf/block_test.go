package adf

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

func TestRender_Nil(t *testing.T) {
	assert.Equal(t, "", Render(nil))
	assert.Equal(t, "", Render(doc()))
}

func TestRender_Paragraphs(t *testing.T) {
	got := Render(doc(para(text("first")), para(text("   ")), para(), para(text("second"))))
	assert.Equal(t, "first\nsecond", got)
}

func TestRender_Heading(t *testing.T) {
	tests := []struct {
		name     string
		attrs    map[string]interface{}
		expected string
	}{
		{"level 3", map[string]interface{}{"level": float64(3)}, "### Title"},
		{"default level", nil, "# Title"},
		{"clamped high", map[string]interface{}{"level": float64(9)}, "###### Title"},
		{"clamped low", map[string]interface{}{"level": float64(0)}, "# Title"},
		{"int level", map[string]interface{}{"level": 2}, "## Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(doc(node(TypeHeading, tt.attrs, text("Title")))))
		})
	}
}

func TestRender_BulletList(t *testing.T) {
	got := Render(doc(bullets(item(para(text("one"))), item(para(text("two"))))))

	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "- one", lines[0])
	assert.Equal(t, "- two", lines[1])
}

func TestRender_OrderedListStart(t *testing.T) {
	got := Render(doc(ordered(5,
		item(para(text("a"))),
		item(para(text("b"))),
		item(para(text("c"))),
	)))
	assert.Equal(t, "5. a\n6. b\n7. c", got)
}

func TestRender_OrderedListDefaultStart(t *testing.T) {
	list := node(TypeOrderedList, nil, item(para(text("a"))), item(para(text("b"))))
	assert.Equal(t, "1. a\n2. b", Render(doc(list)))
}

func TestRender_OrderedListStartBelowOne(t *testing.T) {
	for _, order := range []int{0, -3} {
		got := Render(doc(ordered(order, item(para(text("a"))), item(para(text("b"))))))
		assert.Equal(t, "1. a\n2. b", got, "order %d", order)
	}
}

func TestRender_NestedLists(t *testing.T) {
	got := Render(doc(bullets(
		item(
			para(text("parent")),
			bullets(
				item(para(text("child")), ordered(3, item(para(text("grandchild"))))),
			),
			para(text("more about parent")),
		),
		item(para(text("sibling"))),
	)))

	expected := strings.Join([]string{
		"- parent",
		"  - child",
		"    3. grandchild",
		"  more about parent",
		"- sibling",
	}, "\n")
	assert.Equal(t, expected, got)
}

func TestRender_ListEdgeCases(t *testing.T) {
	t.Run("empty item", func(t *testing.T) {
		assert.Equal(t, "- \n- b", Render(doc(bullets(item(), item(para(text("b")))))))
	})

	t.Run("item starting with nested list", func(t *testing.T) {
		got := Render(doc(bullets(item(bullets(item(para(text("inner"))))))))
		assert.Equal(t, "- \n  - inner", got)
	})

	t.Run("child that is not a list item", func(t *testing.T) {
		assert.Equal(t, "- loose", Render(doc(bullets(para(text("loose"))))))
	})

	t.Run("paragraph after list is separated", func(t *testing.T) {
		got := Render(doc(bullets(item(para(text("a")))), para(text("after"))))
		assert.Equal(t, "- a\n\nafter", got)
	})

	t.Run("code block inside item", func(t *testing.T) {
		code := node(TypeCodeBlock, nil, text("x := 1"))
		got := Render(doc(bullets(item(para(text("step")), code))))
		assert.Equal(t, "- step\n  ```\n  x := 1\n  ```", got)
	})
}

func TestRender_CodeBlock(t *testing.T) {
	code := node(TypeCodeBlock, map[string]interface{}{"language": "json"},
		text(`{"a":1}`, mark(MarkStrong), mark(MarkCode)),
	)
	assert.Equal(t, "```json\n{\"a\":1}\n```", Render(doc(code)))
}

func TestRender_CodeBlockWithoutLanguage(t *testing.T) {
	code := node(TypeCodeBlock, nil, text("line1"), node(TypeHardBreak, nil), text("line2"))
	assert.Equal(t, "```\nline1\nline2\n```", Render(doc(code)))
}

func TestRender_Blockquote(t *testing.T) {
	quote := node(TypeBlockquote, nil, para(text("first")), para(text("second", mark(MarkStrong))))
	assert.Equal(t, "> first\n> **second**", Render(doc(quote)))
}

func TestRender_Rule(t *testing.T) {
	assert.Equal(t, "a\n---", Render(doc(para(text("a")), node(TypeRule, nil))))
	assert.Equal(t, "---", Render(doc(node(TypeHorizontalRule, nil))))
}

func TestRender_Table(t *testing.T) {
	cell := func(s string) *Node { return node(TypeTableCell, nil, para(text(s))) }
	table := node(TypeTable, nil,
		node(TypeTableRow, nil, cell("c1"), cell("c2")),
		node(TypeTableRow, nil, cell("c3"), cell("c4")),
	)

	got := Render(doc(table))
	assert.Equal(t, "| c1 | c2 |\n| c3 | c4 |", got)
	assert.NotContains(t, got, "---")
}

func TestRender_UnknownKinds(t *testing.T) {
	panel := node("panel", map[string]interface{}{"panelType": "info"}, para(text("inside panel")))
	media := node("mediaSingle", nil, node("media", map[string]interface{}{"id": "1"}))

	assert.Equal(t, "inside panel", Render(doc(panel, media)))
}

func TestRender_TopLevelInline(t *testing.T) {
	got := Render(doc(text("loose "), text("text", mark(MarkStrong)), para(text("after"))))
	assert.Equal(t, "loose **text**\nafter", got)
}

func TestRender_NoConsecutiveBlankLines(t *testing.T) {
	br := node(TypeHardBreak, nil)
	d := doc(
		para(text("a"), br, br, br, br, text("b")),
		para(), para(text(" ")), para(),
		bullets(item(para(text("x")))),
		para(),
		bullets(item(para(text("y")))),
		para(text("c"), br, br),
		node(TypeCodeBlock, nil, text("one\n\n\n\ntwo")),
	)

	got := Render(d)
	assert.True(t, strings.HasPrefix(got, "a\n\nb\n"))
	assert.True(t, strings.HasSuffix(got, "\n```\none\n\n\n\ntwo\n```"), "code content kept verbatim")

	outside := strings.TrimSuffix(got, "```\none\n\n\n\ntwo\n```")
	assert.NotContains(t, outside, "\n\n\n")
}

func TestRender_CodeBlockBlankLinesInsideContainers(t *testing.T) {
	code := node(TypeCodeBlock, nil, text("a\n\n\nb"))

	got := Render(doc(node(TypeBlockquote, nil, code)))
	assert.Equal(t, "> ```\n> a\n> \n> \n> b\n> ```", got)

	got = Render(doc(bullets(item(para(text("step")), code))))
	assert.Equal(t, "- step\n  ```\n  a\n\n\n  b\n  ```", got)
}

func TestRender_Deterministic(t *testing.T) {
	d := doc(
		node(TypeHeading, map[string]interface{}{"level": float64(2)}, text("Title")),
		bullets(item(para(text("a"), text("b", mark(MarkEm))))),
	)
	want := Render(d)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Render(d)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestRender_GoldmarkStructure(t *testing.T) {
	d := doc(
		node(TypeHeading, map[string]interface{}{"level": float64(2)}, text("Story")),
		para(text("As a user")),
		bullets(
			item(para(text("one")), bullets(item(para(text("nested"))))),
			item(para(text("two"))),
		),
		node(TypeCodeBlock, map[string]interface{}{"language": "go"}, text("fmt.Println()")),
		node(TypeBlockquote, nil, para(text("quoted"))),
	)

	src := []byte(Render(d))
	root := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	counts := map[ast.NodeKind]int{}
	var lang string
	var level int
	require.NoError(t, ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		counts[n.Kind()]++
		switch v := n.(type) {
		case *ast.FencedCodeBlock:
			lang = string(v.Language(src))
		case *ast.Heading:
			level = v.Level
		}
		return ast.WalkContinue, nil
	}))

	assert.Equal(t, 1, counts[ast.KindHeading])
	assert.Equal(t, 2, level)
	assert.Equal(t, 2, counts[ast.KindList])
	assert.Equal(t, 3, counts[ast.KindListItem])
	assert.Equal(t, 1, counts[ast.KindFencedCodeBlock])
	assert.Equal(t, "go", lang)
	assert.Equal(t, 1, counts[ast.KindBlockquote])
}
