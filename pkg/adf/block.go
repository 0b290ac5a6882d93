package adf

import (
	"strconv"
	"strings"
)

// Render converts a document into Markdown lines joined by newlines.
func (r *Renderer) Render(doc *Document) string {
	if doc == nil {
		return ""
	}
	lines := collapseBlankLines(r.blockLines(doc.Content, ""))
	return strings.Join(trimTrailingBlank(lines), "\n")
}

func (r *Renderer) blockLines(nodes []*Node, indent string) []string {
	var lines []string
	var pending []*Node

	flush := func() {
		if len(pending) == 0 {
			return
		}
		if text := r.RenderInline(pending); !isBlank(text) {
			lines = append(lines, indentLines(text, indent)...)
		}
		pending = nil
	}

	for _, node := range nodes {
		if node == nil {
			continue
		}
		if isInline(node) {
			pending = append(pending, node)
			continue
		}
		flush()
		lines = append(lines, r.block(node, indent)...)
	}
	flush()

	return lines
}

func (r *Renderer) block(node *Node, indent string) []string {
	switch node.Type {
	case TypeParagraph:
		text := r.RenderInline(node.Content)
		if isBlank(text) {
			return nil
		}
		return indentLines(text, indent)
	case TypeHeading:
		text := r.RenderInline(node.Content)
		if isBlank(text) {
			return nil
		}
		return indentLines(strings.Repeat("#", headingLevel(node))+" "+text, indent)
	case TypeBulletList, TypeOrderedList:
		// The blank line stops a following paragraph from continuing the last item.
		return append(r.listLines(node, indent), "")
	case TypeListItem:
		return r.itemLines(node, "- ", indent)
	case TypeCodeBlock:
		return codeBlockLines(node, indent)
	case TypeBlockquote:
		var lines []string
		inner := trimTrailingBlank(collapseBlankLines(r.blockLines(node.Content, "")))
		for _, entry := range inner {
			for _, line := range strings.Split(entry, "\n") {
				lines = append(lines, indent+"> "+line)
			}
		}
		return lines
	case TypeRule, TypeHorizontalRule:
		return []string{indent + "---"}
	case TypeTable:
		return r.tableLines(node, indent)
	default:
		return r.blockLines(node.Content, indent)
	}
}

func (r *Renderer) listLines(list *Node, indent string) []string {
	ordered := list.Type == TypeOrderedList
	start := 1
	if ordered {
		start = list.IntAttr("order", 1)
		if start < 1 {
			start = 1
		}
	}

	var lines []string
	n := start
	for _, item := range list.Content {
		if item == nil {
			continue
		}
		prefix := "- "
		if ordered {
			prefix = strconv.Itoa(n) + ". "
			n++
		}
		lines = append(lines, r.itemLines(item, prefix, indent)...)
	}
	return lines
}

// itemLines renders one list item: the leading paragraph goes on the bullet
// line, nested lists go one level deeper, and later blocks are aligned with
// the item text.
func (r *Renderer) itemLines(item *Node, prefix, indent string) []string {
	children := item.Content
	if item.Type != TypeListItem {
		children = []*Node{item}
	}

	var first string
	rest := children
	switch {
	case len(children) > 0 && children[0] != nil && children[0].Type == TypeParagraph:
		first = r.RenderInline(children[0].Content)
		rest = children[1:]
	default:
		i := 0
		for i < len(children) && children[i] != nil && isInline(children[i]) {
			i++
		}
		first = r.RenderInline(children[:i])
		rest = children[i:]
	}

	cont := indent + "  "
	firstLines := strings.Split(first, "\n")
	lines := []string{indent + prefix + firstLines[0]}
	for _, line := range firstLines[1:] {
		lines = append(lines, indentLine(line, cont))
	}

	for _, child := range rest {
		if child == nil {
			continue
		}
		switch child.Type {
		case TypeBulletList, TypeOrderedList:
			lines = append(lines, r.listLines(child, cont)...)
		default:
			lines = append(lines, r.blockLines([]*Node{child}, cont)...)
		}
	}
	return lines
}

// codeBlockLines returns the whole fenced block as a single entry so blank
// lines inside the code are not collapsed.
func codeBlockLines(node *Node, indent string) []string {
	fence := indent + "```"
	lines := []string{fence + node.StringAttr("language")}
	if code := plainText(node.Content); code != "" {
		lines = append(lines, indentLines(code, indent)...)
	}
	lines = append(lines, fence)
	return []string{strings.Join(lines, "\n")}
}

// tableLines writes one pipe-delimited line per row. No header separator row
// is emitted.
func (r *Renderer) tableLines(table *Node, indent string) []string {
	var lines []string
	for _, row := range table.Content {
		if row == nil {
			continue
		}
		if row.Type != TypeTableRow {
			lines = append(lines, r.blockLines([]*Node{row}, indent)...)
			continue
		}
		cells := make([]string, 0, len(row.Content))
		for _, cell := range row.Content {
			if cell == nil {
				continue
			}
			cells = append(cells, r.RenderInline(cell.Content))
		}
		lines = append(lines, indentLines("| "+strings.Join(cells, " | ")+" |", indent)...)
	}
	return lines
}

func headingLevel(node *Node) int {
	level := node.IntAttr("level", 1)
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

// collapseBlankLines drops every blank line that follows another blank line.
// A leading blank line is kept. Code blocks arrive as one entry and are left
// untouched.
func collapseBlankLines(lines []string) []string {
	cleaned := make([]string, 0, len(lines))
	for i, line := range lines {
		if !isBlank(line) || i == 0 || !isBlank(lines[i-1]) {
			cleaned = append(cleaned, line)
		}
	}
	return cleaned
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && isBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func indentLines(text, indent string) []string {
	parts := strings.Split(text, "\n")
	for i, part := range parts {
		parts[i] = indentLine(part, indent)
	}
	return parts
}

func indentLine(line, indent string) string {
	if line == "" {
		return ""
	}
	return indent + line
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
