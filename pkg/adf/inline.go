package adf

import (
	"strings"
)

// RenderInline renders a run of inline nodes to a single Markdown string.
func (r *Renderer) RenderInline(nodes []*Node) string {
	var result strings.Builder
	for _, node := range nodes {
		r.writeInline(node, &result)
	}
	return result.String()
}

func (r *Renderer) writeInline(node *Node, result *strings.Builder) {
	if node == nil {
		return
	}

	switch node.Type {
	case TypeText:
		result.WriteString(r.applyMarks(node.Text, node.Marks))
	case TypeHardBreak, "hardbreak":
		result.WriteString("\n")
	case TypeSoftBreak, "softbreak":
		result.WriteString(" ")
	case TypeMention:
		id := node.StringAttr("id")
		if id == "" {
			id = node.StringAttr("text")
		}
		result.WriteString("@" + id)
	case TypeEmoji:
		result.WriteString(node.StringAttr("shortName"))
	case TypeImage:
		result.WriteString("![image](" + node.StringAttr("src") + ")")
	default:
		for _, child := range node.Content {
			r.writeInline(child, result)
		}
	}
}

// applyMarks folds marks over text in list order, so the last mark ends up
// as the outermost wrapper.
func (r *Renderer) applyMarks(text string, marks []*Mark) string {
	for _, mark := range marks {
		if mark == nil {
			continue
		}
		switch mark.Type {
		case MarkStrong:
			text = "**" + text + "**"
		case MarkEm:
			text = r.emphasis + text + r.emphasis
		case MarkCode:
			text = "`" + text + "`"
		case MarkStrike, MarkStrikethrough:
			text = "~~" + text + "~~"
		case MarkLink:
			text = "[" + text + "](" + stringAttr(mark.Attrs, "href") + ")"
		}
	}
	return text
}

// plainText concatenates the text of nodes with every mark dropped. Hard
// breaks survive as newlines.
func plainText(nodes []*Node) string {
	var result strings.Builder
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, node := range nodes {
			if node == nil {
				continue
			}
			switch node.Type {
			case TypeText:
				result.WriteString(node.Text)
			case TypeHardBreak, "hardbreak":
				result.WriteString("\n")
			default:
				walk(node.Content)
			}
		}
	}
	walk(nodes)
	return result.String()
}

func isInline(node *Node) bool {
	switch node.Type {
	case TypeText, TypeHardBreak, "hardbreak", TypeSoftBreak, "softbreak",
		TypeMention, TypeEmoji, TypeImage:
		return true
	}
	return false
}
