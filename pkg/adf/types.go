package adf

// Node represents an ADF node
type Node struct {
	Type    string                 `json:"type"`
	Text    string                 `json:"text,omitempty"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Marks   []*Mark                `json:"marks,omitempty"`
	Content []*Node                `json:"content,omitempty"`
}

// Mark represents formatting marks in ADF
type Mark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

// Document is the root of an ADF tree. Version is carried but not interpreted.
type Document struct {
	Type    string  `json:"type"`
	Version int     `json:"version"`
	Content []*Node `json:"content,omitempty"`
}

// Node types. Both the Jira REST schema and the stored prosemirror schema are
// accepted, so some kinds have two spellings.
const (
	TypeDoc            = "doc"
	TypeText           = "text"
	TypeParagraph      = "paragraph"
	TypeHeading        = "heading"
	TypeBulletList     = "bulletList"
	TypeOrderedList    = "orderedList"
	TypeListItem       = "listItem"
	TypeCodeBlock      = "codeBlock"
	TypeBlockquote     = "blockquote"
	TypeRule           = "rule"
	TypeHorizontalRule = "horizontalRule"
	TypeTable          = "table"
	TypeTableRow       = "tableRow"
	TypeTableCell      = "tableCell"
	TypeTableHeader    = "tableHeader"
	TypeMention        = "mention"
	TypeEmoji          = "emoji"
	TypeImage          = "image"
	TypeHardBreak      = "hardBreak"
	TypeSoftBreak      = "softBreak"
)

// Mark types.
const (
	MarkStrong        = "strong"
	MarkEm            = "em"
	MarkCode          = "code"
	MarkStrike        = "strike"
	MarkStrikethrough = "strikethrough"
	MarkLink          = "link"
	MarkMention       = "mention"
	MarkUnderline     = "underline"
)

// StringAttr returns the string attribute key, or "" when absent or not a string.
func (n *Node) StringAttr(key string) string {
	if n == nil {
		return ""
	}
	return stringAttr(n.Attrs, key)
}

// IntAttr returns the integer attribute key, or def when absent or not numeric.
// JSON numbers decode as float64, so that is the common case.
func (n *Node) IntAttr(key string, def int) int {
	if n == nil || n.Attrs == nil {
		return def
	}
	switch v := n.Attrs[key].(type) {
	case float64:
		return int(v)
	case float32:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case interface{ Int64() (int64, error) }:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	}
	return def
}

func stringAttr(attrs map[string]interface{}, key string) string {
	if attrs == nil {
		return ""
	}
	s, _ := attrs[key].(string)
	return s
}
