package adf

import (
	"bytes"
	"encoding/json"

	"github.com/ctreminiom/go-atlassian/pkg/infra/models"
	"github.com/pkg/errors"
)

// ErrNotObject is returned by Parse when the payload is not a JSON object.
var ErrNotObject = errors.New("document payload is not a JSON object")

// Convert converts an ADF node to Markdown. A doc node renders its children;
// any other node renders as a single-block document.
func Convert(node *Node) string {
	if node == nil {
		return ""
	}
	if node.Type == TypeDoc {
		return Render(&Document{Type: TypeDoc, Content: node.Content})
	}
	return Render(&Document{Type: TypeDoc, Content: []*Node{node}})
}

// Parse decodes a JSON document tree.
func Parse(data []byte) (*Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, ErrNotObject
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode document")
	}
	return &doc, nil
}

// FromComment converts a go-atlassian comment node tree into a Document.
func FromComment(node *models.CommentNodeScheme) *Document {
	if node == nil {
		return nil
	}
	root := fromCommentNode(node)
	return &Document{Type: TypeDoc, Version: node.Version, Content: root.Content}
}

func fromCommentNode(node *models.CommentNodeScheme) *Node {
	adfNode := &Node{
		Type: node.Type,
		Text: node.Text,
	}

	if len(node.Attrs) > 0 {
		adfNode.Attrs = make(map[string]interface{}, len(node.Attrs))
		for k, v := range node.Attrs {
			adfNode.Attrs[k] = v
		}
	}

	for _, mark := range node.Marks {
		if mark == nil {
			continue
		}
		adfMark := &Mark{Type: mark.Type}
		if len(mark.Attrs) > 0 {
			adfMark.Attrs = make(map[string]interface{}, len(mark.Attrs))
			for k, v := range mark.Attrs {
				adfMark.Attrs[k] = v
			}
		}
		adfNode.Marks = append(adfNode.Marks, adfMark)
	}

	for _, child := range node.Content {
		if child != nil {
			adfNode.Content = append(adfNode.Content, fromCommentNode(child))
		}
	}

	return adfNode
}

// ToComment converts a Document into the go-atlassian comment body shape.
func ToComment(doc *Document) *models.CommentNodeScheme {
	body := &models.CommentNodeScheme{Version: 1, Type: TypeDoc}
	if doc == nil {
		return body
	}
	if doc.Version != 0 {
		body.Version = doc.Version
	}
	for _, node := range doc.Content {
		if node != nil {
			body.Content = append(body.Content, toCommentNode(node))
		}
	}
	return body
}

func toCommentNode(node *Node) *models.CommentNodeScheme {
	out := &models.CommentNodeScheme{
		Type:  node.Type,
		Text:  node.Text,
		Attrs: node.Attrs,
	}
	for _, mark := range node.Marks {
		if mark != nil {
			out.Marks = append(out.Marks, &models.MarkScheme{Type: mark.Type, Attrs: mark.Attrs})
		}
	}
	for _, child := range node.Content {
		if child != nil {
			out.Content = append(out.Content, toCommentNode(child))
		}
	}
	return out
}
