package adf

func text(s string, marks ...*Mark) *Node {
	return &Node{Type: TypeText, Text: s, Marks: marks}
}

func mark(typ string) *Mark {
	return &Mark{Type: typ}
}

func link(href string) *Mark {
	return &Mark{Type: MarkLink, Attrs: map[string]interface{}{"href": href}}
}

func node(typ string, attrs map[string]interface{}, content ...*Node) *Node {
	return &Node{Type: typ, Attrs: attrs, Content: content}
}

func para(content ...*Node) *Node {
	return node(TypeParagraph, nil, content...)
}

func item(content ...*Node) *Node {
	return node(TypeListItem, nil, content...)
}

func bullets(items ...*Node) *Node {
	return node(TypeBulletList, nil, items...)
}

func ordered(order int, items ...*Node) *Node {
	return node(TypeOrderedList, map[string]interface{}{"order": float64(order)}, items...)
}

func doc(content ...*Node) *Document {
	return &Document{Type: TypeDoc, Version: 1, Content: content}
}
