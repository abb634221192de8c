package parser

import "encoding/json"

type jsonNode struct {
	Kind     string      `json:"kind"`
	State2   string      `json:"state2,omitempty"`
	Span     *jsonSpan   `json:"span,omitempty"`
	Token    string      `json:"token,omitempty"`
	Symbol   *jsonSymbol `json:"symbol,omitempty"`
	Scope    string      `json:"scope,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	File  string       `json:"file,omitempty"`
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type jsonSymbol struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON(nil))
}

// MarshalJSONExcluding encodes the tree leaving out nodes of the excluded
// kinds together with their subtrees.
func (n *Node) MarshalJSONExcluding(exclude map[NodeKind]bool) ([]byte, error) {
	return json.MarshalIndent(n.toJSON(exclude), "", "  ")
}

func (n *Node) toJSON(exclude map[NodeKind]bool) *jsonNode {
	jn := &jsonNode{
		Kind:   n.Kind.String(),
		State2: n.State2.String(),
	}

	if n.Span.Start.Line != 0 || n.Span.End.Line != 0 {
		jn.Span = &jsonSpan{
			File:  n.Span.Start.File,
			Start: jsonPosition{Line: n.Span.Start.Line, Column: n.Span.Start.Column},
			End:   jsonPosition{Line: n.Span.End.Line, Column: n.Span.End.Column},
		}
	}

	if n.Token != nil {
		jn.Token = n.Token.Literal
	}
	if n.Symbol != nil {
		jn.Symbol = &jsonSymbol{Name: n.Symbol.SymbolName(), Kind: n.Symbol.SymbolKind()}
	}
	if n.Scope != nil {
		jn.Scope = n.Scope.ScopeName()
	}

	for _, child := range n.Children {
		if exclude[child.Kind] {
			continue
		}
		jn.Children = append(jn.Children, child.toJSON(exclude))
	}

	return jn
}
