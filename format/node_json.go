package format

import (
	"io"
	"strings"

	"github.com/dhamidi/proparse/abl/parser"
)

// DefaultExclusions are left out of a node listing unless asked for: the
// lone-period statement carries nothing but punctuation.
var DefaultExclusions = []parser.NodeKind{parser.KindEmptyStmt}

// NodeLister writes a CST as indented JSON, without the nodes of the
// excluded kinds and their subtrees.
type NodeLister struct {
	w       io.Writer
	exclude map[parser.NodeKind]bool
}

func NewNodeLister(w io.Writer, exclude ...parser.NodeKind) *NodeLister {
	l := &NodeLister{w: w, exclude: make(map[parser.NodeKind]bool)}
	for _, kind := range exclude {
		l.exclude[kind] = true
	}
	return l
}

func (l *NodeLister) Encode(node *parser.Node) error {
	text, err := l.MarshalText(node)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(text); err != nil {
		return err
	}
	_, err = io.WriteString(l.w, "\n")
	return err
}

func (l *NodeLister) MarshalText(node *parser.Node) ([]byte, error) {
	return node.MarshalJSONExcluding(l.exclude)
}

// ParseKinds turns comma-separated node kind names into kinds. Unknown
// names are returned separately.
func ParseKinds(list string) (kinds []parser.NodeKind, unknown []string) {
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		kind, ok := parser.NodeKindByName(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		kinds = append(kinds, kind)
	}
	return kinds, unknown
}
