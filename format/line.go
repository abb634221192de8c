package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/proparse/abl/parser"
)

// LineEncoder writes one tab-separated line per node: depth, kind, class,
// position, token and bound symbol. Empty columns are written as "-".
type LineEncoder struct {
	w       io.Writer
	exclude map[parser.NodeKind]bool
}

func NewLineEncoder(w io.Writer, exclude ...parser.NodeKind) *LineEncoder {
	e := &LineEncoder{w: w, exclude: make(map[parser.NodeKind]bool)}
	for _, kind := range exclude {
		e.exclude[kind] = true
	}
	return e
}

func (e *LineEncoder) Encode(node *parser.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(node *parser.Node) ([]byte, error) {
	var sb strings.Builder
	e.write(&sb, node, 0)
	return []byte(sb.String()), nil
}

func (e *LineEncoder) write(sb *strings.Builder, n *parser.Node, depth int) {
	fmt.Fprintf(sb, "%d\t%s\t%s\t%s\t%s\t%s\n",
		depth,
		n.Kind,
		orDash(n.State2.String()),
		e.position(n),
		orDash(n.TokenLiteral()),
		e.symbol(n),
	)
	for _, child := range n.Children {
		if e.exclude[child.Kind] {
			continue
		}
		e.write(sb, child, depth+1)
	}
}

func (e *LineEncoder) position(n *parser.Node) string {
	if n.Span.Start.Line == 0 {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", n.File(), n.Line(), n.Span.Start.Column)
}

func (e *LineEncoder) symbol(n *parser.Node) string {
	if n.Symbol == nil {
		return "-"
	}
	return n.Symbol.SymbolKind() + " " + n.Symbol.SymbolName()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// TokenEncoder writes a token stream, one token per line.
type TokenEncoder struct {
	w      io.Writer
	hidden bool
}

// NewTokenEncoder creates an encoder; whitespace and comments are only
// written when hidden is set.
func NewTokenEncoder(w io.Writer, hidden bool) *TokenEncoder {
	return &TokenEncoder{w: w, hidden: hidden}
}

func (e *TokenEncoder) Encode(stream *parser.TokenStream) error {
	for {
		tok := stream.NextToken()
		if tok.Kind == parser.TokenEOF {
			return nil
		}
		if tok.Hidden() && !e.hidden {
			continue
		}
		if _, err := fmt.Fprintf(e.w, "%s:%d:%d\t%s\t%q\n", tok.File(), tok.Line(), tok.Span.Start.Column, tok.Kind, tok.Literal); err != nil {
			return err
		}
	}
}
