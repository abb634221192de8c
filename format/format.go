// Package format renders parse trees and token streams for people and
// tools. Nothing here feeds back into parsing or resolution.
package format

import (
	"github.com/dhamidi/proparse/abl/parser"
)

type Encoder interface {
	Encode(node *parser.Node) error
	MarshalText(node *parser.Node) ([]byte, error)
}
