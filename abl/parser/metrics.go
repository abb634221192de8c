package parser

import "fmt"

// Metrics are aggregate size counts of one compilation unit, include files
// counted in.
type Metrics struct {
	Files        int `json:"files"`
	Includes     int `json:"includes"`
	Lines        int `json:"lines"`
	CodeLines    int `json:"codeLines"`
	CommentLines int `json:"commentLines"`
	Tokens       int `json:"tokens"`
	Statements   int `json:"statements"`
}

func (m Metrics) String() string {
	return fmt.Sprintf("files=%d includes=%d lines=%d code=%d comments=%d tokens=%d statements=%d",
		m.Files, m.Includes, m.Lines, m.CodeLines, m.CommentLines, m.Tokens, m.Statements)
}

type lineKey struct {
	file string
	line int
}

// GenerateMetrics runs the lexer to the end, counting as it goes. The
// tokens are not kept.
func GenerateMetrics(l *Lexer) (*Metrics, error) {
	_, m, err := collect(l, false)
	return m, err
}

// TokenizeWithMetrics scans the whole input like Tokenize and counts it like
// GenerateMetrics in the same pass.
func (l *Lexer) TokenizeWithMetrics() ([]Token, *Metrics, error) {
	return collect(l, true)
}

func collect(l *Lexer, keep bool) ([]Token, *Metrics, error) {
	var tokens []Token
	m := &Metrics{}
	code := make(map[lineKey]bool)
	comments := make(map[lineKey]bool)
	for {
		tok := l.NextToken()
		if err := l.Err(); err != nil {
			return nil, nil, err
		}
		if tok.Kind == TokenEOF {
			break
		}
		if keep {
			tokens = append(tokens, tok)
		}
		switch {
		case tok.Kind == TokenComment:
			for line := tok.Span.Start.Line; line <= tok.Span.End.Line; line++ {
				comments[lineKey{tok.Span.Start.File, line}] = true
			}
		case tok.Hidden():
		default:
			m.Tokens++
			code[lineKey{tok.Span.Start.File, tok.Span.Start.Line}] = true
			if tok.Kind == TokenPeriod {
				m.Statements++
			}
		}
	}
	m.Files = l.Files()
	m.Includes = l.Includes()
	m.Lines = l.Lines()
	m.CodeLines = len(code)
	m.CommentLines = len(comments)
	return tokens, m, nil
}
