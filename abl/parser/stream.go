package parser

// TokenStream is a read cursor over an immutable token slice. Several
// streams can share the same tokens.
type TokenStream struct {
	tokens []Token
	pos    int
}

func NewTokenStream(tokens []Token) *TokenStream {
	return &TokenStream{tokens: tokens}
}

// NextToken returns the next token, or an EOF token once the stream is
// exhausted.
func (s *TokenStream) NextToken() Token {
	tok := s.Peek()
	if s.pos < len(s.tokens) {
		s.pos++
	}
	return tok
}

func (s *TokenStream) Peek() Token {
	if s.pos >= len(s.tokens) {
		var end Position
		if len(s.tokens) > 0 {
			end = s.tokens[len(s.tokens)-1].Span.End
		}
		return Token{Kind: TokenEOF, Span: Span{Start: end, End: end}}
	}
	return s.tokens[s.pos]
}

func (s *TokenStream) Reset() {
	s.pos = 0
}

func (s *TokenStream) Len() int {
	return len(s.tokens)
}

// Tokens returns a copy of all tokens in the stream.
func (s *TokenStream) Tokens() []Token {
	out := make([]Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}
