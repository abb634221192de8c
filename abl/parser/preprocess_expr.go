package parser

import (
	"fmt"
	"strconv"
	"strings"
)

type ppValueKind int

const (
	ppString ppValueKind = iota
	ppNumber
	ppLogical
)

// ppValue is a value of an &IF expression.
type ppValue struct {
	kind ppValueKind
	s    string
	n    float64
	b    bool
}

func (v ppValue) truthy() bool {
	switch v.kind {
	case ppLogical:
		return v.b
	case ppNumber:
		return v.n != 0
	}
	return v.s != ""
}

func (v ppValue) String() string {
	switch v.kind {
	case ppLogical:
		if v.b {
			return "yes"
		}
		return "no"
	case ppNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	}
	return v.s
}

func (v ppValue) number() (float64, bool) {
	switch v.kind {
	case ppNumber:
		return v.n, true
	case ppLogical:
		if v.b {
			return 1, true
		}
		return 0, true
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
	return n, err == nil
}

func logical(b bool) ppValue {
	return ppValue{kind: ppLogical, b: b}
}

// proversion is reported by PROVERSION in &IF conditions.
const proversion = "12.8"

// condEvaluator evaluates the condition of &IF and &ELSEIF, a small
// expression language over strings, numbers and logicals.
type condEvaluator struct {
	lexer  *Lexer
	frame  *frame
	tokens []Token
	pos    int
}

func (e *condEvaluator) evaluate() (ppValue, error) {
	if len(e.tokens) == 0 {
		return ppValue{}, fmt.Errorf("empty condition")
	}
	v, err := e.parseOr()
	if err != nil {
		return ppValue{}, err
	}
	if e.pos < len(e.tokens) {
		return ppValue{}, fmt.Errorf("unexpected %q", e.tokens[e.pos].Literal)
	}
	return v, nil
}

func (e *condEvaluator) peek() Token {
	if e.pos >= len(e.tokens) {
		return Token{Kind: TokenEOF}
	}
	return e.tokens[e.pos]
}

func (e *condEvaluator) advance() Token {
	tok := e.peek()
	if e.pos < len(e.tokens) {
		e.pos++
	}
	return tok
}

func (e *condEvaluator) parseOr() (ppValue, error) {
	left, err := e.parseAnd()
	if err != nil {
		return left, err
	}
	for e.peek().Kind == TokenOr {
		e.advance()
		right, err := e.parseAnd()
		if err != nil {
			return right, err
		}
		left = logical(left.truthy() || right.truthy())
	}
	return left, nil
}

func (e *condEvaluator) parseAnd() (ppValue, error) {
	left, err := e.parseNot()
	if err != nil {
		return left, err
	}
	for e.peek().Kind == TokenAnd {
		e.advance()
		right, err := e.parseNot()
		if err != nil {
			return right, err
		}
		left = logical(left.truthy() && right.truthy())
	}
	return left, nil
}

func (e *condEvaluator) parseNot() (ppValue, error) {
	if e.peek().Kind == TokenNot {
		e.advance()
		v, err := e.parseNot()
		if err != nil {
			return v, err
		}
		return logical(!v.truthy()), nil
	}
	return e.parseComparison()
}

func (e *condEvaluator) parseComparison() (ppValue, error) {
	left, err := e.parseAdditive()
	if err != nil {
		return left, err
	}
	op := e.peek().Kind
	switch op {
	case TokenEquals, TokenEq, TokenNotEquals, TokenNe, TokenLT, TokenLt, TokenGT, TokenGt,
		TokenLE, TokenLe, TokenGE, TokenGe, TokenBegins, TokenMatches:
	default:
		return left, nil
	}
	e.advance()
	right, err := e.parseAdditive()
	if err != nil {
		return right, err
	}
	return logical(compare(op, left, right)), nil
}

func compare(op TokenKind, left, right ppValue) bool {
	var cmp int
	ln, lok := left.number()
	rn, rok := right.number()
	if lok && rok && (left.kind != ppString || right.kind != ppString) {
		switch {
		case ln < rn:
			cmp = -1
		case ln > rn:
			cmp = 1
		}
	} else {
		cmp = strings.Compare(strings.ToUpper(left.String()), strings.ToUpper(right.String()))
	}
	switch op {
	case TokenEquals, TokenEq:
		return cmp == 0
	case TokenNotEquals, TokenNe:
		return cmp != 0
	case TokenLT, TokenLt:
		return cmp < 0
	case TokenGT, TokenGt:
		return cmp > 0
	case TokenLE, TokenLe:
		return cmp <= 0
	case TokenGE, TokenGe:
		return cmp >= 0
	case TokenBegins:
		return strings.HasPrefix(strings.ToUpper(left.String()), strings.ToUpper(right.String()))
	case TokenMatches:
		return matches(strings.ToUpper(left.String()), strings.ToUpper(right.String()))
	}
	return false
}

// matches implements the MATCHES operator: '*' matches any run of
// characters and '.' any single character.
func matches(s, pattern string) bool {
	if pattern == "" {
		return s == ""
	}
	switch pattern[0] {
	case '*':
		for i := 0; i <= len(s); i++ {
			if matches(s[i:], pattern[1:]) {
				return true
			}
		}
		return false
	case '.':
		return s != "" && matches(s[1:], pattern[1:])
	}
	return s != "" && s[0] == pattern[0] && matches(s[1:], pattern[1:])
}

func (e *condEvaluator) parseAdditive() (ppValue, error) {
	left, err := e.parseMultiplicative()
	if err != nil {
		return left, err
	}
	for e.peek().Kind == TokenPlus || e.peek().Kind == TokenMinus {
		op := e.advance().Kind
		right, err := e.parseMultiplicative()
		if err != nil {
			return right, err
		}
		ln, lok := left.number()
		rn, rok := right.number()
		switch {
		case op == TokenPlus && (left.kind == ppString || right.kind == ppString):
			left = ppValue{kind: ppString, s: left.String() + right.String()}
		case lok && rok && op == TokenPlus:
			left = ppValue{kind: ppNumber, n: ln + rn}
		case lok && rok:
			left = ppValue{kind: ppNumber, n: ln - rn}
		default:
			return left, fmt.Errorf("cannot subtract %q", right.String())
		}
	}
	return left, nil
}

func (e *condEvaluator) parseMultiplicative() (ppValue, error) {
	left, err := e.parseUnary()
	if err != nil {
		return left, err
	}
	for e.peek().Kind == TokenStar || e.peek().Kind == TokenSlash || e.peek().Kind == TokenModulo {
		op := e.advance()
		right, err := e.parseUnary()
		if err != nil {
			return right, err
		}
		ln, lok := left.number()
		rn, rok := right.number()
		if !lok || !rok {
			return left, fmt.Errorf("%s needs numbers", op.Literal)
		}
		switch op.Kind {
		case TokenStar:
			left = ppValue{kind: ppNumber, n: ln * rn}
		case TokenSlash:
			if rn == 0 {
				return left, fmt.Errorf("division by zero")
			}
			left = ppValue{kind: ppNumber, n: ln / rn}
		default:
			if int64(rn) == 0 {
				return left, fmt.Errorf("division by zero")
			}
			left = ppValue{kind: ppNumber, n: float64(int64(ln) % int64(rn))}
		}
	}
	return left, nil
}

func (e *condEvaluator) parseUnary() (ppValue, error) {
	if e.peek().Kind == TokenMinus {
		e.advance()
		v, err := e.parseUnary()
		if err != nil {
			return v, err
		}
		n, ok := v.number()
		if !ok {
			return v, fmt.Errorf("cannot negate %q", v.String())
		}
		return ppValue{kind: ppNumber, n: -n}, nil
	}
	return e.parsePrimary()
}

func (e *condEvaluator) parsePrimary() (ppValue, error) {
	tok := e.advance()
	switch tok.Kind {
	case TokenNumber:
		n, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			i, ierr := strconv.ParseInt(tok.Literal, 0, 64)
			if ierr != nil {
				return ppValue{}, fmt.Errorf("bad number %q", tok.Literal)
			}
			n = float64(i)
		}
		return ppValue{kind: ppNumber, n: n}, nil
	case TokenString:
		return ppValue{kind: ppString, s: StringValue(tok.Literal)}, nil
	case TokenTrue, TokenYes:
		return logical(true), nil
	case TokenFalse, TokenNo:
		return logical(false), nil
	case TokenUnknownValue:
		return ppValue{kind: ppString}, nil
	case TokenLParen:
		v, err := e.parseOr()
		if err != nil {
			return v, err
		}
		if e.advance().Kind != TokenRParen {
			return v, fmt.Errorf("missing )")
		}
		return v, nil
	case TokenIdent:
		return e.parseFunction(tok)
	case TokenEOF:
		return ppValue{}, fmt.Errorf("unexpected end of condition")
	}
	return ppValue{}, fmt.Errorf("unexpected %q", tok.Literal)
}

func (e *condEvaluator) parseFunction(tok Token) (ppValue, error) {
	switch tok.Upper() {
	case "DEFINED":
		if e.advance().Kind != TokenLParen {
			return ppValue{}, fmt.Errorf("DEFINED needs (")
		}
		name := e.advance()
		if name.Kind == TokenEOF {
			return ppValue{}, fmt.Errorf("DEFINED needs a name")
		}
		if e.advance().Kind != TokenRParen {
			return ppValue{}, fmt.Errorf("missing )")
		}
		level := e.lexer.definedLevel(e.frame, name.Literal)
		return ppValue{kind: ppNumber, n: float64(level)}, nil
	case "PROVERSION":
		e.skipEmptyArgs()
		return ppValue{kind: ppString, s: proversion}, nil
	case "OPSYS":
		return ppValue{kind: ppString, s: "UNIX"}, nil
	}
	return ppValue{}, fmt.Errorf("unsupported function %s", tok.Literal)
}

func (e *condEvaluator) skipEmptyArgs() {
	if e.peek().Kind == TokenLParen && e.pos+1 < len(e.tokens) && e.tokens[e.pos+1].Kind == TokenRParen {
		e.pos += 2
	}
}

// StringValue returns the text of a string literal without quotes, escapes
// and attribute suffix.
func StringValue(literal string) string {
	if literal == "" {
		return ""
	}
	quote := literal[0]
	if quote != '"' && quote != '\'' {
		return literal
	}
	end := strings.LastIndexByte(literal, quote)
	if end <= 0 {
		return literal[1:]
	}
	body := literal[1:end]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case ch == '~' && i+1 < len(body):
			i++
			b.WriteByte(unescape(body[i]))
		case ch == quote && i+1 < len(body) && body[i+1] == quote:
			i++
			b.WriteByte(quote)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func unescape(ch byte) byte {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'E':
		return 0x1b
	}
	return ch
}
