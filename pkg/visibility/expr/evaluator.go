package expr

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tkestack/paramcheck/internal/coerce"
	"github.com/tkestack/paramcheck/pkg/visibility"
)

// Evaluator evaluates enabled conditions.
//
// The canonical form is `name==literal`: the sibling field's current value is
// stringified and compared with the literal text, so `backup==true` matches
// both the boolean true and the string "true". Rules may also combine
// comparisons:
// - inequality: `engine != "mysql"`
// - composition: `a==x && (b==y || !c)`
// - truthiness: `enabled`
// - null checks: `mode == null`
//
// Values are read from visibility.Context.Values (with dot-path traversal)
// and visibility.Context.Extras (via the `extras.` prefix).
type Evaluator struct{}

func New() *Evaluator { return &Evaluator{} }

// simpleRule matches rules with a single `==` and no other operators. The
// literal is everything after `==`, so it may contain spaces.
var simpleRule = regexp.MustCompile(`^\s*([A-Za-z_][\w.\-]*)\s*==([^=&|()!"']*)$`)

func (e *Evaluator) Eval(fieldPath, rule string, ctx visibility.Context) (bool, error) {
	_ = fieldPath
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}

	if groups := simpleRule.FindStringSubmatch(trimmed); groups != nil {
		node := compareNode{
			identifier: groups[1],
			op:         tokenEq,
			literal:    literal{raw: strings.TrimSpace(groups[2])},
		}
		return node.eval(ctx)
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return false, err
	}
	if len(tokens) == 0 {
		return true, nil
	}

	node, err := parseExpression(tokens)
	if err != nil {
		return false, err
	}
	return node.eval(ctx)
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNull
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDelimiter(ch byte) bool {
	return isSpace(ch) || strings.IndexByte("()!=&|", ch) >= 0
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	peek := func(offset int) byte {
		if i+offset >= len(input) {
			return 0
		}
		return input[i+offset]
	}

	// double reads a two-character operator whose second character must be
	// second.
	double := func(second byte, kind tokenKind, raw string) error {
		if peek(1) != second {
			return fmt.Errorf("visibility/expr: unexpected %q; use %q", input[i], raw)
		}
		i += 2
		tokens = append(tokens, token{kind: kind, raw: raw})
		return nil
	}

	for i < len(input) {
		ch := input[i]
		if isSpace(ch) {
			i++
			continue
		}

		switch ch {
		case '(':
			i++
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
		case ')':
			i++
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
		case '!':
			if peek(1) == '=' {
				i += 2
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				continue
			}
			i++
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
		case '=':
			if err := double('=', tokenEq, "=="); err != nil {
				return nil, err
			}
		case '&':
			if err := double('&', tokenAnd, "&&"); err != nil {
				return nil, err
			}
		case '|':
			if err := double('|', tokenOr, "||"); err != nil {
				return nil, err
			}
		case '"', '\'':
			value, next, err := readQuoted(input, i)
			if err != nil {
				return nil, err
			}
			i = next
			tokens = append(tokens, token{kind: tokenString, raw: value})
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			raw := input[start:i]
			switch strings.ToLower(raw) {
			case "null", "nil":
				tokens = append(tokens, token{kind: tokenNull, raw: "null"})
			default:
				tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
			}
		}
	}

	return tokens, nil
}

// readQuoted reads a quoted literal starting at input[start] and returns its
// unquoted value and the index after the closing quote.
func readQuoted(input string, start int) (string, int, error) {
	quote := input[start]
	escaped := false
	for i := start + 1; i < len(input); i++ {
		c := input[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c != quote {
			continue
		}
		body := input[start+1 : i]
		if quote == '\'' {
			body = strings.ReplaceAll(body, `"`, `\"`)
			body = strings.ReplaceAll(body, `\'`, `'`)
		}
		value, err := strconv.Unquote(`"` + body + `"`)
		if err != nil {
			return "", 0, fmt.Errorf("visibility/expr: invalid string literal: %w", err)
		}
		return value, i + 1, nil
	}
	return "", 0, errors.New("visibility/expr: unterminated string literal")
}

type exprNode interface {
	eval(ctx visibility.Context) (bool, error)
}

type orNode struct{ left, right exprNode }

func (n orNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(ctx)
}

type andNode struct{ left, right exprNode }

func (n andNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(ctx)
}

type notNode struct{ inner exprNode }

func (n notNode) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type literal struct {
	null bool
	raw  string
}

type compareNode struct {
	identifier string
	op         tokenKind
	literal    literal
}

func (n compareNode) eval(ctx visibility.Context) (bool, error) {
	value, ok := lookup(ctx, n.identifier)
	if !ok {
		value = nil
	}

	var equal bool
	if n.literal.null {
		equal = value == nil
	} else {
		equal = coerce.String(value) == n.literal.raw
	}

	switch n.op {
	case tokenEq:
		return equal, nil
	case tokenNeq:
		return !equal, nil
	default:
		return false, fmt.Errorf("visibility/expr: unsupported operator for %q", n.identifier)
	}
}

type truthyNode struct{ identifier string }

func (n truthyNode) eval(ctx visibility.Context) (bool, error) {
	value, ok := lookup(ctx, n.identifier)
	if !ok {
		return false, nil
	}
	return truthy(value), nil
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseExpression(tokens []token) (exprNode, error) {
	stream := &tokenStream{tokens: tokens}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return node, nil
}

func parseOr(stream *tokenStream) (exprNode, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (exprNode, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := stream.consume(tokenIdentifier)
	if !ok {
		if stream.pos >= len(stream.tokens) {
			return nil, errors.New("visibility/expr: empty expression")
		}
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", stream.tokens[stream.pos].raw)
	}

	for _, op := range []tokenKind{tokenEq, tokenNeq} {
		if stream.match(op) {
			lit, err := stream.consumeLiteral()
			if err != nil {
				return nil, err
			}
			return compareNode{identifier: ident.raw, op: op, literal: lit}, nil
		}
	}

	return truthyNode{identifier: ident.raw}, nil
}

func (s *tokenStream) peek() (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	return s.tokens[s.pos], true
}

func (s *tokenStream) match(kind tokenKind) bool {
	_, ok := s.consume(kind)
	return ok
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	tok, ok := s.peek()
	if !ok || tok.kind != kind {
		return token{}, false
	}
	s.pos++
	return tok, true
}

// consumeLiteral reads the right-hand side of a comparison. A missing
// literal, at the end of input or before a combinator, is the empty string.
func (s *tokenStream) consumeLiteral() (literal, error) {
	tok, ok := s.peek()
	if !ok {
		return literal{}, nil
	}
	switch tok.kind {
	case tokenAnd, tokenOr, tokenRParen:
		return literal{}, nil
	case tokenString, tokenIdentifier:
		s.pos++
		return literal{raw: tok.raw}, nil
	case tokenNull:
		s.pos++
		return literal{null: true}, nil
	default:
		return literal{}, fmt.Errorf("visibility/expr: expected literal, got %q", tok.raw)
	}
}

func lookup(ctx visibility.Context, key string) (any, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}

	if strings.HasPrefix(strings.ToLower(key), "extras.") {
		return lookupMap(ctx.Extras, strings.TrimSpace(key[len("extras."):]))
	}
	return lookupMap(ctx.Values, key)
}

func lookupMap(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}

	// Exact match first so flattened keys like "backup.date" resolve.
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, false
		}
		switch typed := current.(type) {
		case map[string]any:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		default:
			return nil, false
		}
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
		return strings.TrimSpace(v) != ""
	}
	if n, ok := coerce.Number(value); ok {
		return n != 0
	}
	return !coerce.IsEmpty(value)
}
