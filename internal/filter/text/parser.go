// Package text reads and writes filters in a compact infix syntax:
//
//	disease.name = "Monkeypox" OR (totalDeath >= 10 AND localization.country LIKE 'Po%')
//
// A parsed filter is an ordinary filter.ConditionGroup and goes through the
// same validation and compilation as the JSON form.
package text

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atlekbai/casewatch/internal/filter"
)

// Parse parses a textual filter. Blank input yields an empty group, which
// compiles to "no filter".
func Parse(input string) (*filter.ConditionGroup, error) {
	p := &parser{lexer: NewLexer(input)}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == TokEOF {
		return &filter.ConditionGroup{Conditions: []filter.Node{}}, nil
	}

	g, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	// Ensure we consumed everything.
	tok, err = p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind != TokEOF {
		return nil, p.errorf(tok.Pos, "unexpected %s, expected end of filter", tok.Kind)
	}
	return g, nil
}

type parser struct {
	lexer *Lexer
}

// parseExpr: term { ("AND" | "OR") term }
func (p *parser) parseExpr(depth int) (*filter.ConditionGroup, error) {
	if depth > filter.MaxDepth {
		tok, _ := p.peek()
		return nil, p.errorf(tok.Pos, "nesting deeper than %d levels", filter.MaxDepth)
	}

	g := &filter.ConditionGroup{Conditions: []filter.Node{}}
	var op filter.LogicOperator
	for {
		n, err := p.parseTerm(op, depth)
		if err != nil {
			return nil, err
		}
		g.Conditions = append(g.Conditions, n)

		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case TokAnd:
			op = filter.And
		case TokOr:
			op = filter.Or
		default:
			return g, nil
		}
		p.advance()
	}
}

// parseTerm: "(" expr ")" | field op value
func (p *parser) parseTerm(op filter.LogicOperator, depth int) (filter.Node, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == TokLParen {
		p.advance()
		sub, err := p.parseExpr(depth + 1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		sub.LogicOperator = op
		return sub, nil
	}

	field, err := p.parseField()
	if err != nil {
		return nil, err
	}
	cmp, err := p.parseOperator()
	if err != nil {
		return nil, err
	}
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &filter.Condition{LogicOperator: op, Field: field, ComparisonOperator: cmp, Value: val}, nil
}

// parseField: ident { "." ident }
func (p *parser) parseField() (string, error) {
	tok, err := p.lexer.Next()
	if err != nil {
		return "", err
	}
	if tok.Kind != TokIdent {
		return "", p.errorf(tok.Pos, "expected field name, got %s", tok.Kind)
	}
	parts := []string{tok.Lit}
	for {
		next, err := p.peek()
		if err != nil {
			return "", err
		}
		if next.Kind != TokDot {
			break
		}
		p.advance()
		seg, err := p.lexer.Next()
		if err != nil {
			return "", err
		}
		if seg.Kind != TokIdent {
			return "", p.errorf(seg.Pos, "expected field name after '.', got %s", seg.Kind)
		}
		parts = append(parts, seg.Lit)
	}
	return strings.Join(parts, "."), nil
}

func (p *parser) parseOperator() (filter.ComparisonOperator, error) {
	tok, err := p.lexer.Next()
	if err != nil {
		return "", err
	}
	switch tok.Kind {
	case TokEq:
		return filter.Eq, nil
	case TokNeq:
		return filter.Neq, nil
	case TokGt:
		return filter.Gt, nil
	case TokGte:
		return filter.Gte, nil
	case TokLt:
		return filter.Lt, nil
	case TokLte:
		return filter.Lte, nil
	case TokLike:
		return filter.Like, nil
	case TokNot:
		if err := p.expect(TokLike); err != nil {
			return "", err
		}
		return filter.NotLike, nil
	default:
		return "", p.errorf(tok.Pos, "expected comparison operator, got %s", tok.Kind)
	}
}

// parseValue: string | number | "-" number
func (p *parser) parseValue() (filter.Value, error) {
	tok, err := p.lexer.Next()
	if err != nil {
		return filter.Value{}, err
	}
	switch tok.Kind {
	case TokString:
		return filter.StringValue(tok.Lit), nil
	case TokNumber:
		return p.number(tok.Lit, tok.Pos)
	case TokMinus:
		num, err := p.lexer.Next()
		if err != nil {
			return filter.Value{}, err
		}
		if num.Kind != TokNumber {
			return filter.Value{}, p.errorf(num.Pos, "expected number after '-', got %s", num.Kind)
		}
		return p.number("-"+num.Lit, tok.Pos)
	default:
		return filter.Value{}, p.errorf(tok.Pos, "expected value, got %s", tok.Kind)
	}
}

func (p *parser) number(lit string, pos int) (filter.Value, error) {
	if strings.Contains(lit, ".") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return filter.Value{}, p.errorf(pos, "invalid number %s", lit)
		}
		return filter.FloatValue(f), nil
	}
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return filter.Value{}, p.errorf(pos, "integer %s out of range", lit)
	}
	return filter.IntValue(n), nil
}

// --- Helpers ---

func (p *parser) peek() (Token, error) {
	return p.lexer.Peek()
}

func (p *parser) advance() {
	p.lexer.Next() //nolint:errcheck
}

func (p *parser) expect(kind TokenKind) error {
	tok, err := p.lexer.Next()
	if err != nil {
		return err
	}
	if tok.Kind != kind {
		return p.errorf(tok.Pos, "expected %s, got %s", kind, tok.Kind)
	}
	return nil
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return fmt.Errorf("%w: parse error at position %d: %s", ErrSyntax, pos, fmt.Sprintf(format, args...))
}
