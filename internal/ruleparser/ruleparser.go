// Package ruleparser turns a domain.RuleSpec's textual pattern into a
// regex.Expr[shift.Shift]. The grammar is a small regex algebra over
// shift codes: '+' for sum, '&' for intersection, implicit
// concatenation, '*' for Kleene star, and parentheses for grouping,
// with the usual precedence (star binds tightest, then concatenation,
// then '&', then '+'). Shift codes are resolved against a caller-
// supplied catalog so the parser never needs to know how shifts are
// stored.
package ruleparser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/wfplan-dev/wfplan-core/internal/corerr"
	"github.com/wfplan-dev/wfplan-core/internal/regex"
	"github.com/wfplan-dev/wfplan-core/internal/shift"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokPlus
	tokAmp
	tokStar
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

type lexer struct {
	runes []rune
	pos   int
}

func newLexer(s string) *lexer { return &lexer{runes: []rune(s)} }

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.runes) && unicode.IsSpace(l.runes[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.runes) {
		return token{kind: tokEOF}, nil
	}
	r := l.runes[l.pos]
	switch r {
	case '+':
		l.pos++
		return token{kind: tokPlus}, nil
	case '&':
		l.pos++
		return token{kind: tokAmp}, nil
	case '*':
		l.pos++
		return token{kind: tokStar}, nil
	case '(':
		l.pos++
		return token{kind: tokLParen}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen}, nil
	}
	if !isIdentRune(r) {
		return token{}, fmt.Errorf("unexpected character %q at offset %d: %w", r, l.pos, corerr.InvalidArgument)
	}
	start := l.pos
	for l.pos < len(l.runes) && isIdentRune(l.runes[l.pos]) {
		l.pos++
	}
	return token{kind: tokIdent, text: string(l.runes[start:l.pos])}, nil
}

// parser is a recursive-descent parser with one token of lookahead.
type parser struct {
	lex     *lexer
	lookhd  token
	catalog map[string]shift.Shift
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.lookhd = tok
	return nil
}

// Parse compiles pattern into a regex.Expr[shift.Shift], resolving bare
// shift-code identifiers against catalog (a map from shift.Code() to the
// shift.Shift it names, including "OFF"/whatever code the caller uses
// for rest).
func Parse(pattern string, catalog map[string]shift.Shift) (*regex.Expr[shift.Shift], error) {
	p := &parser{lex: newLexer(pattern), catalog: catalog}
	if err := p.advance(); err != nil {
		return nil, err
	}
	expr, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.lookhd.kind != tokEOF {
		return nil, fmt.Errorf("unexpected trailing input near %q: %w", p.lookhd.text, corerr.InvalidArgument)
	}
	return expr, nil
}

func (p *parser) parseSum() (*regex.Expr[shift.Shift], error) {
	terms := []*regex.Expr[shift.Shift]{}
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms = append(terms, first)
	for p.lookhd.kind == tokPlus {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	return regex.Sum(terms...), nil
}

func (p *parser) parseAnd() (*regex.Expr[shift.Shift], error) {
	terms := []*regex.Expr[shift.Shift]{}
	first, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	terms = append(terms, first)
	for p.lookhd.kind == tokAmp {
		if err := p.advance(); err != nil {
			return nil, err
		}
		next, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	return regex.And(terms...), nil
}

func (p *parser) startsAtom() bool {
	return p.lookhd.kind == tokIdent || p.lookhd.kind == tokLParen
}

func (p *parser) parseConcat() (*regex.Expr[shift.Shift], error) {
	terms := []*regex.Expr[shift.Shift]{}
	for p.startsAtom() {
		term, err := p.parseKst()
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("expected a shift code or '(': %w", corerr.InvalidArgument)
	}
	return regex.Prd(terms...), nil
}

func (p *parser) parseKst() (*regex.Expr[shift.Shift], error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.lookhd.kind == tokStar {
		if err := p.advance(); err != nil {
			return nil, err
		}
		atom = regex.Kst(atom)
	}
	return atom, nil
}

func (p *parser) parseAtom() (*regex.Expr[shift.Shift], error) {
	switch p.lookhd.kind {
	case tokIdent:
		code := p.lookhd.text
		sh, ok := p.catalog[code]
		if !ok {
			return nil, fmt.Errorf("unknown shift code %q: %w", code, corerr.InvalidArgument)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return regex.Lit(sh), nil
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.lookhd.kind != tokRParen {
			return nil, fmt.Errorf("expected ')': %w", corerr.InvalidArgument)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, fmt.Errorf("unexpected token near %q: %w", p.lookhd.text, corerr.InvalidArgument)
	}
}

// CatalogFromEntries builds the code->Shift lookup table Parse needs
// from a flat list of catalog entries (as loaded from domain.ShiftCatalogEntry rows).
func CatalogFromEntries(entries []shift.Shift) map[string]shift.Shift {
	out := make(map[string]shift.Shift, len(entries))
	for _, sh := range entries {
		out[sh.Code()] = sh
	}
	return out
}

// Describe renders expr back to its canonical textual form (debug/logging only).
func Describe(expr *regex.Expr[shift.Shift]) string {
	return strings.TrimSpace(expr.String())
}
