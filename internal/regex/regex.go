// Package regex implements the symbolic regular-expression algebra the
// planner's per-agent rules are built from: a sum type with normalizing
// smart constructors, structural equality and hashing, and Brzozowski
// derivatives. Every node is immutable once built and may be shared
// freely; construction never fails (see LetterOf for the one operation
// that can).
package regex

import (
	"fmt"
	"sort"

	"github.com/wfplan-dev/wfplan-core/internal/corerr"
	"github.com/wfplan-dev/wfplan-core/internal/letter"
)

// Kind tags the variant of an Expr node.
type Kind int

const (
	KindZero Kind = iota
	KindOne
	KindLit
	KindSum
	KindAnd
	KindPrd
	KindKst
)

func (k Kind) String() string {
	switch k {
	case KindZero:
		return "Zero"
	case KindOne:
		return "One"
	case KindLit:
		return "Lit"
	case KindSum:
		return "Sum"
	case KindAnd:
		return "And"
	case KindPrd:
		return "Prd"
	case KindKst:
		return "Kst"
	default:
		return "?"
	}
}

// Expr is a node of the regex algebra over letter type L. Children of a
// Sum/And are kept in a canonical (hash-then-structure) order so that
// two structurally-equal sets always compare equal position-by-position;
// children of a Prd preserve the caller's order; Kst keeps a single
// child.
type Expr[L letter.Interface[L]] struct {
	kind     Kind
	lit      L
	children []*Expr[L]
	hash     uint64
}

// salts mirror the original's hash_combine seeds: one constant per
// variant keeps a Lit('a') from colliding with a Sum/And/Prd/Kst wrapping
// the same child hash.
const (
	saltLit uint64 = 0x9e3779b97f4a7c15
	saltSum uint64 = 0xbf58476d1ce4e5b9
	saltAnd uint64 = 0x94d049bb133111eb
	saltPrd uint64 = 0xd6e8feb86659fd93
	saltKst uint64 = 0xa24baed4963ee407
	hashZero uint64 = 0x2545f4914f6cdd1d
	hashOne  uint64 = 0x27d4eb2f165667c5
)

func mix(h, v uint64) uint64 {
	h ^= v + 0x9e3779b97f4a7c15 + (h << 6) + (h >> 2)
	return h
}

// Zero is the empty-language regex (matches nothing).
func Zero[L letter.Interface[L]]() *Expr[L] {
	return &Expr[L]{kind: KindZero, hash: hashZero}
}

// One is the empty-word regex (matches only the empty word).
func One[L letter.Interface[L]]() *Expr[L] {
	return &Expr[L]{kind: KindOne, hash: hashOne}
}

// Lit builds a single-letter regex.
func Lit[L letter.Interface[L]](l L) *Expr[L] {
	return &Expr[L]{kind: KindLit, lit: l, hash: mix(saltLit, l.Hash())}
}

func lessExpr[L letter.Interface[L]](a, b *Expr[L]) bool {
	if a.hash != b.hash {
		return a.hash < b.hash
	}
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	switch a.kind {
	case KindLit:
		return a.lit.Less(b.lit)
	case KindKst:
		return lessExpr(a.children[0], b.children[0])
	default:
		n := len(a.children)
		if len(b.children) < n {
			n = len(b.children)
		}
		for i := 0; i < n; i++ {
			if Equal(a.children[i], b.children[i]) {
				continue
			}
			return lessExpr(a.children[i], b.children[i])
		}
		return len(a.children) < len(b.children)
	}
}

// canonicalSet flattens nested nodes of the same kind, drops every
// operand of the identity kind skip, dedups, and sorts into canonical
// order. It reports false when no operand is left.
func canonicalSet[L letter.Interface[L]](kind Kind, skip Kind, exprs []*Expr[L]) ([]*Expr[L], bool) {
	flat := make([]*Expr[L], 0, len(exprs))
	for _, e := range exprs {
		if e.kind == kind {
			flat = append(flat, e.children...)
			continue
		}
		if e.kind == skip {
			continue
		}
		flat = append(flat, e)
	}
	if len(flat) == 0 {
		return nil, false
	}
	sort.Slice(flat, func(i, j int) bool { return lessExpr(flat[i], flat[j]) })
	out := flat[:1]
	for _, e := range flat[1:] {
		if Equal(out[len(out)-1], e) {
			continue
		}
		out = append(out, e)
	}
	return out, true
}

func hashSet[L letter.Interface[L]](salt uint64, children []*Expr[L]) uint64 {
	h := uint64(len(children))
	for _, c := range children {
		h ^= c.hash
	}
	return mix(salt, h)
}

// Sum builds r1+r2+...+rn, normalizing per the algebra's Sum laws:
// Zero is the identity, duplicates collapse, nested sums flatten, and
// the result is order-insensitive.
func Sum[L letter.Interface[L]](exprs ...*Expr[L]) *Expr[L] {
	children, ok := canonicalSet[L](KindSum, KindZero, exprs)
	if !ok {
		return Zero[L]()
	}
	if len(children) == 1 {
		return children[0]
	}
	return &Expr[L]{kind: KindSum, children: children, hash: hashSet(saltSum, children)}
}

// And builds r1&r2&...&rn. Zero is absorbing for And (unlike Sum, where
// it is the identity); duplicates collapse and nested ands flatten.
func And[L letter.Interface[L]](exprs ...*Expr[L]) *Expr[L] {
	for _, e := range exprs {
		if e.kind == KindZero {
			return Zero[L]()
		}
	}
	children, ok := canonicalSet[L](KindAnd, -1, exprs)
	if !ok {
		return One[L]()
	}
	if len(children) == 1 {
		return children[0]
	}
	return &Expr[L]{kind: KindAnd, children: children, hash: hashSet(saltAnd, children)}
}

// Prd builds the ordered concatenation r1·r2·...·rn, normalizing per the
// algebra's product laws: Zero is absorbing, One is the identity, nested
// products flatten, and adjacent identical Kst(x)·Kst(x) collapse to a
// single Kst(x). The distributive law over Sum is intentionally NOT
// applied here (it would explode state counts); nothing in this module
// turns it on.
func Prd[L letter.Interface[L]](exprs ...*Expr[L]) *Expr[L] {
	flat := make([]*Expr[L], 0, len(exprs))
	for _, e := range exprs {
		if e.kind == KindZero {
			return Zero[L]()
		}
		if e.kind == KindOne {
			continue
		}
		if e.kind == KindPrd {
			flat = append(flat, e.children...)
			continue
		}
		flat = append(flat, e)
	}
	merged := make([]*Expr[L], 0, len(flat))
	for _, e := range flat {
		if n := len(merged); n > 0 && merged[n-1].kind == KindKst && e.kind == KindKst &&
			Equal(merged[n-1].children[0], e.children[0]) {
			continue
		}
		merged = append(merged, e)
	}
	if len(merged) == 0 {
		return One[L]()
	}
	if len(merged) == 1 {
		return merged[0]
	}
	h := uint64(0)
	for _, c := range merged {
		h = mix(h, c.hash)
	}
	return &Expr[L]{kind: KindPrd, children: merged, hash: mix(saltPrd, h)}
}

// Kst builds the Kleene star r*, normalizing Kst(One)=One, Kst(Zero)=One,
// and Kst(Kst r)=Kst r.
func Kst[L letter.Interface[L]](r *Expr[L]) *Expr[L] {
	switch r.kind {
	case KindOne:
		return r
	case KindZero:
		return One[L]()
	case KindKst:
		return r
	}
	return &Expr[L]{kind: KindKst, children: []*Expr[L]{r}, hash: mix(saltKst, r.hash)}
}

// Equal reports structural equality, order-insensitive for Sum/And
// children (which are always stored in canonical order by the smart
// constructors) and order-sensitive for Prd.
func Equal[L letter.Interface[L]](a, b *Expr[L]) bool {
	if a == b {
		return true
	}
	if a.hash != b.hash || a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindZero, KindOne:
		return true
	case KindLit:
		return a.lit.Equal(b.lit)
	case KindKst:
		return Equal(a.children[0], b.children[0])
	default: // Sum, And, Prd
		if len(a.children) != len(b.children) {
			return false
		}
		for i := range a.children {
			if !Equal(a.children[i], b.children[i]) {
				return false
			}
		}
		return true
	}
}

// Hash returns the node's cached structural hash.
func (e *Expr[L]) Hash() uint64 { return e.hash }

// Kind returns the node's variant tag.
func (e *Expr[L]) Kind() Kind { return e.kind }

// Nullable reports whether the empty word is in L(r).
func Nullable[L letter.Interface[L]](r *Expr[L]) bool {
	switch r.kind {
	case KindZero:
		return false
	case KindOne:
		return true
	case KindLit:
		return false
	case KindSum:
		for _, c := range r.children {
			if Nullable(c) {
				return true
			}
		}
		return false
	case KindAnd:
		for _, c := range r.children {
			if !Nullable(c) {
				return false
			}
		}
		return true
	case KindPrd:
		for _, c := range r.children {
			if !Nullable(c) {
				return false
			}
		}
		return true
	case KindKst:
		return true
	}
	return false
}

// Nu exposes nullability as a regex value: One if r is nullable, else Zero.
func Nu[L letter.Interface[L]](r *Expr[L]) *Expr[L] {
	if Nullable(r) {
		return One[L]()
	}
	return Zero[L]()
}

// Derivative computes the Brzozowski derivative of r with respect to a:
// the regex accepting w such that r accepts a·w.
func Derivative[L letter.Interface[L]](r *Expr[L], a L) *Expr[L] {
	switch r.kind {
	case KindZero, KindOne:
		return Zero[L]()
	case KindLit:
		if r.lit.Equal(a) {
			return One[L]()
		}
		return Zero[L]()
	case KindSum:
		parts := make([]*Expr[L], len(r.children))
		for i, c := range r.children {
			parts[i] = Derivative(c, a)
		}
		return Sum(parts...)
	case KindAnd:
		parts := make([]*Expr[L], 0, len(r.children))
		for _, c := range r.children {
			d := Derivative(c, a)
			if d.kind == KindZero {
				return Zero[L]()
			}
			parts = append(parts, d)
		}
		return And(parts...)
	case KindPrd:
		first := r.children[0]
		rest := r.children[1:]
		dFirst := Derivative(first, a)
		term1 := Prd(append([]*Expr[L]{dFirst}, rest...)...)
		if Nullable(first) {
			dRest := Derivative(Prd(rest...), a)
			return Sum(term1, dRest)
		}
		return term1
	case KindKst:
		body := r.children[0]
		return Prd(Derivative(body, a), r)
	}
	return Zero[L]()
}

// DerivativeWord folds Derivative over a word.
func DerivativeWord[L letter.Interface[L]](r *Expr[L], w []L) *Expr[L] {
	for _, a := range w {
		r = Derivative(r, a)
	}
	return r
}

// Match reports whether r accepts w.
func Match[L letter.Interface[L]](r *Expr[L], w []L) bool {
	return Nullable(DerivativeWord(r, w))
}

// Alphabet returns the set of letters appearing in any Lit descendant of
// r, in first-encountered order.
func Alphabet[L letter.Interface[L]](r *Expr[L]) []L {
	var out []L
	seen := func(l L) bool {
		for _, o := range out {
			if o.Equal(l) {
				return true
			}
		}
		return false
	}
	var walk func(*Expr[L])
	walk = func(e *Expr[L]) {
		switch e.kind {
		case KindLit:
			if !seen(e.lit) {
				out = append(out, e.lit)
			}
		case KindSum, KindAnd, KindPrd:
			for _, c := range e.children {
				walk(c)
			}
		case KindKst:
			walk(e.children[0])
		}
	}
	walk(r)
	return out
}

// LetterOf extracts the letter of a Lit node; any other kind is
// InvalidShape.
func LetterOf[L letter.Interface[L]](r *Expr[L]) (L, error) {
	if r.kind != KindLit {
		var zero L
		return zero, fmt.Errorf("letter_of on a %s node: %w", r.kind, corerr.InvalidShape)
	}
	return r.lit, nil
}

// String renders a debug form of the expression tree (not used for
// parsing; internal/ruleparser defines the textual rule syntax).
func (e *Expr[L]) String() string {
	switch e.kind {
	case KindZero:
		return "∅"
	case KindOne:
		return "ε"
	case KindLit:
		return fmt.Sprintf("%v", e.lit)
	case KindKst:
		return "(" + e.children[0].String() + ")*"
	case KindSum:
		return joinChildren(e.children, "+")
	case KindAnd:
		return joinChildren(e.children, "&")
	case KindPrd:
		return joinChildren(e.children, "·")
	}
	return "?"
}

func joinChildren[L letter.Interface[L]](children []*Expr[L], sep string) string {
	s := "("
	for i, c := range children {
		if i > 0 {
			s += sep
		}
		s += c.String()
	}
	return s + ")"
}
