package extractor

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Expr is a class-attribute expression. The set of shapes is closed: only the
// types in this package implement it.
type Expr interface {
	Pos() Span
	exprNode()
}

// StringLit is a plain string value.
type StringLit struct {
	Span
	Value string
}

// Conditional is a `cond ? a : b` expression.
type Conditional struct {
	Span
	Consequent Expr
	Alternate  Expr
}

// Call is a call whose callee is a plain function name, e.g. clsx(...).
type Call struct {
	Span
	Callee string
	Args   []Expr
}

// Template is a template literal. Quasis holds the raw literal segments and
// always has one more element than Exprs.
type Template struct {
	Span
	Quasis []string
	Exprs  []Expr
}

// Other is any expression shape not recognized above.
type Other struct {
	Span
}

// Pos returns the span itself.
func (s Span) Pos() Span { return s }

func (*StringLit) exprNode()   {}
func (*Conditional) exprNode() {}
func (*Call) exprNode()        {}
func (*Template) exprNode()    {}
func (*Other) exprNode()       {}

// Text returns the source text covered by e, or "" when the span does not fit.
func Text(e Expr, source string) string {
	if e == nil {
		return ""
	}
	s := e.Pos()
	if s.Start < 0 || s.End > len(source) || s.Start >= s.End {
		return ""
	}
	return source[s.Start:s.End]
}
