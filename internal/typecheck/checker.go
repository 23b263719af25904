// Package typecheck assigns static types to expression trees.
//
// The checker walks an exprir tree bottom-up, installs a semantic type on
// every node and collects diagnostics. Like the CASE resolver it never
// stops at the first problem: every independent finding of a tree is
// reported in one pass. A subtree that failed poisons its parent so one
// defect does not cascade into follow-up diagnostics.
package typecheck

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/roach88/sqlcheck/internal/caseop"
	"github.com/roach88/sqlcheck/internal/catalog"
	"github.com/roach88/sqlcheck/internal/diag"
	"github.com/roach88/sqlcheck/internal/exprir"
	"github.com/roach88/sqlcheck/internal/ir"
)

// Result is the outcome of checking one expression.
type Result struct {
	// Type is the static type of the root. Zero when the root failed.
	Type ir.Type `json:"type"`

	// Diagnostics lists every finding, in walk order.
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
}

// OK reports whether the expression type-checked cleanly.
func (r Result) OK() bool {
	return len(r.Diagnostics) == 0
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = l
	}
}

// Checker type-checks expressions against a catalog.
// A Checker holds no per-call state and is safe for concurrent use.
type Checker struct {
	catalog    *catalog.Catalog
	classifier caseop.Classifier
	resolver   *caseop.Resolver
	logger     *slog.Logger
}

// New creates a checker. A nil catalog behaves as an empty one.
func New(cat *catalog.Catalog, classifier caseop.Classifier, opts ...Option) *Checker {
	if cat == nil {
		cat = catalog.New()
	}
	c := &Checker{
		catalog:    cat,
		classifier: classifier,
		resolver:   caseop.NewResolver(classifier),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check type-checks e. Structural defects are reported as parse
// diagnostics and stop the check before typing.
func (c *Checker) Check(e exprir.Expr) Result {
	if v := exprir.Validate(e); !v.Valid {
		diags := make([]diag.Diagnostic, 0, len(v.Problems))
		for _, p := range v.Problems {
			path, msg, _ := strings.Cut(p, ": ")
			if path == "<root>" {
				path = ""
			}
			diags = append(diags, diag.Diagnostic{Code: diag.CodeParse, Path: path, Message: msg})
		}
		c.logger.Debug("expression rejected", "problems", len(diags))
		return Result{Diagnostics: diags}
	}

	w := &walk{c: c}
	t, ok := w.typeOf("", e)
	res := Result{Diagnostics: w.diags}
	if ok {
		res.Type = t
	}
	c.logger.Debug("expression checked", "type", res.Type.String(), "diagnostics", len(res.Diagnostics))
	return res
}

// walk is the state of one Check call.
type walk struct {
	c     *Checker
	diags []diag.Diagnostic
}

func (w *walk) report(d diag.Diagnostic) {
	w.diags = append(w.diags, d)
}

// typeOf returns the static type of e and whether e and all of its
// children checked cleanly.
func (w *walk) typeOf(path string, e exprir.Expr) (ir.Type, bool) {
	switch n := e.(type) {
	case *exprir.Column:
		return w.column(path, n)
	case *exprir.Literal:
		if n.Type != "" {
			return w.c.classifier.Classify(n.Type), true
		}
		return ir.LiteralType(n.Value), true
	case *exprir.Compare:
		return w.compare(path, n)
	case *exprir.And:
		return w.booleanList(path, "and", n.Operands)
	case *exprir.Or:
		return w.booleanList(path, "or", n.Operands)
	case *exprir.Not:
		return w.booleanOperand(exprir.Join(path, "not"), n.Operand)
	case *exprir.IsNull:
		_, ok := w.typeOf(exprir.Join(path, "isnull"), n.Operand)
		return ir.TypeBoolean, ok
	case *exprir.Cast:
		_, ok := w.typeOf(exprir.Join(path, "cast"), n.Operand)
		return w.c.classifier.Classify(n.To), ok
	case *exprir.Case:
		return w.caseExpr(exprir.Join(path, "case"), n)
	default:
		// unreachable after exprir.Validate
		w.report(diag.New(diag.CodeParse, path, "unknown expression type %T", e))
		return ir.Type{}, false
	}
}

func (w *walk) column(path string, col *exprir.Column) (ir.Type, bool) {
	resolved, err := w.c.catalog.Resolve(col.Table, col.Name)
	if err != nil {
		code := diag.CodeGeneric
		switch {
		case errors.Is(err, catalog.ErrUnknownTable):
			code = diag.CodeUnknownTable
		case errors.Is(err, catalog.ErrUnknownColumn):
			code = diag.CodeUnknownColumn
		case errors.Is(err, catalog.ErrAmbiguousColumn):
			code = diag.CodeAmbiguousColumn
		}
		w.report(diag.Diagnostic{Code: code, Path: path, Message: err.Error()})
		return ir.Type{}, false
	}
	return w.c.classifier.Classify(resolved.Type), true
}

func (w *walk) compare(path string, cmp *exprir.Compare) (ir.Type, bool) {
	left, lok := w.typeOf(exprir.Join(path, "left"), cmp.Left)
	right, rok := w.typeOf(exprir.Join(path, "right"), cmp.Right)
	if !lok || !rok {
		return ir.TypeBoolean, false
	}
	if !comparable(left, right) {
		w.report(diag.New(diag.CodeIncomparable, path, "cannot compare %s with %s using %s", left, right, cmp.Op))
		return ir.TypeBoolean, false
	}
	return ir.TypeBoolean, true
}

// comparable allows comparisons within one family, and against NULL.
func comparable(a, b ir.Type) bool {
	return a.Family == b.Family || a == ir.TypeNull || b == ir.TypeNull
}

// isBoolean accepts BOOLEAN and the NULL literal type.
func isBoolean(t ir.Type) bool {
	return t == ir.TypeBoolean || t == ir.TypeNull
}

func (w *walk) booleanList(path, name string, operands []exprir.Expr) (ir.Type, bool) {
	ok := true
	for i, op := range operands {
		if _, opOK := w.booleanOperand(exprir.Index(exprir.Join(path, name), i), op); !opOK {
			ok = false
		}
	}
	return ir.TypeBoolean, ok
}

func (w *walk) booleanOperand(path string, e exprir.Expr) (ir.Type, bool) {
	t, ok := w.typeOf(path, e)
	if !ok {
		return ir.TypeBoolean, false
	}
	if !isBoolean(t) {
		w.report(diag.New(diag.CodeOperandNotBoolean, path, "operand must be BOOLEAN, got %s", t))
		return ir.TypeBoolean, false
	}
	return ir.TypeBoolean, true
}

// caseExpr types the conditions and branches of a CASE node, then lets the
// resolver decide the node's type. The node is walked in binding order
// (cond, then, ..., else). The binding handed to the resolver uses
// canonical type names, which the classifier maps back to the same types.
func (w *walk) caseExpr(path string, n *exprir.Case) (ir.Type, bool) {
	condsOK := true

	var operandType ir.Type
	operandOK := true
	if n.Operand != nil {
		operandType, operandOK = w.typeOf(exprir.Join(path, "operand"), n.Operand)
		condsOK = operandOK
	}

	ops := n.Operands()
	last := len(ops) - 1
	branchesOK := true
	binding := make(caseop.Operands, 0, len(ops))
	for i := 0; i < last; i += 2 {
		whenPath := exprir.Index(exprir.Join(path, "when"), i/2)
		condPath := exprir.Join(whenPath, "cond")

		cond := ops[i]
		if n.Operand != nil {
			// simple CASE: operand = value, with the operand typed once above
			cond = cond.(*exprir.Compare).Right
		}
		condType, ok := w.typeOf(condPath, cond)
		switch {
		case !ok:
			condsOK = false
		case n.Operand != nil:
			if operandOK && !comparable(operandType, condType) {
				w.report(diag.New(diag.CodeIncomparable, condPath, "cannot compare CASE operand %s with %s", operandType, condType))
				condsOK = false
			}
		case !isBoolean(condType):
			w.report(diag.New(diag.CodeConditionNotBoolean, condPath, "WHEN condition must be BOOLEAN, got %s", condType))
			condsOK = false
		}

		thenType, ok := w.typeOf(exprir.Join(whenPath, "then"), ops[i+1])
		branchesOK = branchesOK && ok
		binding = append(binding, ir.TypeBoolean.Raw(), thenType.Raw())
	}

	elseType, ok := w.typeOf(exprir.Join(path, "else"), ops[last])
	branchesOK = branchesOK && ok
	binding = append(binding, elseType.Raw())

	if !branchesOK {
		return ir.Type{}, false
	}

	t, err := w.c.resolver.InferReturnType(binding)
	if err != nil {
		w.report(diag.FromError(path, err))
		return ir.Type{}, false
	}
	return t, condsOK
}
