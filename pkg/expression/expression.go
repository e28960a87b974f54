// Package expression evaluates the declarative comparison expressions carried
// by field schemas, such as ">=2&<=64" or "==1|==3|==5".
package expression

import (
	"math"
	"strings"

	"github.com/tkestack/paramcheck/pkg/schema"
	"github.com/tkestack/paramcheck/pkg/units"
)

// Operator is a comparison operator in a clause.
type Operator string

const (
	// OperatorLT represents "<".
	OperatorLT Operator = "<"
	// OperatorGT represents ">".
	OperatorGT Operator = ">"
	// OperatorLE represents "<=".
	OperatorLE Operator = "<="
	// OperatorGE represents ">=".
	OperatorGE Operator = ">="
	// OperatorEQ represents "==", also used when a clause has no operator.
	OperatorEQ Operator = "=="
)

// Key returns the short message key suffix of the operator ("lt", "ge", ...).
func (o Operator) Key() string {
	switch o {
	case OperatorLT:
		return "lt"
	case OperatorGT:
		return "gt"
	case OperatorLE:
		return "le"
	case OperatorGE:
		return "ge"
	default:
		return "eq"
	}
}

// Compare applies the operator to value and bound. NaN on either side never
// satisfies a comparison.
func (o Operator) Compare(value, bound float64) bool {
	switch o {
	case OperatorLT:
		return value < bound
	case OperatorGT:
		return value > bound
	case OperatorLE:
		return value <= bound
	case OperatorGE:
		return value >= bound
	default:
		return value == bound
	}
}

// Combinator joins the clauses of an expression.
type Combinator int

const (
	// And requires every clause; clauses are separated by "&".
	And Combinator = iota
	// Or requires at least one clause; clauses are separated by "|".
	Or
)

// String returns the separator of the combinator.
func (c Combinator) String() string {
	if c == Or {
		return "|"
	}
	return "&"
}

// Clause is one comparison of an expression.
type Clause struct {
	// Raw is the clause text as written, trimmed.
	Raw      string
	Operator Operator
	// Bound and Unit are the magnitude and unit the value is compared with.
	Bound string
	Unit  string
	valid bool
}

// Valid reports whether the clause matched the clause grammar.
func (c Clause) Valid() bool {
	return c.valid
}

// Expression is a parsed comparison expression.
type Expression struct {
	Raw        string
	Combinator Combinator
	Clauses    []Clause
}

// Empty reports whether the expression imposes no constraint.
func (e Expression) Empty() bool {
	return len(e.Clauses) == 0
}

// Parse splits raw on "|" when present, otherwise on "&", and parses every
// clause. A single expression never mixes both separators; when it does, the
// "&" pieces fail the clause grammar and count as violated.
func Parse(raw string) Expression {
	trimmed := strings.TrimSpace(raw)
	expr := Expression{Raw: trimmed}
	if trimmed == "" {
		return expr
	}

	sep := "&"
	if strings.Contains(trimmed, "|") {
		expr.Combinator = Or
		sep = "|"
	}

	for _, piece := range strings.Split(trimmed, sep) {
		piece = strings.TrimSpace(piece)
		clause := Clause{Raw: piece}
		if match := units.ParseClause(piece); !match.Empty() {
			clause.Operator = Operator(match.Operator)
			clause.Bound = match.Magnitude
			clause.Unit = match.Unit
			clause.valid = true
		}
		expr.Clauses = append(expr.Clauses, clause)
	}
	return expr
}

// ClauseOutcome is the verdict on one clause.
type ClauseOutcome struct {
	Clause Clause
	// Bound is the clause bound in the canonical basis; NaN when the clause
	// did not parse.
	Bound     float64
	Satisfied bool
}

// Outcome is the verdict on a whole expression.
type Outcome struct {
	Passed bool
	// Value is the subject value in the canonical basis; NaN when it did not
	// parse.
	Value      float64
	Combinator Combinator
	Clauses    []ClauseOutcome
}

// Violated returns the clauses that were not satisfied.
func (o Outcome) Violated() []ClauseOutcome {
	var out []ClauseOutcome
	for _, c := range o.Clauses {
		if !c.Satisfied {
			out = append(out, c)
		}
	}
	return out
}

// Evaluate parses expr and evaluates it against raw. See Expression.Evaluate.
func Evaluate(expr, raw string, class schema.Class) Outcome {
	return Parse(expr).Evaluate(raw, class)
}

// Evaluate checks raw against the expression using the canonical basis of
// class. An empty expression or an empty subject passes. A subject that does
// not parse as a number violates every clause, and so does a clause that
// does not parse.
func (e Expression) Evaluate(raw string, class schema.Class) Outcome {
	outcome := Outcome{Passed: true, Value: math.NaN(), Combinator: e.Combinator}
	subject := strings.TrimSpace(raw)
	if e.Empty() || subject == "" {
		return outcome
	}

	value, _ := units.NormalizeValue(class, subject)
	outcome.Value = value

	for _, clause := range e.Clauses {
		result := ClauseOutcome{Clause: clause, Bound: math.NaN()}
		if clause.valid {
			result.Bound = units.Normalize(class, clause.Bound, clause.Unit)
			result.Satisfied = clause.Operator.Compare(value, result.Bound)
		}
		outcome.Clauses = append(outcome.Clauses, result)
	}

	outcome.Passed = reduce(e.Combinator, outcome.Clauses)
	return outcome
}

// reduce combines clause verdicts: Or passes when any clause holds, And only
// when all hold. The console this engine replaces appears to have swapped the
// two (15 passing ">=1&<=10", 5 failing "==3|==5"); that reading is suspected,
// not confirmed, so treat it as a candidate defect there.
func reduce(combinator Combinator, clauses []ClauseOutcome) bool {
	if combinator == Or {
		for _, c := range clauses {
			if c.Satisfied {
				return true
			}
		}
		return false
	}
	for _, c := range clauses {
		if !c.Satisfied {
			return false
		}
	}
	return true
}
