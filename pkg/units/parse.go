package units

import "regexp"

// Operators recognised at the head of a validator clause. Longer operators
// are listed first so "<=" is not read as "<".
const operatorPattern = `(<=|>=|==|<|>)`

// magnitudeUnitPattern is the sub-grammar shared by values and clauses: a
// signed decimal (optionally exponential) followed by an alphabetic unit.
const magnitudeUnitPattern = `([+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)\s*([a-zA-Z]*)`

var (
	valueGrammar  = regexp.MustCompile(`^\s*` + magnitudeUnitPattern + `\s*$`)
	clauseGrammar = regexp.MustCompile(`^\s*` + operatorPattern + `?\s*` + magnitudeUnitPattern + `\s*$`)
)

// Match is the result of parsing a value or clause. The zero Match is the
// empty match: callers treat it as "no constraint", not as an error.
type Match struct {
	// Operator is set for clause matches only and defaults to "==".
	Operator  string
	Magnitude string
	Unit      string
	matched   bool
}

// Empty reports whether the input did not match the grammar.
func (m Match) Empty() bool {
	return !m.matched
}

// ParseValue parses a plain field value such as "512Mi" or "2".
func ParseValue(raw string) Match {
	groups := valueGrammar.FindStringSubmatch(raw)
	if groups == nil {
		return Match{}
	}
	return Match{Magnitude: groups[1], Unit: groups[2], matched: true}
}

// ParseClause parses one validator clause such as ">=2c" or "<= 4000m". An
// absent operator defaults to "==".
func ParseClause(raw string) Match {
	groups := clauseGrammar.FindStringSubmatch(raw)
	if groups == nil {
		return Match{}
	}
	op := groups[1]
	if op == "" {
		op = "=="
	}
	return Match{Operator: op, Magnitude: groups[2], Unit: groups[3], matched: true}
}
