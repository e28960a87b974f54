// Package schema defines the parameter schema consumed by the validation
// engine: the backend-declared FieldSchema list describing the parameters of a
// service instance, plan, or binding, and the FormValue snapshot a user has
// entered against it. Each field is classified once (see Classify) so the
// validator, normalizer, and submission formatter agree on whether a field is
// a unit-bearing quantity without repeating name heuristics.
package schema
