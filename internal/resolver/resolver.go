// Package resolver implements resolution refutation over predicate logic
// clauses with variable unification. Given a clause set that includes the
// negated goal, deriving the empty clause proves the goal.
package resolver

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Saturation stops after this many rounds so a non-refutable clause set
// cannot spin forever.
const maxIterations = 100

var (
	literalPattern = regexp.MustCompile(`^(\w+)\((.*?)\)`)
	orPattern      = regexp.MustCompile(`\s*∨\s*`)
)

// literal is one predicate application, possibly negated.
type literal struct {
	negated   bool
	predicate string
	args      []string
}

func parseLiteral(s string) literal {
	negated := strings.HasPrefix(s, "¬")
	s = strings.TrimSpace(strings.TrimLeft(s, "¬"))

	m := literalPattern.FindStringSubmatch(s)
	if m == nil {
		// Propositional literal without arguments
		return literal{negated: negated, predicate: s}
	}

	var args []string
	if m[2] != "" {
		for _, arg := range strings.Split(m[2], ",") {
			args = append(args, strings.TrimSpace(arg))
		}
	}

	return literal{negated: negated, predicate: m[1], args: args}
}

func (l literal) String() string {
	s := l.predicate
	if len(l.args) > 0 {
		s += "(" + strings.Join(l.args, ", ") + ")"
	}
	if l.negated {
		return "¬" + s
	}
	return s
}

func (l literal) equal(other literal) bool {
	if l.negated != other.negated || l.predicate != other.predicate || len(l.args) != len(other.args) {
		return false
	}
	for i := range l.args {
		if l.args[i] != other.args[i] {
			return false
		}
	}
	return true
}

// clause is a disjunction of literals. An empty clause is the contradiction.
type clause struct {
	literals []literal
}

func parseClause(s string) clause {
	var literals []literal
	for _, part := range orPattern.Split(strings.TrimSpace(s), -1) {
		if part == "" {
			continue
		}
		literals = append(literals, parseLiteral(part))
	}
	return clause{literals: literals}
}

func (c clause) String() string {
	parts := make([]string, len(c.literals))
	for i, l := range c.literals {
		parts[i] = l.String()
	}
	return strings.Join(parts, " ∨ ")
}

// key is an order-independent identity so the same clause is never derived
// twice.
func (c clause) key() string {
	parts := make([]string, len(c.literals))
	for i, l := range c.literals {
		parts[i] = l.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, " ∨ ")
}

// substitution maps variables to terms.
type substitution map[string]string

func (s substitution) apply(term string) string {
	if value, ok := s[term]; ok {
		return value
	}
	return term
}

// compose applies other to this substitution's values, then adds other's
// bindings for variables not already bound.
func (s substitution) compose(other substitution) substitution {
	out := make(substitution, len(s)+len(other))
	for variable, value := range s {
		out[variable] = other.apply(value)
	}
	for variable, value := range other {
		if _, ok := out[variable]; !ok {
			out[variable] = value
		}
	}
	return out
}

func (s substitution) String() string {
	if len(s) == 0 {
		return "{}"
	}
	pairs := make([]string, 0, len(s))
	for variable, value := range s {
		pairs = append(pairs, variable+"/"+value)
	}
	sort.Strings(pairs)
	return "{" + strings.Join(pairs, ", ") + "}"
}

// isVariable treats single lowercase letters (x, y, z) as variables;
// everything else is a constant.
func isVariable(term string) bool {
	return len(term) == 1 && term[0] >= 'a' && term[0] <= 'z'
}

// unify finds a substitution making two argument lists equal, or reports
// failure.
func unify(a, b []string, s substitution) (substitution, bool) {
	if s == nil {
		s = substitution{}
	}
	if len(a) != len(b) {
		return nil, false
	}
	if len(a) == 0 {
		return s, true
	}

	t1, t2 := a[0], b[0]

	if t1 == t2 {
		return unify(a[1:], b[1:], s)
	}

	if isVariable(t1) {
		if bound, ok := s[t1]; ok {
			rest := append([]string{bound}, a[1:]...)
			return unify(rest, b, s)
		}
		return unify(a[1:], b[1:], s.compose(substitution{t1: t2}))
	}

	if isVariable(t2) {
		return unify(b, a, s)
	}

	// Two distinct constants
	return nil, false
}

func (l literal) applied(s substitution) literal {
	if len(l.args) == 0 {
		return l
	}
	args := make([]string, len(l.args))
	for i, arg := range l.args {
		args[i] = s.apply(arg)
	}
	return literal{negated: l.negated, predicate: l.predicate, args: args}
}

// resolution is one resolvent derived from a pair of clauses.
type resolution struct {
	resolvent clause
	subst     substitution
	litA      string
	litB      string
}

// resolve derives every resolvent of two clauses: for each pair of
// complementary literals whose arguments unify, the remaining literals are
// merged under the substitution.
func resolve(c1, c2 clause) []resolution {
	var results []resolution

	for _, l1 := range c1.literals {
		for _, l2 := range c2.literals {
			if l1.negated == l2.negated || l1.predicate != l2.predicate {
				continue
			}

			subst, ok := unify(l1.args, l2.args, nil)
			if !ok {
				continue
			}

			var rest []literal
			seen := make(map[string]bool)
			keep := func(src clause, resolved literal) {
				for _, l := range src.literals {
					if l.equal(resolved) {
						continue
					}
					applied := l.applied(subst)
					if seen[applied.String()] {
						continue
					}
					seen[applied.String()] = true
					rest = append(rest, applied)
				}
			}
			keep(c1, l1)
			keep(c2, l2)

			results = append(results, resolution{
				resolvent: clause{literals: rest},
				subst:     subst,
				litA:      l1.String(),
				litB:      l2.String(),
			})
		}
	}

	return results
}

// Prove runs resolution refutation over the given formulas and reports
// whether a contradiction (the empty clause) was derived, together with a
// step-by-step proof log suitable for showing to users.
func Prove(formulas []string) (bool, []string) {
	var clauses []clause
	for _, formula := range formulas {
		if strings.TrimSpace(formula) == "" {
			continue
		}
		clauses = append(clauses, parseClause(formula))
	}

	log := []string{fmt.Sprintf("Initial clauses: %d", len(clauses))}

	ids := make(map[string]int)
	idOf := func(c clause) int {
		k := c.key()
		if _, ok := ids[k]; !ok {
			ids[k] = len(ids) + 1
		}
		return ids[k]
	}
	format := func(c clause) string {
		if len(c.literals) == 0 {
			return fmt.Sprintf("[#%d] empty clause (⊥)", idOf(c))
		}
		return fmt.Sprintf("[#%d] %s", idOf(c), c)
	}

	known := make(map[string]bool)
	var all []clause
	for _, c := range clauses {
		log = append(log, "  "+format(c))
		if !known[c.key()] {
			known[c.key()] = true
			all = append(all, c)
		}
	}

	fresh := append([]clause(nil), all...)
	step := 1

	for iteration := 0; iteration < maxIterations; iteration++ {
		current := fresh
		fresh = nil

		// Pair every known clause against the last round's derivations
		snapshot := append([]clause(nil), all...)

		for _, c1 := range snapshot {
			for _, c2 := range current {
				if c1.key() == c2.key() {
					continue
				}

				for _, r := range resolve(c1, c2) {
					if len(r.resolvent.literals) == 0 {
						log = append(log,
							"",
							fmt.Sprintf("Step %d: contradiction found!", step),
							fmt.Sprintf("  Clause 1: %s", format(c1)),
							fmt.Sprintf("  Clause 2: %s", format(c2)),
							fmt.Sprintf("  Unified %s on literals %q and %q", r.subst, r.litA, r.litB),
							fmt.Sprintf("  Result: %s (contradiction)", format(r.resolvent)),
						)
						return true, log
					}

					if known[r.resolvent.key()] {
						continue
					}
					known[r.resolvent.key()] = true
					all = append(all, r.resolvent)
					fresh = append(fresh, r.resolvent)

					log = append(log,
						"",
						fmt.Sprintf("Step %d: resolution", step),
						fmt.Sprintf("  Clause 1: %s", format(c1)),
						fmt.Sprintf("  Clause 2: %s", format(c2)),
						fmt.Sprintf("  Unified %s on literals %q and %q", r.subst, r.litA, r.litB),
						fmt.Sprintf("  Result: %s", format(r.resolvent)),
					)
					step++
				}
			}
		}

		if len(fresh) == 0 {
			log = append(log,
				"",
				fmt.Sprintf("No contradiction found after %d steps.", step-1),
				fmt.Sprintf("Total clauses derived: %d", len(all)),
			)
			return false, log
		}
	}

	log = append(log, "", fmt.Sprintf("Iteration limit (%d) reached; no contradiction found.", maxIterations))
	return false, log
}
