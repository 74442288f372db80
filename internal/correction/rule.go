package correction

import (
	"fmt"

	"mend/internal/diag"
)

// Kind separates cursor-driven assists from diagnostic-driven fixes.
type Kind uint8

const (
	KindAssist Kind = iota
	KindFix
)

func (k Kind) String() string {
	if k == KindFix {
		return "quick-fix"
	}
	return "quick-assist"
}

// Rule is one independent proposal generator.
//
// Probe must be cheap and free of side effects, and must return true
// whenever Generate would produce something. Generate returns the drafts of
// its proposals, or nil when the rule turns out to be inapplicable; it never
// returns a partial edit.
type Rule struct {
	ID        string
	Kind      Kind
	Relevance int
	Probe     func(*Context) bool
	Generate  func(*Context) []*Draft
}

type ruleKey struct {
	kind Kind
	id   string
}

// Catalogue is the ordered set of rules plus the diagnostic dispatch table.
// It is built once and read-only afterwards.
type Catalogue struct {
	rules    []*Rule
	index    map[ruleKey]int
	dispatch map[diag.Code][]*Rule
	codes    []diag.Code
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{
		index:    make(map[ruleKey]int),
		dispatch: make(map[diag.Code][]*Rule),
	}
}

// Register appends r. Registration order breaks relevance ties.
func (c *Catalogue) Register(r *Rule) error {
	if r == nil || r.ID == "" || r.Probe == nil || r.Generate == nil {
		return fmt.Errorf("correction: incomplete rule %+v", r)
	}
	k := ruleKey{r.Kind, r.ID}
	if _, dup := c.index[k]; dup {
		return fmt.Errorf("correction: %s %q registered twice", r.Kind, r.ID)
	}
	c.index[k] = len(c.rules)
	c.rules = append(c.rules, r)
	return nil
}

// Dispatch maps code to the quick-fix rules ids, in order.
func (c *Catalogue) Dispatch(code diag.Code, ids ...string) error {
	if _, dup := c.dispatch[code]; dup {
		return fmt.Errorf("correction: %s dispatched twice", code.ID())
	}
	rules := make([]*Rule, 0, len(ids))
	for _, id := range ids {
		r := c.Lookup(KindFix, id)
		if r == nil {
			return fmt.Errorf("correction: %s dispatches to unknown quick-fix %q", code.ID(), id)
		}
		rules = append(rules, r)
	}
	c.dispatch[code] = rules
	c.codes = append(c.codes, code)
	return nil
}

// Lookup finds a rule by kind and id.
func (c *Catalogue) Lookup(kind Kind, id string) *Rule {
	if i, ok := c.index[ruleKey{kind, id}]; ok {
		return c.rules[i]
	}
	return nil
}

// Rules returns the rules in registration order.
func (c *Catalogue) Rules() []*Rule { return c.rules }

// Assists returns the quick-assist rules in registration order.
func (c *Catalogue) Assists() []*Rule {
	var out []*Rule
	for _, r := range c.rules {
		if r.Kind == KindAssist {
			out = append(out, r)
		}
	}
	return out
}

// RulesFor returns the quick-fix rules dispatched for code; nil when the
// code has no entry.
func (c *Catalogue) RulesFor(code diag.Code) []*Rule { return c.dispatch[code] }

// Codes returns the dispatched codes in table order.
func (c *Catalogue) Codes() []diag.Code { return c.codes }

// CodesFor returns the codes dispatching to the quick-fix id.
func (c *Catalogue) CodesFor(id string) []diag.Code {
	var out []diag.Code
	for _, code := range c.codes {
		for _, r := range c.dispatch[code] {
			if r.ID == id {
				out = append(out, code)
				break
			}
		}
	}
	return out
}

func (c *Catalogue) order(r *Rule) int { return c.index[ruleKey{r.Kind, r.ID}] }

func (r *Rule) relevance(s Settings) int {
	if v, ok := s.Relevance[r.ID]; ok {
		return v
	}
	return r.Relevance
}
