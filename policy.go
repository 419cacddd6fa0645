package wikidom

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/dpotapov/go-wikidom/token"
)

// MetaPolicy decides which meta markers stay real elements. A meta marker that is not kept is
// turned into a comment, so the tree builder cannot foster it out of a table.
//
// A marker is kept if its typeof matches one of TypeOfPrefixes, its property matches one of
// PropertyPrefixes, or one of Rules evaluates to true. A prefix ending in "/" matches any value
// starting with it; any other prefix matches the exact value or the value followed by "/".
type MetaPolicy struct {
	TypeOfPrefixes   []string
	PropertyPrefixes []string
	Rules            []*Rule
}

// DefaultMetaPolicy keeps reference markers, include/exclude region markers and page property
// (behavior switch) markers.
func DefaultMetaPolicy() *MetaPolicy {
	return &MetaPolicy{
		TypeOfPrefixes: []string{
			"mw:Extension/ref/Marker",
			"mw:Includes/IncludeOnly",
			"mw:Includes/NoInclude",
			"mw:Includes/OnlyInclude",
		},
		PropertyPrefixes: []string{
			"mw:PageProp/",
		},
	}
}

// Rule is a boolean expression over a meta marker. The expression sees the variables typeof,
// property and attrs (a map of attribute values), e.g.:
//
//	typeof startsWith "mw:Annotation/"
type Rule struct {
	Source string
	prog   *vm.Program
}

// metaEnv is the expression environment of a Rule.
type metaEnv struct {
	TypeOf   string            `expr:"typeof"`
	Property string            `expr:"property"`
	Attrs    map[string]string `expr:"attrs"`
}

// CompileRule compiles src into a Rule.
func CompileRule(src string) (*Rule, error) {
	prog, err := expr.Compile(src, expr.Env(metaEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile meta rule %q: %w", src, err)
	}
	return &Rule{Source: src, prog: prog}, nil
}

// WithRules returns a copy of p with rules compiled from srcs appended.
func (p *MetaPolicy) WithRules(srcs ...string) (*MetaPolicy, error) {
	np := &MetaPolicy{
		TypeOfPrefixes:   append([]string(nil), p.TypeOfPrefixes...),
		PropertyPrefixes: append([]string(nil), p.PropertyPrefixes...),
		Rules:            append([]*Rule(nil), p.Rules...),
	}
	for _, src := range srcs {
		r, err := CompileRule(src)
		if err != nil {
			return nil, err
		}
		np.Rules = append(np.Rules, r)
	}
	return np, nil
}

// Keep reports whether a meta marker with attrs must remain a real element. An error from a
// rule is returned along with the decision of the remaining rules.
func (p *MetaPolicy) Keep(attrs token.Attrs) (bool, error) {
	typeOf, _ := attrs.Get(AttrTypeOf)
	property, _ := attrs.Get(AttrProperty)

	for _, f := range strings.Fields(typeOf) {
		if matchesAny(f, p.TypeOfPrefixes) {
			return true, nil
		}
	}
	for _, f := range strings.Fields(property) {
		if matchesAny(f, p.PropertyPrefixes) {
			return true, nil
		}
	}
	if len(p.Rules) == 0 {
		return false, nil
	}

	env := metaEnv{TypeOf: typeOf, Property: property, Attrs: make(map[string]string, len(attrs))}
	for _, a := range attrs {
		if _, dup := env.Attrs[a.Key]; !dup {
			env.Attrs[a.Key] = a.Val
		}
	}

	var firstErr error
	for _, r := range p.Rules {
		out, err := expr.Run(r.prog, env)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("meta rule %q: %w", r.Source, err)
			}
			continue
		}
		if keep, _ := out.(bool); keep {
			return true, firstErr
		}
	}
	return false, firstErr
}

func matchesAny(v string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasSuffix(prefix, "/") {
			if strings.HasPrefix(v, prefix) {
				return true
			}
			continue
		}
		if v == prefix || strings.HasPrefix(v, prefix+"/") {
			return true
		}
	}
	return false
}
