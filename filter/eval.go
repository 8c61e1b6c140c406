package filter

import (
	"strconv"
	"strings"

	"github.com/slpgo/slpd/slp"
)

type andFilter []Filter

func (f andFilter) Match(attrs slp.Attributes) bool {
	for _, sub := range f {
		if !sub.Match(attrs) {
			return false
		}
	}
	return true
}

type orFilter []Filter

func (f orFilter) Match(attrs slp.Attributes) bool {
	for _, sub := range f {
		if sub.Match(attrs) {
			return true
		}
	}
	return false
}

type notFilter struct {
	inner Filter
}

func (f notFilter) Match(attrs slp.Attributes) bool {
	return !f.inner.Match(attrs)
}

type presenceFilter struct {
	tag string
}

func (f presenceFilter) Match(attrs slp.Attributes) bool {
	return attrs.Has(f.tag)
}

// equalsFilter implements "(tag=value)", including LDAPv3 substring
// wildcards ('*') and matching against a bare presence flag only when the
// compared value parses as boolean true under strconv.ParseBool ("true",
// "TRUE", "t", "1", ...): a flag attribute behaves like a single
// boolean-true value for equality purposes.
type equalsFilter struct {
	tag   string
	value string
}

func (f equalsFilter) Match(attrs slp.Attributes) bool {
	if attrs.IsFlag(f.tag) {
		b, err := strconv.ParseBool(f.value)
		return err == nil && b
	}
	for _, v := range attrs.Values(f.tag) {
		if valueEquals(v, f.value) {
			return true
		}
	}
	return false
}

func valueEquals(v slp.Value, want string) bool {
	switch v.Type {
	case slp.ValueInteger:
		n, err := strconv.ParseInt(want, 10, 64)
		return err == nil && v.Int == n
	case slp.ValueBoolean:
		b, err := strconv.ParseBool(want)
		return err == nil && v.Bool == b
	default:
		if strings.Contains(want, "*") {
			return matchWildcard(want, v.String())
		}
		return strings.EqualFold(v.String(), want)
	}
}

// matchWildcard implements LDAPv3 substring matching: '*' matches any
// (possibly empty) run of characters, case-insensitively.
func matchWildcard(pattern, value string) bool {
	pattern = strings.ToLower(pattern)
	value = strings.ToLower(value)
	parts := strings.Split(pattern, "*")

	if !strings.Contains(pattern, "*") {
		return pattern == value
	}

	rest := value
	for i, part := range parts {
		if part == "" {
			continue
		}
		switch {
		case i == 0:
			if !strings.HasPrefix(rest, part) {
				return false
			}
			rest = rest[len(part):]
		case i == len(parts)-1:
			return strings.HasSuffix(rest, part)
		default:
			idx := strings.Index(rest, part)
			if idx < 0 {
				return false
			}
			rest = rest[idx+len(part):]
		}
	}
	return true
}

type compareOp int

const (
	compareLE compareOp = iota
	compareGE
)

// comparisonFilter implements "(tag<=v)" / "(tag>=v)", defined only for
// integers per §4.2.
type comparisonFilter struct {
	tag string
	n   int64
	op  compareOp
}

func newComparison(tag, value string, op compareOp) (Filter, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return nil, err
	}
	return comparisonFilter{tag: strings.TrimSpace(tag), n: n, op: op}, nil
}

func (f comparisonFilter) Match(attrs slp.Attributes) bool {
	for _, v := range attrs.Values(f.tag) {
		if v.Type != slp.ValueInteger {
			continue
		}
		switch f.op {
		case compareLE:
			if v.Int <= f.n {
				return true
			}
		case compareGE:
			if v.Int >= f.n {
				return true
			}
		}
	}
	return false
}
