package field

import (
	"strconv"
	"strings"
)

// Prefixes and suffixes of the field name grammar.
const (
	skipPrefix     = '?'
	appendPrefix   = '+'
	indirectPrefix = '&'
	greedySuffix   = "->"
	orderSeparator = '/'
)

// MaxOrder is the largest /N append order. Larger orders are clamped to it.
const MaxOrder = 1<<16 - 1

// Spec is the parsed content of one %{...} token.
type Spec struct {
	Kind Kind
	Name string

	// Order is the explicit /N suffix of an Append field, 0 otherwise.
	Order int

	// GreedyNext is set by the -> suffix: the delimiter after the field may
	// repeat.
	GreedyNext bool
}

// ParseSpec parses the text between %{ and }.
//
// Grammar:
//
//	''                  Skip (anonymous)
//	'?' name? suffix?   Skip
//	'+' name suffix?    Append
//	'&' name suffix?    Indirect
//	name suffix?        Normal
//
//	suffix := '/' digits | '->' | '/' digits '->' | '->' '/' digits
//
// A Normal spec whose name is empty once its suffixes are removed is an
// anonymous Skip.
func ParseSpec(raw string) (Spec, error) {
	if raw == "" {
		return Spec{Kind: Skip}, nil
	}
	if strings.HasPrefix(raw, "+&") || strings.HasPrefix(raw, "&+") {
		return Spec{}, &SyntaxError{Spec: raw, Err: ErrMixedPrefix}
	}

	spec := Spec{Kind: Normal}
	body := raw
	switch raw[0] {
	case skipPrefix:
		spec.Kind = Skip
		body = raw[1:]
	case appendPrefix:
		spec.Kind = Append
		body = raw[1:]
	case indirectPrefix:
		spec.Kind = Indirect
		body = raw[1:]
	}

	body, order, greedy, err := stripSuffixes(body)
	if err != nil {
		return Spec{}, &SyntaxError{Spec: raw, Err: err}
	}
	spec.Name = body
	spec.GreedyNext = greedy
	if spec.Kind == Append {
		spec.Order = order
	}

	if body == "" {
		switch spec.Kind {
		case Append, Indirect:
			return Spec{}, &SyntaxError{Spec: raw, Err: ErrPrefixWithoutName}
		case Normal:
			spec.Kind = Skip
		}
	}
	return spec, nil
}

// stripSuffixes removes a trailing "->" and a trailing "/digits", each at
// most once and in either order.
func stripSuffixes(body string) (name string, order int, greedy bool, err error) {
	hasOrder := false
	for {
		if !greedy && strings.HasSuffix(body, greedySuffix) {
			greedy = true
			body = body[:len(body)-len(greedySuffix)]
			continue
		}
		if !hasOrder {
			if i := strings.LastIndexByte(body, orderSeparator); i >= 0 && isDigits(body[i+1:]) {
				n, convErr := strconv.Atoi(body[i+1:])
				if convErr != nil {
					return "", 0, false, ErrInvalidOrder
				}
				order = min(n, MaxOrder)
				hasOrder = true
				body = body[:i]
				continue
			}
		}
		return body, order, greedy, nil
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders the spec back into field syntax.
func (s Spec) String() string {
	var sb strings.Builder
	switch s.Kind {
	case Skip:
		if s.Name != "" {
			sb.WriteByte(skipPrefix)
		}
	case Append:
		sb.WriteByte(appendPrefix)
	case Indirect:
		sb.WriteByte(indirectPrefix)
	}
	sb.WriteString(s.Name)
	if s.Order > 0 {
		sb.WriteByte(orderSeparator)
		sb.WriteString(strconv.Itoa(s.Order))
	}
	if s.GreedyNext {
		sb.WriteString(greedySuffix)
	}
	return sb.String()
}
