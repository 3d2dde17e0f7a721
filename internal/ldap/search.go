// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import (
	"strings"
)

// SearchScope represents the scope of a search operation
type SearchScope int

// Search scopes per RFC 4511 Section 4.5.1.2
const (
	ScopeBaseObject   SearchScope = 0
	ScopeSingleLevel  SearchScope = 1
	ScopeWholeSubtree SearchScope = 2
)

// String returns the string representation of the scope
func (s SearchScope) String() string {
	switch s {
	case ScopeBaseObject:
		return "base"
	case ScopeSingleLevel:
		return "one"
	case ScopeWholeSubtree:
		return "sub"
	default:
		return "unknown"
	}
}

// DerefAliases represents how aliases are dereferenced during search
type DerefAliases int

// Alias dereferencing options per RFC 4511 Section 4.5.1.3
const (
	DerefNever          DerefAliases = 0
	DerefInSearching    DerefAliases = 1
	DerefFindingBaseObj DerefAliases = 2
	DerefAlways         DerefAliases = 3
)

// SearchRequest represents an LDAP Search Request.
//
//	SearchRequest ::= [APPLICATION 3] SEQUENCE {
//	    baseObject      LDAPDN,
//	    scope           ENUMERATED { ... },
//	    derefAliases    ENUMERATED { ... },
//	    sizeLimit       INTEGER (0 ..  maxInt),
//	    timeLimit       INTEGER (0 ..  maxInt),
//	    typesOnly       BOOLEAN,
//	    filter          Filter,
//	    attributes      AttributeSelection }
type SearchRequest struct {
	BaseObject   string
	Scope        SearchScope
	DerefAliases DerefAliases
	SizeLimit    int
	TimeLimit    int
	TypesOnly    bool
	Filter       *Filter
	Attributes   []string
}

// Type implements ProtocolOp.
func (*SearchRequest) Type() OperationType { return ApplicationSearchRequest }

// FilterType is the context tag number of a Filter CHOICE alternative.
type FilterType int

// Filter choices per RFC 4511 Section 4.5.1.7
const (
	FilterAnd             FilterType = 0 // [0] SET OF Filter
	FilterOr              FilterType = 1 // [1] SET OF Filter
	FilterNot             FilterType = 2 // [2] Filter
	FilterEqualityMatch   FilterType = 3 // [3] AttributeValueAssertion
	FilterSubstrings      FilterType = 4 // [4] SubstringFilter
	FilterGreaterOrEqual  FilterType = 5 // [5] AttributeValueAssertion
	FilterLessOrEqual     FilterType = 6 // [6] AttributeValueAssertion
	FilterPresent         FilterType = 7 // [7] AttributeDescription
	FilterApproxMatch     FilterType = 8 // [8] AttributeValueAssertion
	FilterExtensibleMatch FilterType = 9 // [9] MatchingRuleAssertion
)

// Substring choices inside a SubstringFilter
const (
	SubstringInitial = 0
	SubstringAny     = 1
	SubstringFinal   = 2
)

// Filter is a node of a search filter tree.
type Filter struct {
	Type FilterType
	// Children holds the operands of AND and OR
	Children []*Filter
	// Child holds the operand of NOT
	Child *Filter
	// Attribute is used by the attribute value assertions, present and substrings
	Attribute string
	// Value is the assertion value of the attribute value assertions
	Value []byte
	// Substrings is used by FilterSubstrings
	Substrings *Substrings
	// Extensible is used by FilterExtensibleMatch
	Extensible *ExtensibleMatch
}

// Substrings holds the components of a substrings filter. Initial and Final
// are nil when absent.
//
//	substrings SEQUENCE SIZE (1..MAX) OF substring CHOICE {
//	    initial [0] AssertionValue,  -- can occur at most once
//	    any     [1] AssertionValue,
//	    final   [2] AssertionValue } -- can occur at most once
type Substrings struct {
	Initial []byte
	Any     [][]byte
	Final   []byte
}

// ExtensibleMatch holds a MatchingRuleAssertion.
//
//	MatchingRuleAssertion ::= SEQUENCE {
//	    matchingRule    [1] MatchingRuleId OPTIONAL,
//	    type            [2] AttributeDescription OPTIONAL,
//	    matchValue      [3] AssertionValue,
//	    dnAttributes    [4] BOOLEAN DEFAULT FALSE }
type ExtensibleMatch struct {
	MatchingRule string
	Type         string
	MatchValue   []byte
	DNAttributes bool
}

// String renders the filter in the RFC 4515 string form.
func (f *Filter) String() string {
	var sb strings.Builder
	f.writeTo(&sb)
	return sb.String()
}

func (f *Filter) writeTo(sb *strings.Builder) {
	if f == nil {
		return
	}
	sb.WriteByte('(')
	switch f.Type {
	case FilterAnd, FilterOr:
		if f.Type == FilterAnd {
			sb.WriteByte('&')
		} else {
			sb.WriteByte('|')
		}
		for _, c := range f.Children {
			c.writeTo(sb)
		}
	case FilterNot:
		sb.WriteByte('!')
		f.Child.writeTo(sb)
	case FilterEqualityMatch:
		writeAssertion(sb, f.Attribute, "=", f.Value)
	case FilterGreaterOrEqual:
		writeAssertion(sb, f.Attribute, ">=", f.Value)
	case FilterLessOrEqual:
		writeAssertion(sb, f.Attribute, "<=", f.Value)
	case FilterApproxMatch:
		writeAssertion(sb, f.Attribute, "~=", f.Value)
	case FilterPresent:
		sb.WriteString(f.Attribute)
		sb.WriteString("=*")
	case FilterSubstrings:
		sb.WriteString(f.Attribute)
		sb.WriteByte('=')
		if s := f.Substrings; s != nil {
			escapeValue(sb, s.Initial)
			sb.WriteByte('*')
			for _, a := range s.Any {
				escapeValue(sb, a)
				sb.WriteByte('*')
			}
			escapeValue(sb, s.Final)
		}
	case FilterExtensibleMatch:
		if x := f.Extensible; x != nil {
			sb.WriteString(x.Type)
			if x.DNAttributes {
				sb.WriteString(":dn")
			}
			if x.MatchingRule != "" {
				sb.WriteByte(':')
				sb.WriteString(x.MatchingRule)
			}
			sb.WriteString(":=")
			escapeValue(sb, x.MatchValue)
		}
	}
	sb.WriteByte(')')
}

func writeAssertion(sb *strings.Builder, attr, op string, value []byte) {
	sb.WriteString(attr)
	sb.WriteString(op)
	escapeValue(sb, value)
}

// escapeValue applies the RFC 4515 value escaping.
func escapeValue(sb *strings.Builder, v []byte) {
	const hex = "0123456789abcdef"
	for _, b := range v {
		switch {
		case b == '*' || b == '(' || b == ')' || b == '\\' || b == 0 || b >= 0x80:
			sb.WriteByte('\\')
			sb.WriteByte(hex[b>>4])
			sb.WriteByte(hex[b&0x0F])
		default:
			sb.WriteByte(b)
		}
	}
}
