package api

import "strings"

// Filter is an OData $filter expression as accepted by WSG.
type Filter string

// Quote renders s as an OData string literal. Embedded single quotes are
// doubled so caller input cannot terminate the literal early.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Eq compares a property against a string literal.
func Eq(property, value string) Filter {
	return Filter(property + " eq " + Quote(value))
}

// IsNull matches instances whose property is null.
func IsNull(property string) Filter {
	return Filter(property + " eq null")
}

// Contains matches instances whose property contains value.
func Contains(property, value string) Filter {
	return Filter("contains(" + property + "," + Quote(value) + ")")
}

// And joins filters with the "and" operator, skipping empty ones.
func And(filters ...Filter) Filter {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		if f != "" {
			parts = append(parts, string(f))
		}
	}
	return Filter(strings.Join(parts, " and "))
}
