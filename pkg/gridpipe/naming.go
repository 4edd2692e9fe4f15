package gridpipe

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	// AssignmentSeparator separates the parameter assignments of a combination name.
	AssignmentSeparator = ";"
	// ValueSeparator separates a parameter name from its value in a combination name.
	ValueSeparator = "="
)

// Assignment is one parameter bound to the name of one of its candidate values.
type Assignment struct {
	Param string `yaml:"param"`
	Value string `yaml:"value"`
}

func (a Assignment) String() string {
	return a.Param + ValueSeparator + a.Value
}

// CombinationName encodes assignments as `p1=v1;p2=v2`.
// Two identical assignment prefixes always produce the same name.
func CombinationName(assignments ...Assignment) string {
	var sb strings.Builder

	for i, a := range assignments {
		if i > 0 {
			sb.WriteString(AssignmentSeparator)
		}

		sb.WriteString(a.Param)
		sb.WriteString(ValueSeparator)
		sb.WriteString(a.Value)
	}

	return sb.String()
}

// ParseCombinationName decodes a name built by CombinationName.
func ParseCombinationName(name string) ([]Assignment, error) {
	if name == "" {
		return []Assignment{}, nil
	}

	parts := strings.Split(name, AssignmentSeparator)
	res := make([]Assignment, len(parts))

	for i, part := range parts {
		param, value, ok := strings.Cut(part, ValueSeparator)
		if !ok || param == "" || strings.Contains(value, ValueSeparator) {
			return nil, errors.Wrapf(ErrMalformedName, "%q", name)
		}

		res[i] = Assignment{Param: param, Value: value}
	}

	return res, nil
}

func hasReserved(s string) bool {
	return strings.Contains(s, AssignmentSeparator) || strings.Contains(s, ValueSeparator)
}
