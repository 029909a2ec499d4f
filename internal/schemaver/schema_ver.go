package schemaver

import (
	"fmt"
	"strconv"
	"strings"
)

// SchemaVer follows SchemaVer semantics: MODEL.REVISION.ADDITION
type SchemaVer struct {
	Model    int // breaking changes
	Revision int // potentially-breaking changes
	Addition int // additions only
}

func New(model, revision, addition int) SchemaVer {
	return SchemaVer{
		Model:    model,
		Revision: revision,
		Addition: addition,
	}
}

// Parse accepts "1.2.3" as well as "v1.2.3".
func Parse(s string) (SchemaVer, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(s), "v")
	parts := strings.Split(cleaned, ".")
	if len(parts) != 3 {
		return SchemaVer{}, fmt.Errorf("invalid schema version format: %q", s)
	}

	var values [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return SchemaVer{}, fmt.Errorf("invalid schema version format: %q", s)
		}
		values[i] = v
	}

	if values[0] < 1 {
		return SchemaVer{}, fmt.Errorf("invalid schema version: model must be at least 1: %q", s)
	}

	return New(values[0], values[1], values[2]), nil
}

func (s SchemaVer) String() string {
	return fmt.Sprintf("v%d.%d.%d", s.Model, s.Revision, s.Addition)
}

func (s SchemaVer) LessThan(other SchemaVer) bool {
	if s.Model != other.Model {
		return s.Model < other.Model
	}

	if s.Revision != other.Revision {
		return s.Revision < other.Revision
	}

	return s.Addition < other.Addition
}

func (s SchemaVer) GreaterOrEqualTo(other SchemaVer) bool {
	return !s.LessThan(other)
}

// Compatible reports whether data written at version other can be read by code supporting s.
func (s SchemaVer) Compatible(other SchemaVer) bool {
	return s.Model == other.Model && s.GreaterOrEqualTo(other)
}
