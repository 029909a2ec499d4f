package v1

import (
	"fmt"
	"strings"
)

// CweKind discriminates the variant carried by a CweNode.
type CweKind string

const (
	CweKindBase     CweKind = "base"
	CweKindView     CweKind = "view"
	CweKindCategory CweKind = "category"
	CweKindWeakness CweKind = "weakness"
)

// MappingUsage conveys whether a CWE entry may be used when mapping a finding to a weakness (see the
// "Vulnerability Mapping Notes" in the MITRE CWE catalog)
type MappingUsage string

const (
	UnknownMappingUsage MappingUsage = ""

	MappingAllowed           MappingUsage = "allowed"
	MappingAllowedWithReview MappingUsage = "allowed_with_review"
	MappingDiscouraged       MappingUsage = "discouraged"
	MappingProhibited        MappingUsage = "prohibited"
)

// ViewType describes how the members of a CWE view are selected.
type ViewType string

const (
	ViewTypeGraph         ViewType = "graph"
	ViewTypeExplicitSlice ViewType = "explicit_slice"
	ViewTypeImplicitSlice ViewType = "implicit_slice"
)

type CategoryStatus string

const (
	UnknownCategoryStatus CategoryStatus = ""

	CategoryDraft      CategoryStatus = "draft"
	CategoryIncomplete CategoryStatus = "incomplete"
	CategoryObsolete   CategoryStatus = "obsolete"
	CategoryDeprecated CategoryStatus = "deprecated"
)

type WeaknessStatus string

const (
	UnknownWeaknessStatus WeaknessStatus = ""

	WeaknessDraft      WeaknessStatus = "draft"
	WeaknessStable     WeaknessStatus = "stable"
	WeaknessDeprecated WeaknessStatus = "deprecated"
	WeaknessIncomplete WeaknessStatus = "incomplete"
)

// Abstraction is the level of abstraction of a weakness, from the most abstract (pillar) to the most specific (variant).
type Abstraction string

const (
	UnknownAbstraction Abstraction = ""

	AbstractionPillar   Abstraction = "pillar"
	AbstractionClass    Abstraction = "class_kind"
	AbstractionBase     Abstraction = "base"
	AbstractionVariant  Abstraction = "variant"
	AbstractionCompound Abstraction = "compound"
)

// RelationshipNature is the meaning of a directed edge between two CWE nodes.
type RelationshipNature string

const (
	NatureChildOf         RelationshipNature = "child_of"
	NatureMemberOf        RelationshipNature = "member_of"
	NatureMemberOfPrimary RelationshipNature = "member_of_primary"
	NatureParentOf        RelationshipNature = "parent_of"
	NatureDependsOn       RelationshipNature = "depends_on"
	NatureBelongsTo       RelationshipNature = "belongs_to"
)

type Ordinal string

const (
	OrdinalPrimary Ordinal = "primary"
)

// ParseMappingUsage normalizes catalog usage values such as "Allowed-with-Review".
func ParseMappingUsage(s string) (MappingUsage, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	switch MappingUsage(normalized) {
	case MappingAllowed, MappingAllowedWithReview, MappingDiscouraged, MappingProhibited:
		return MappingUsage(normalized), nil
	}
	return UnknownMappingUsage, fmt.Errorf("unknown mapping usage: %q", s)
}

func ParseAbstraction(s string) (Abstraction, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch normalized {
	case "class":
		return AbstractionClass, nil
	case string(AbstractionPillar), string(AbstractionBase), string(AbstractionVariant), string(AbstractionCompound):
		return Abstraction(normalized), nil
	}
	return UnknownAbstraction, fmt.Errorf("unknown abstraction: %q", s)
}

func ParseWeaknessStatus(s string) (WeaknessStatus, error) {
	normalized := WeaknessStatus(strings.ToLower(strings.TrimSpace(s)))
	switch normalized {
	case WeaknessDraft, WeaknessStable, WeaknessDeprecated, WeaknessIncomplete:
		return normalized, nil
	}
	return UnknownWeaknessStatus, fmt.Errorf("unknown weakness status: %q", s)
}

func ParseCategoryStatus(s string) (CategoryStatus, error) {
	normalized := CategoryStatus(strings.ToLower(strings.TrimSpace(s)))
	switch normalized {
	case CategoryDraft, CategoryIncomplete, CategoryObsolete, CategoryDeprecated:
		return normalized, nil
	}
	return UnknownCategoryStatus, fmt.Errorf("unknown category status: %q", s)
}
