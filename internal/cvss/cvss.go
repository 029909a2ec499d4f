package cvss

import (
	"errors"
	"fmt"
	"math"
	"strings"

	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
	gocvss40 "github.com/pandatix/go-cvss/40"

	"github.com/guardian-sec/guardian/guardian/vulnerability"
)

// ErrUnsupportedVersion is returned for vectors which are neither CVSS v3.x nor v4.x.
var ErrUnsupportedVersion = errors.New("unsupported CVSS version")

const (
	v3Prefix = "cvss:3"
	v4Prefix = "cvss:4"

	// LegacyV3Prefix is put in front of bare v3 metric vectors (e.g. "AV:N/AC:L/...").
	LegacyV3Prefix = "CVSS:3.1/"
)

// Vector is a scored CVSS vector. It is a pure value; persisting it is up to the caller.
type Vector struct {
	BaseScore    float64
	BaseSeverity vulnerability.Severity
	BaseVector   string
}

// BaseScore computes the base score of a CVSS v3.x or v4.x vector. The version prefix is matched case-insensitively.
func BaseScore(vector string) (float64, error) {
	lower := strings.ToLower(vector)
	canonical := canonicalPrefix(vector)

	switch {
	case strings.HasPrefix(lower, "cvss:3.0/"):
		cvss, err := gocvss30.ParseVector(canonical)
		if err != nil {
			return 0, fmt.Errorf("unable to parse CVSS v3.0 vector %q: %w", vector, err)
		}
		return roundScore(cvss.BaseScore()), nil
	case strings.HasPrefix(lower, "cvss:3.1/"):
		cvss, err := gocvss31.ParseVector(canonical)
		if err != nil {
			return 0, fmt.Errorf("unable to parse CVSS v3.1 vector %q: %w", vector, err)
		}
		return roundScore(cvss.BaseScore()), nil
	case strings.HasPrefix(lower, "cvss:4.0/"):
		cvss, err := gocvss40.ParseVector(canonical)
		if err != nil {
			return 0, fmt.Errorf("unable to parse CVSS v4.0 vector %q: %w", vector, err)
		}
		// there are no exploitability and impact sub scores in CVSS v4.0, only the overall score
		return roundScore(cvss.Score()), nil
	case strings.HasPrefix(lower, v3Prefix), strings.HasPrefix(lower, v4Prefix):
		return 0, fmt.Errorf("unable to parse CVSS vector %q: unknown minor version", vector)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedVersion, vector)
}

// BaseSeverity maps a base score onto a severity bucket. A score of exactly 0 has no severity (UnknownSeverity).
func BaseSeverity(score float64) vulnerability.Severity {
	switch {
	case score <= 0:
		return vulnerability.UnknownSeverity
	case score < 4.0:
		return vulnerability.LowSeverity
	case score < 7.0:
		return vulnerability.MediumSeverity
	case score < 9.0:
		return vulnerability.HighSeverity
	}
	return vulnerability.CriticalSeverity
}

// SeverityFromVector scores the vector and maps the result onto a severity bucket.
func SeverityFromVector(vector string) (vulnerability.Severity, error) {
	score, err := BaseScore(vector)
	if err != nil {
		return vulnerability.UnknownSeverity, err
	}
	return BaseSeverity(score), nil
}

// NormalizeCVSS3 scores a CVSS v3 vector. Vectors already starting with "CVSS:3" are used verbatim, bare metric
// vectors get the LegacyV3Prefix. An empty vector yields no result and no error.
func NormalizeCVSS3(vector string) (*Vector, error) {
	vector = strings.TrimSpace(vector)
	if vector == "" {
		return nil, nil
	}

	result := vector
	if !strings.HasPrefix(strings.ToLower(vector), v3Prefix) {
		result = LegacyV3Prefix + vector
	}

	score, err := BaseScore(result)
	if err != nil {
		return nil, err
	}

	return &Vector{
		BaseScore:    score,
		BaseSeverity: BaseSeverity(score),
		BaseVector:   result,
	}, nil
}

// canonicalPrefix upper-cases the "cvss" label, the parsers only accept "CVSS:<version>/...".
func canonicalPrefix(vector string) string {
	if len(vector) < 4 {
		return vector
	}
	return strings.ToUpper(vector[:4]) + vector[4:]
}

// roundScore rounds the score to the nearest tenth based on first.org rounding rules
// see https://www.first.org/cvss/v3.1/specification-document#Appendix-A---Floating-Point-Rounding
func roundScore(score float64) float64 {
	intInput := int(math.Round(score * 100000))
	if intInput%10000 == 0 {
		return float64(intInput) / 100000.0
	}
	return (math.Floor(float64(intInput)/10000.0) + 1) / 10.0
}
