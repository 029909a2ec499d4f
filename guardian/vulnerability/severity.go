package vulnerability

// Severity is the qualitative rating of a finding. The zero value (UnknownSeverity) is used where no rating
// applies, for instance for a CVSS base score of exactly 0.
type Severity string

const (
	UnknownSeverity  Severity = ""
	LowSeverity      Severity = "low"
	MediumSeverity   Severity = "medium"
	HighSeverity     Severity = "high"
	CriticalSeverity Severity = "critical"
)

func (s Severity) String() string {
	if s == UnknownSeverity {
		return "unknown"
	}
	return string(s)
}
