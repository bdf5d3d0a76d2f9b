package enums

import "fmt"

// InspectionResult is the overall outcome of a move-out inspection.
type InspectionResult string

const (
	InspectionResultPassed      InspectionResult = "passed"
	InspectionResultPartialPass InspectionResult = "partial_pass"
	InspectionResultFailed      InspectionResult = "failed"
)

var validInspectionResults = []InspectionResult{
	InspectionResultPassed,
	InspectionResultPartialPass,
	InspectionResultFailed,
}

// String implements fmt.Stringer.
func (i InspectionResult) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InspectionResult.
func (i InspectionResult) IsValid() bool {
	for _, candidate := range validInspectionResults {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInspectionResult converts raw input into an InspectionResult.
func ParseInspectionResult(value string) (InspectionResult, error) {
	for _, candidate := range validInspectionResults {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inspection result %q", value)
}
