package enums

import "fmt"

// PhotoTag classifies an inspection photo reference.
type PhotoTag string

const (
	PhotoTagBefore PhotoTag = "before"
	PhotoTagAfter  PhotoTag = "after"
	PhotoTagDamage PhotoTag = "damage"
)

var validPhotoTags = []PhotoTag{
	PhotoTagBefore,
	PhotoTagAfter,
	PhotoTagDamage,
}

// String implements fmt.Stringer.
func (p PhotoTag) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PhotoTag.
func (p PhotoTag) IsValid() bool {
	for _, candidate := range validPhotoTags {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePhotoTag converts raw input into a PhotoTag.
func ParsePhotoTag(value string) (PhotoTag, error) {
	for _, candidate := range validPhotoTags {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid photo tag %q", value)
}
