package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/karimnasser/propflow-backend/pkg/enums"
)

// ChecklistEntry is one inspected area/room on the move-out checklist.
type ChecklistEntry struct {
	Area   string `json:"area"`
	Passed bool   `json:"passed"`
	Notes  string `json:"notes,omitempty"`
}

// Checklist stores the full checklist inside a JSONB column.
type Checklist []ChecklistEntry

// Value serializes the checklist to JSON.
func (c *Checklist) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan decodes JSONB into the checklist.
func (c *Checklist) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded Checklist
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*c = decoded
	return nil
}

// FailedItems returns the areas that did not pass, for remediation fanout.
func (c Checklist) FailedItems() []string {
	var failed []string
	for _, entry := range c {
		if !entry.Passed {
			failed = append(failed, entry.Area)
		}
	}
	return failed
}

// PhotoRef points at an inspection photo held by the media store.
type PhotoRef struct {
	Tag      enums.PhotoTag `json:"tag"`
	Section  string         `json:"section"`
	MediaRef string         `json:"media_ref"`
}

// PhotoRefs stores the photo reference list inside a JSONB column.
type PhotoRefs []PhotoRef

// Value serializes the photo references to JSON.
func (p *PhotoRefs) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan decodes JSONB into the photo reference list.
func (p *PhotoRefs) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded PhotoRefs
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*p = decoded
	return nil
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
