package enum

import (
	"encoding/json"
)

// CompatibilityStatus classifies whether a stored bill can be rendered as an invoice.
type CompatibilityStatus int

const (
	// CompatibilityReady bills carry a valid business snapshot.
	CompatibilityReady CompatibilityStatus = iota
	// CompatibilityLegacyRecoverable bills lack a snapshot that current settings can supply.
	CompatibilityLegacyRecoverable
	// CompatibilityLegacyBlocked bills lack a snapshot and current settings are incomplete.
	CompatibilityLegacyBlocked
	// CompatibilityInvalid bills cannot be rendered at all.
	CompatibilityInvalid
)

var compatibilityNames = [...]string{"READY", "LEGACY_RECOVERABLE", "LEGACY_BLOCKED", "INVALID"}

func (s CompatibilityStatus) String() string {
	if int(s) < 0 || int(s) >= len(compatibilityNames) {
		return "INVALID"
	}
	return compatibilityNames[s]
}

func (s CompatibilityStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *CompatibilityStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = CompatibilityInvalid
	for i, name := range compatibilityNames {
		if name == str {
			*s = CompatibilityStatus(i)
			break
		}
	}
	return nil
}
