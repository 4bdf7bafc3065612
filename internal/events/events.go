package events

import (
	"encoding/json"
	"time"

	"companyclean-engine/internal/domain"
)

// Event types recorded while a batch moves through the stages.
const (
	TypeRecoveryDiscard   = "recovery.discard"
	TypeDecodeProblem     = "decode.problem"
	TypeResolveAmbiguous  = "resolve.ambiguous"
	TypeMergeConflict     = "merge.conflict"
	TypeMergeRoleDup      = "merge.role_duplicate"
	TypeRegistryCollision = "registry.collision"
	TypeNormalizeDefault  = "normalize.default"

	// Repair events share a prefix; the suffix is the correction kind.
	RepairPrefix = "repair."
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	Subject   string          `json:"subject,omitempty"`
	RoleIndex *int            `json:"role_index,omitempty"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`

	// Category is set for events that surface in the quality report as Info
	// issues.
	Category domain.Category `json:"category,omitempty"`
}

func MakeEvent(typ, subject, msg string, data any) Event {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	return Event{
		Type:    typ,
		Version: 1,
		At:      time.Now().UTC(),
		Subject: subject,
		Message: msg,
		Data:    raw,
	}
}

// ForRole points the event at one role of its subject.
func (e Event) ForRole(i int) Event {
	e.RoleIndex = domain.RoleRef(i)
	return e
}

// AsIssue marks the event as reportable under cat.
func (e Event) AsIssue(cat domain.Category) Event {
	e.Category = cat
	return e
}

// Issue converts a reportable event into an Info quality issue.
func (e Event) Issue() (domain.QualityIssue, bool) {
	if e.Category == "" {
		return domain.QualityIssue{}, false
	}
	return domain.QualityIssue{
		Category:  e.Category,
		Severity:  domain.SeverityInfo,
		Subject:   e.Subject,
		RoleIndex: e.RoleIndex,
		Message:   e.Message,
	}, true
}

func (e Event) String() string {
	b, _ := json.Marshal(e)
	return string(b)
}
