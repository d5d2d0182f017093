package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance: the
	// verdict and its escalation. These are written synchronously (fail-closed).
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to abuse monitoring, e.g. exhausted
	// code attempts and suspected document tampering.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine progress through the flow.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the verification flow. It never carries raw contact data:
// SubjectHash is a keyed hash of the contact used to start the session.
type Event struct {
	Category    EventCategory
	Timestamp   time.Time
	SessionID   string
	SubjectHash string
	Action      string
	Stage       string
	Decision    string
	Reason      string
	RequestID   string
	CallerID    string
}

type AuditEvent string

const (
	EventSessionStarted           AuditEvent = "kyc_session_started"
	EventChannelCodeSent          AuditEvent = "channel_code_sent"
	EventChannelVerified          AuditEvent = "channel_verified"
	EventChannelAttemptsExhausted AuditEvent = "channel_attempts_exhausted"
	EventDocumentValidated        AuditEvent = "document_validated"
	EventLivenessValidated        AuditEvent = "liveness_validated"
	EventBiometricCompared        AuditEvent = "biometric_compared"
	EventArtifactRetake           AuditEvent = "artifact_retake"
	EventStaleResultDiscarded     AuditEvent = "stale_result_discarded"
	EventVerdictIssued            AuditEvent = "verdict_issued"
	EventManualReviewEscalated    AuditEvent = "manual_review_escalated"
	EventSessionAbandoned         AuditEvent = "session_abandoned"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventVerdictIssued:         CategoryCompliance,
	EventManualReviewEscalated: CategoryCompliance,
	EventSessionAbandoned:      CategoryCompliance,

	EventChannelAttemptsExhausted: CategorySecurity,
	EventStaleResultDiscarded:     CategorySecurity,

	EventSessionStarted:    CategoryOperations,
	EventChannelCodeSent:   CategoryOperations,
	EventChannelVerified:   CategoryOperations,
	EventDocumentValidated: CategoryOperations,
	EventLivenessValidated: CategoryOperations,
	EventBiometricCompared: CategoryOperations,
	EventArtifactRetake:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySession(ctx context.Context, sessionID string) ([]Event, error)
}
