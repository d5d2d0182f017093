package models

import "time"

// SessionView is a detached copy of a session for readers, the decision engine
// and the hand-off. Mutating it never affects the session.
type SessionView struct {
	ID              SessionID
	Contact         Contact
	Profile         Profile
	Device          string
	Stage           Stage
	ChannelVerified bool
	VerifiedChannel Channel
	Abandoned       bool

	Documents        map[Side]*DocumentArtifact
	DocumentInFlight map[Side]bool
	Liveness         *BiometricArtifact
	LivenessInFlight bool
	Comparison       *BiometricArtifact

	Verdict   Verdict
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// Snapshot copies the session under its lock.
func (s *Session) Snapshot() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := SessionView{
		ID:               s.ID,
		Contact:          s.Contact,
		Profile:          s.Profile,
		Device:           s.Device,
		Stage:            s.stage,
		ChannelVerified:  s.channelVerified,
		VerifiedChannel:  s.verifiedChannel,
		Abandoned:        s.abandoned,
		Documents:        make(map[Side]*DocumentArtifact, len(s.documents)),
		DocumentInFlight: make(map[Side]bool, len(s.documents)),
		Liveness:         s.liveness.artifact.Clone(),
		LivenessInFlight: s.liveness.inFlight,
		Comparison:       s.comparison.artifact.Clone(),
		Verdict:          s.verdict,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.updatedAt,
		ExpiresAt:        s.ExpiresAt,
	}
	for side, d := range s.documents {
		if d.artifact != nil {
			v.Documents[side] = d.artifact.Clone()
		}
		v.DocumentInFlight[side] = d.inFlight
	}
	return v
}

// Document returns the artifact for side, or nil.
func (v SessionView) Document(side Side) *DocumentArtifact {
	return v.Documents[side]
}

// DocumentsComplete is the document stage completion predicate: both sides valid.
func (v SessionView) DocumentsComplete() bool {
	front, back := v.Documents[SideFront], v.Documents[SideBack]
	return front != nil && back != nil && front.IsValid && back.IsValid
}
