package models

import (
	"sync"
	"time"
)

type slot[A any] struct {
	artifact *A
	inFlight bool
	attempt  uint64
}

// Session is the working record of one verification attempt. All mutation goes
// through its methods; the mutex guards bookkeeping only and is never held while a
// remote call is outstanding.
type Session struct {
	mu sync.Mutex

	ID        SessionID
	Contact   Contact
	Profile   Profile
	Device    string
	CreatedAt time.Time
	ExpiresAt time.Time

	// Owner is the caller that started the session; only it may act on it.
	// Empty when the session was started without an authenticated caller.
	Owner string

	updatedAt       time.Time
	stage           Stage
	channelVerified bool
	verifiedChannel Channel
	abandoned       bool
	documents       map[Side]*slot[DocumentArtifact]
	liveness        slot[BiometricArtifact]
	comparison      slot[BiometricArtifact]
	verdict         Verdict

	// faceImage is the front document capture kept in memory for the strict
	// profile comparison. It never leaves the process and is dropped at terminal.
	faceImage []byte
}

// OwnedBy reports whether caller may act on the session.
func (s *Session) OwnedBy(caller string) bool {
	return s.Owner == "" || s.Owner == caller
}

// NewSession starts a session in the channel stage.
func NewSession(contact Contact, profile Profile, device string, now time.Time, ttl time.Duration) *Session {
	if !profile.IsValid() {
		profile = ProfileStandard
	}
	return &Session{
		ID:        NewSessionID(),
		Contact:   contact,
		Profile:   profile,
		Device:    device,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		updatedAt: now,
		stage:     StageChannelPending,
		documents: map[Side]*slot[DocumentArtifact]{
			SideFront: {},
			SideBack:  {},
		},
	}
}

func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// IsExpired reports whether a non-terminal session outlived its TTL.
func (s *Session) IsExpired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stage.IsTerminal() && !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// RequireStage fails unless the session is currently in want.
func (s *Session) RequireStage(want Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requireStageLocked(want)
}

func (s *Session) requireStageLocked(want Stage) error {
	if s.stage.IsTerminal() {
		return ErrSessionTerminal()
	}
	if s.stage != want {
		return ErrWrongStage(s.stage, want)
	}
	return nil
}

// MarkChannelVerified records channel possession and advances to the document stage.
// Once verified, the channel is never demanded again within the session.
func (s *Session) MarkChannelVerified(ch Channel, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireStageLocked(StageChannelPending); err != nil {
		return err
	}
	s.channelVerified = true
	s.verifiedChannel = ch
	return s.advanceLocked(now)
}

// Begin reserves a slot for a new submission. The slot's previous validation is
// cleared immediately so a stale confidence can never be used, while the previous
// image stays available for display until the new result replaces it.
func (s *Session) Begin(sl Slot, now time.Time) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stage, ok := slotStage[sl]
	if !ok {
		return Ticket{}, ErrIllegalTransition(s.stage, s.stage)
	}
	if err := s.requireStageLocked(stage); err != nil {
		return Ticket{}, err
	}

	switch sl {
	case SlotDocumentFront, SlotDocumentBack:
		d := s.documents[sideOf(sl)]
		if d.inFlight {
			return Ticket{}, ErrSubmissionInFlight(sl)
		}
		d.inFlight = true
		d.attempt++
		d.artifact = d.artifact.cleared()
		if sl == SlotDocumentFront {
			s.faceImage = nil
		}
		s.updatedAt = now
		return Ticket{Stage: stage, Slot: sl, Attempt: d.attempt}, nil
	default:
		b := s.biometric(sl)
		if b.inFlight {
			return Ticket{}, ErrSubmissionInFlight(sl)
		}
		b.inFlight = true
		b.attempt++
		b.artifact = b.artifact.cleared()
		s.updatedAt = now
		return Ticket{Stage: stage, Slot: sl, Attempt: b.attempt}, nil
	}
}

// CompleteDocument replaces the side's artifact with the validated one. The new
// artifact supersedes the old entirely; nothing is merged.
func (s *Session) CompleteDocument(t Ticket, a DocumentArtifact, now time.Time) error {
	return s.CompleteDocumentCapture(t, a, nil, now)
}

// CompleteDocumentCapture is CompleteDocument that also keeps the front image for a
// later face comparison.
func (s *Session) CompleteDocumentCapture(t Ticket, a DocumentArtifact, image []byte, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Slot != SlotDocumentFront && t.Slot != SlotDocumentBack {
		return ErrStaleResult(t)
	}
	d := s.documents[sideOf(t.Slot)]
	if !s.ticketCurrentLocked(t, d.attempt) {
		return ErrStaleResult(t)
	}
	a.Pending = false
	d.artifact = &a
	d.inFlight = false
	if t.Slot == SlotDocumentFront {
		s.faceImage = image
	}
	s.updatedAt = now
	return nil
}

// FaceImage returns the retained front document image, or nil.
func (s *Session) FaceImage() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faceImage
}

// CompleteBiometric replaces the liveness or comparison artifact.
func (s *Session) CompleteBiometric(t Ticket, a BiometricArtifact, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Slot != SlotLiveness && t.Slot != SlotComparison {
		return ErrStaleResult(t)
	}
	b := s.biometric(t.Slot)
	if !s.ticketCurrentLocked(t, b.attempt) {
		return ErrStaleResult(t)
	}
	a.Pending = false
	b.artifact = &a
	b.inFlight = false
	s.updatedAt = now
	return nil
}

// Abort releases the in-flight flag after a failed submission. The cleared
// validation state is kept so the user has to capture again.
func (s *Session) Abort(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch t.Slot {
	case SlotDocumentFront, SlotDocumentBack:
		d := s.documents[sideOf(t.Slot)]
		if d.attempt == t.Attempt {
			d.inFlight = false
		}
	case SlotLiveness, SlotComparison:
		b := s.biometric(t.Slot)
		if b.attempt == t.Attempt {
			b.inFlight = false
		}
	}
}

// Retake discards the slot's validation without a new capture yet. It re-enters
// the slot's own stage and never rewinds past an earlier stage.
func (s *Session) Retake(sl Slot, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stage, ok := slotStage[sl]
	if !ok {
		return ErrIllegalTransition(s.stage, s.stage)
	}
	if err := s.requireStageLocked(stage); err != nil {
		return err
	}
	switch sl {
	case SlotDocumentFront, SlotDocumentBack:
		d := s.documents[sideOf(sl)]
		if d.inFlight {
			return ErrSubmissionInFlight(sl)
		}
		d.attempt++
		d.artifact = nil
		if sl == SlotDocumentFront {
			s.faceImage = nil
		}
	default:
		b := s.biometric(sl)
		if b.inFlight {
			return ErrSubmissionInFlight(sl)
		}
		// attempts only move while their slot is idle, so every outstanding
		// ticket can still release its own flag
		if sl == SlotLiveness && s.comparison.inFlight {
			return ErrSubmissionInFlight(SlotComparison)
		}
		b.attempt++
		b.artifact = nil
		if sl == SlotLiveness {
			// a comparison is only meaningful against the selfie it was made with
			s.comparison.attempt++
			s.comparison.artifact = nil
		}
	}
	s.updatedAt = now
	return nil
}

// Advance moves to the next stage when the current stage's completion predicate holds.
func (s *Session) Advance(from Stage, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireStageLocked(from); err != nil {
		return false, err
	}
	if !s.stageCompleteLocked() {
		return false, nil
	}
	return true, s.advanceLocked(now)
}

// Abandon sends a non-terminal session straight to deciding; the decision engine
// then turns it into a rejection. In-flight results are discarded by the stage guard.
func (s *Session) Abandon(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage.IsTerminal() {
		return ErrSessionTerminal()
	}
	s.abandoned = true
	s.stage = StageDeciding
	s.updatedAt = now
	return nil
}

// Terminate stores the verdict. It is the only way to reach the terminal stage, so
// a verdict exists if and only if the session is terminal.
func (s *Session) Terminate(v Verdict, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage.IsTerminal() {
		return ErrSessionTerminal()
	}
	if s.stage != StageDeciding {
		return ErrIllegalTransition(s.stage, StageTerminal)
	}
	if v == nil {
		return ErrIllegalTransition(s.stage, StageTerminal)
	}
	s.verdict = v
	s.stage = StageTerminal
	s.faceImage = nil
	s.updatedAt = now
	return nil
}

func (s *Session) advanceLocked(now time.Time) error {
	n, ok := s.stage.Next()
	if !ok || n == StageTerminal {
		return ErrIllegalTransition(s.stage, n)
	}
	s.stage = n
	s.updatedAt = now
	return nil
}

func (s *Session) stageCompleteLocked() bool {
	switch s.stage {
	case StageChannelPending:
		return s.channelVerified
	case StageDocumentPending:
		return s.documentsCompleteLocked()
	case StageLivenessPending:
		if !validBiometric(s.liveness) {
			return false
		}
		return s.Profile != ProfileStrict || validBiometric(s.comparison)
	default:
		return false
	}
}

func (s *Session) documentsCompleteLocked() bool {
	for _, side := range Sides {
		d := s.documents[side]
		if d.inFlight || d.artifact == nil || !d.artifact.IsValid {
			return false
		}
	}
	return true
}

func validBiometric(b slot[BiometricArtifact]) bool {
	return !b.inFlight && b.artifact != nil && b.artifact.IsValid
}

func (s *Session) ticketCurrentLocked(t Ticket, attempt uint64) bool {
	return s.stage == t.Stage && attempt == t.Attempt
}

func (s *Session) biometric(sl Slot) *slot[BiometricArtifact] {
	if sl == SlotComparison {
		return &s.comparison
	}
	return &s.liveness
}

func sideOf(sl Slot) Side {
	if sl == SlotDocumentBack {
		return SideBack
	}
	return SideFront
}
