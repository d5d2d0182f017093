package models

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "idproof/pkg/domain-errors"
)

// SessionSuite covers the stage machine and slot invariants enforced by the
// session itself, independent of any step or verifier.
type SessionSuite struct {
	suite.Suite
	now     time.Time
	session *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.session = NewSession(Contact{Email: "user@example.com"}, ProfileStandard, "", s.now, 30*time.Minute)
}

func (s *SessionSuite) toDocuments() {
	s.Require().NoError(s.session.MarkChannelVerified(ChannelEmail, s.now))
	s.Require().Equal(StageDocumentPending, s.session.Stage())
}

func (s *SessionSuite) completeDocument(side Side, valid bool, confidence float64) {
	t, err := s.session.Begin(DocumentSlot(side), s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.session.CompleteDocument(t, DocumentArtifact{
		ImageRef:   string(side) + "-ref",
		IsValid:    valid,
		Confidence: confidence,
	}, s.now))
}

func (s *SessionSuite) TestStartsInChannelStage() {
	view := s.session.Snapshot()
	s.Equal(StageChannelPending, view.Stage)
	s.False(view.ChannelVerified)
	s.Nil(view.Verdict)
}

func (s *SessionSuite) TestNoStageIsSkipped() {
	s.Run("document submission refused before channel verification", func() {
		_, err := s.session.Begin(SlotDocumentFront, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("advance refused while predicate is false", func() {
		s.toDocuments()
		s.completeDocument(SideFront, true, 90)
		advanced, err := s.session.Advance(StageDocumentPending, s.now)
		s.NoError(err)
		s.False(advanced)
		s.Equal(StageDocumentPending, s.session.Stage())
	})

	s.Run("terminate refused outside deciding", func() {
		err := s.session.Terminate(Approved{Confidence: 99}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		s.Nil(s.session.Snapshot().Verdict)
	})
}

func (s *SessionSuite) TestDocumentsAdvanceInEitherOrder() {
	s.toDocuments()
	s.completeDocument(SideBack, true, 92)
	s.completeDocument(SideFront, true, 95)

	advanced, err := s.session.Advance(StageDocumentPending, s.now)
	s.Require().NoError(err)
	s.True(advanced)
	s.Equal(StageLivenessPending, s.session.Stage())
}

func (s *SessionSuite) TestRetakeReplacesNeverMerges() {
	s.toDocuments()
	s.completeDocument(SideFront, true, 95)

	t, err := s.session.Begin(SlotDocumentFront, s.now)
	s.Require().NoError(err)

	s.Run("validation is cleared as soon as the retake starts", func() {
		front := s.session.Snapshot().Document(SideFront)
		s.Require().NotNil(front)
		s.False(front.IsValid)
		s.Zero(front.Confidence)
		s.True(front.Pending)
		s.Equal("front-ref", front.ImageRef, "previous image stays displayable")
	})

	s.Require().NoError(s.session.CompleteDocument(t, DocumentArtifact{
		ImageRef:   "front-retake",
		IsValid:    false,
		Confidence: 30,
		Issues:     []string{"glare"},
	}, s.now))

	s.Run("latest write wins", func() {
		front := s.session.Snapshot().Document(SideFront)
		s.False(front.IsValid)
		s.Equal(30.0, front.Confidence)
		s.Equal("front-retake", front.ImageRef)
		s.Equal([]string{"glare"}, front.Issues)
		s.Empty(front.Recommendations)
		s.False(front.Pending)
	})
}

func (s *SessionSuite) TestInFlightSlotRejectsSecondSubmission() {
	s.toDocuments()
	_, err := s.session.Begin(SlotDocumentFront, s.now)
	s.Require().NoError(err)

	_, err = s.session.Begin(SlotDocumentFront, s.now)
	s.True(dErrors.HasCode(err, dErrors.CodeInFlight))

	_, err = s.session.Begin(SlotDocumentBack, s.now)
	s.NoError(err, "the other side is an independent slot")
}

func (s *SessionSuite) TestStaleResultsAreDiscarded() {
	s.Run("result after stage change", func() {
		s.toDocuments()
		s.completeDocument(SideBack, true, 92)
		t, err := s.session.Begin(SlotDocumentFront, s.now)
		s.Require().NoError(err)

		s.Require().NoError(s.session.Abandon(s.now))

		err = s.session.CompleteDocument(t, DocumentArtifact{ImageRef: "late", IsValid: true, Confidence: 99}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeStaleResult))
		s.Nil(s.session.Snapshot().Document(SideFront))
	})

	s.Run("result for a superseded attempt", func() {
		s.SetupTest()
		s.toDocuments()
		t1, err := s.session.Begin(SlotDocumentFront, s.now)
		s.Require().NoError(err)
		s.session.Abort(t1)
		t2, err := s.session.Begin(SlotDocumentFront, s.now)
		s.Require().NoError(err)

		err = s.session.CompleteDocument(t1, DocumentArtifact{ImageRef: "old", IsValid: true}, s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeStaleResult))
		s.NoError(s.session.CompleteDocument(t2, DocumentArtifact{ImageRef: "new", IsValid: true}, s.now))
		s.Equal("new", s.session.Snapshot().Document(SideFront).ImageRef)
	})
}

func (s *SessionSuite) TestStrictProfileRequiresComparison() {
	sess := NewSession(Contact{Phone: "+15550100"}, ProfileStrict, "", s.now, time.Hour)
	s.Require().NoError(sess.MarkChannelVerified(ChannelPhone, s.now))
	for _, side := range Sides {
		t, err := sess.Begin(DocumentSlot(side), s.now)
		s.Require().NoError(err)
		s.Require().NoError(sess.CompleteDocument(t, DocumentArtifact{IsValid: true, Confidence: 90}, s.now))
	}
	_, err := sess.Advance(StageDocumentPending, s.now)
	s.Require().NoError(err)

	t, err := sess.Begin(SlotLiveness, s.now)
	s.Require().NoError(err)
	s.Require().NoError(sess.CompleteBiometric(t, BiometricArtifact{IsValid: true, Confidence: 90}, s.now))

	advanced, err := sess.Advance(StageLivenessPending, s.now)
	s.NoError(err)
	s.False(advanced, "comparison still missing")

	t, err = sess.Begin(SlotComparison, s.now)
	s.Require().NoError(err)
	s.Require().NoError(sess.CompleteBiometric(t, BiometricArtifact{IsValid: true, Confidence: 88}, s.now))

	advanced, err = sess.Advance(StageLivenessPending, s.now)
	s.NoError(err)
	s.True(advanced)
	s.Equal(StageDeciding, sess.Stage())
}

func (s *SessionSuite) TestLivenessRetakeWaitsForRunningComparison() {
	sess := NewSession(Contact{Phone: "+15550100"}, ProfileStrict, "", s.now, time.Hour)
	s.Require().NoError(sess.MarkChannelVerified(ChannelPhone, s.now))
	for _, side := range Sides {
		t, err := sess.Begin(DocumentSlot(side), s.now)
		s.Require().NoError(err)
		s.Require().NoError(sess.CompleteDocument(t, DocumentArtifact{IsValid: true, Confidence: 90}, s.now))
	}
	_, err := sess.Advance(StageDocumentPending, s.now)
	s.Require().NoError(err)

	lt, err := sess.Begin(SlotLiveness, s.now)
	s.Require().NoError(err)
	s.Require().NoError(sess.CompleteBiometric(lt, BiometricArtifact{IsValid: true, Confidence: 90}, s.now))
	ct, err := sess.Begin(SlotComparison, s.now)
	s.Require().NoError(err)

	err = sess.Retake(SlotLiveness, s.now)
	s.True(dErrors.HasCode(err, dErrors.CodeInFlight))

	s.Require().NoError(sess.CompleteBiometric(ct, BiometricArtifact{IsValid: false, Confidence: 30}, s.now))

	s.Run("retake succeeds once the comparison settled", func() {
		s.Require().NoError(sess.Retake(SlotLiveness, s.now))
		view := sess.Snapshot()
		s.Nil(view.Liveness)
		s.Nil(view.Comparison)
	})

	s.Run("the flow can still finish", func() {
		lt, err := sess.Begin(SlotLiveness, s.now)
		s.Require().NoError(err)
		s.Require().NoError(sess.CompleteBiometric(lt, BiometricArtifact{IsValid: true, Confidence: 92}, s.now))
		ct, err := sess.Begin(SlotComparison, s.now)
		s.Require().NoError(err)
		s.Require().NoError(sess.CompleteBiometric(ct, BiometricArtifact{IsValid: true, Confidence: 88}, s.now))

		advanced, err := sess.Advance(StageLivenessPending, s.now)
		s.NoError(err)
		s.True(advanced)
		s.Equal(StageDeciding, sess.Stage())
	})
}

func (s *SessionSuite) TestTerminalSessionIsImmutable() {
	s.Require().NoError(s.session.Abandon(s.now))
	s.Require().NoError(s.session.Terminate(Rejected{Reason: ReasonAbandoned}, s.now))

	s.True(dErrors.HasCode(s.session.Abandon(s.now), dErrors.CodeSessionTerminal))
	s.True(dErrors.HasCode(s.session.Terminate(Approved{}, s.now), dErrors.CodeSessionTerminal))
	_, err := s.session.Begin(SlotLiveness, s.now)
	s.True(dErrors.HasCode(err, dErrors.CodeSessionTerminal))
	s.Equal(Rejected{Reason: ReasonAbandoned}, s.session.Snapshot().Verdict)
}

func (s *SessionSuite) TestFaceImageLifecycle() {
	s.toDocuments()
	front, err := s.session.Begin(SlotDocumentFront, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.session.CompleteDocumentCapture(front, DocumentArtifact{IsValid: true, Confidence: 90}, []byte("face-1"), s.now))
	s.Equal([]byte("face-1"), s.session.FaceImage())

	s.completeDocument(SideBack, false, 30)
	s.Equal([]byte("face-1"), s.session.FaceImage(), "back side never touches the face image")

	s.Require().NoError(s.session.Retake(SlotDocumentFront, s.now))
	s.Nil(s.session.FaceImage())

	front, err = s.session.Begin(SlotDocumentFront, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.session.CompleteDocumentCapture(front, DocumentArtifact{IsValid: true, Confidence: 90}, []byte("face-2"), s.now))
	s.Equal([]byte("face-2"), s.session.FaceImage())

	s.Require().NoError(s.session.Abandon(s.now))
	s.Require().NoError(s.session.Terminate(Rejected{Reason: ReasonAbandoned}, s.now))
	s.Nil(s.session.FaceImage())
}

// TestVerdictIffTerminal drives random operation sequences and checks that a
// verdict is present exactly when the session is terminal after every step.
func TestVerdictIffTerminal(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	slots := []Slot{SlotDocumentFront, SlotDocumentBack, SlotLiveness, SlotComparison}
	stages := []Stage{StageChannelPending, StageDocumentPending, StageLivenessPending}

	for seed := uint64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*31+7))
		profile := ProfileStandard
		if rng.IntN(2) == 0 {
			profile = ProfileStrict
		}
		sess := NewSession(Contact{Email: "p@example.com"}, profile, "", now, time.Hour)
		var tickets []Ticket

		for step := 0; step < 40; step++ {
			switch rng.IntN(8) {
			case 0:
				_ = sess.MarkChannelVerified(ChannelEmail, now)
			case 1:
				if tk, err := sess.Begin(slots[rng.IntN(len(slots))], now); err == nil {
					tickets = append(tickets, tk)
				}
			case 2:
				if len(tickets) > 0 {
					tk := tickets[rng.IntN(len(tickets))]
					valid := rng.IntN(3) > 0
					conf := float64(rng.IntN(101))
					if tk.Slot == SlotDocumentFront || tk.Slot == SlotDocumentBack {
						_ = sess.CompleteDocument(tk, DocumentArtifact{IsValid: valid, Confidence: conf}, now)
					} else {
						_ = sess.CompleteBiometric(tk, BiometricArtifact{IsValid: valid, Confidence: conf}, now)
					}
				}
			case 3:
				_, _ = sess.Advance(stages[rng.IntN(len(stages))], now)
			case 4:
				_ = sess.Retake(slots[rng.IntN(len(slots))], now)
			case 5:
				if rng.IntN(10) == 0 {
					_ = sess.Abandon(now)
				}
			case 6:
				_ = sess.Terminate(ManualReview{CaseID: "c", Priority: PriorityNormal}, now)
			case 7:
				if len(tickets) > 0 {
					sess.Abort(tickets[rng.IntN(len(tickets))])
				}
			}

			view := sess.Snapshot()
			if (view.Verdict != nil) != view.Stage.IsTerminal() {
				t.Fatalf("seed %d step %d: stage=%s verdict=%v", seed, step, view.Stage, view.Verdict)
			}
		}
	}
}
