package liveness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"idproof/internal/kyc/models"
	"idproof/internal/kyc/ports"
	"idproof/internal/kyc/ports/mocks"
	"idproof/internal/kyc/verifier"
	dErrors "idproof/pkg/domain-errors"
	"idproof/pkg/testutil"
)

type StepSuite struct {
	suite.Suite
	liveness *mocks.MockLivenessVerifier
	comparer *mocks.MockFaceComparer
	step     *Step
	ctx      context.Context
	now      time.Time
	session  *models.Session
}

func TestStepSuite(t *testing.T) {
	suite.Run(t, new(StepSuite))
}

func (s *StepSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.liveness = mocks.NewMockLivenessVerifier(ctrl)
	s.comparer = mocks.NewMockFaceComparer(ctrl)
	s.step = New(s.liveness, WithFaceComparer(s.comparer))
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = testutil.AtTime(s.now)
	s.session = s.sessionAtLiveness(models.ProfileStrict)
}

func (s *StepSuite) sessionAtLiveness(profile models.Profile) *models.Session {
	sess := models.NewSession(models.Contact{Phone: "+15550100"}, profile, "", s.now, time.Hour)
	s.Require().NoError(sess.MarkChannelVerified(models.ChannelPhone, s.now))
	for _, side := range models.Sides {
		t, err := sess.Begin(models.DocumentSlot(side), s.now)
		s.Require().NoError(err)
		s.Require().NoError(sess.CompleteDocumentCapture(t, models.DocumentArtifact{IsValid: true, Confidence: 90}, []byte("face-"+string(side)), s.now))
	}
	advanced, err := sess.Advance(models.StageDocumentPending, s.now)
	s.Require().NoError(err)
	s.Require().True(advanced)
	return sess
}

func selfie() models.Capture {
	return models.NewCapture("", []byte("selfie"))
}

func (s *StepSuite) TestSubmitStoresArtifact() {
	s.liveness.EXPECT().ValidateLivenessImage(gomock.Any(), []byte("selfie")).
		Return(ports.ValidationResult{Valid: true, Confidence: 96, Issues: []string{"", "low light"}}, nil)

	artifact, err := s.step.Submit(s.ctx, s.session, selfie())
	s.Require().NoError(err)
	s.True(artifact.IsValid)
	s.Equal([]string{"low light"}, artifact.Issues)
	s.Contains(artifact.ImageRef, "sha256:")
	s.Equal(artifact.Confidence, s.session.Snapshot().Liveness.Confidence)
}

func (s *StepSuite) TestCompareUsesRetainedFrontImage() {
	s.comparer.EXPECT().CompareFaces(gomock.Any(), []byte("face-front"), []byte("selfie")).
		Return(ports.ValidationResult{Valid: true, Confidence: 84}, nil)

	artifact, err := s.step.Compare(s.ctx, s.session, selfie())
	s.Require().NoError(err)
	s.Equal(84.0, artifact.Confidence)
	s.Equal(84.0, s.session.Snapshot().Comparison.Confidence)
}

func (s *StepSuite) TestCompareWithoutComparer() {
	step := New(s.liveness)
	_, err := step.Compare(s.ctx, s.session, selfie())
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *StepSuite) TestRemoteFailureIsRecoverable() {
	timeout := verifier.NewError(verifier.ErrorTimeout, "validate_liveness", "slow", nil)
	s.liveness.EXPECT().ValidateLivenessImage(gomock.Any(), gomock.Any()).
		Return(ports.ValidationResult{}, timeout).Times(2)

	_, err := s.step.Submit(s.ctx, s.session, selfie())
	s.True(dErrors.HasCode(err, dErrors.CodeValidationFailed))
	s.False(s.session.Snapshot().LivenessInFlight)
}

func (s *StepSuite) TestInvalidSelfieIsNotRetried() {
	s.liveness.EXPECT().ValidateLivenessImage(gomock.Any(), gomock.Any()).
		Return(ports.ValidationResult{Valid: false, Confidence: 12, Issues: []string{"screen replay suspected"}}, nil).
		Times(1)

	artifact, err := s.step.Submit(s.ctx, s.session, selfie())
	s.Require().NoError(err)
	s.False(artifact.IsValid)
}

func (s *StepSuite) TestSubmitOutsideLivenessStage() {
	fresh := models.NewSession(models.Contact{Phone: "+15550100"}, models.ProfileStandard, "", s.now, time.Hour)
	_, err := s.step.Submit(s.ctx, fresh, selfie())
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}
