package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idproof/internal/kyc/models"
	"idproof/pkg/testutil"
)

func doc(valid bool, confidence float64, issues ...string) *models.DocumentArtifact {
	return &models.DocumentArtifact{IsValid: valid, Confidence: confidence, Issues: issues}
}

func bio(valid bool, confidence float64, issues ...string) *models.BiometricArtifact {
	return &models.BiometricArtifact{IsValid: valid, Confidence: confidence, Issues: issues}
}

func completeInput(front, back, liveness float64) Input {
	return Input{
		SessionID:       models.NewSessionID(),
		ChannelVerified: true,
		Front:           doc(true, front),
		Back:            doc(true, back),
		Liveness:        bio(true, liveness),
	}
}

func TestDecideScenarios(t *testing.T) {
	engine := New(DefaultPolicy())

	t.Run("high confidence evidence is approved", func(t *testing.T) {
		out := engine.Decide(completeInput(95, 92, 90))
		assert.Equal(t, models.Approved{Confidence: 92.25}, out.Verdict)
		assert.Equal(t, 92.25, out.Aggregate)
	})

	t.Run("tampering rejects regardless of other artifacts", func(t *testing.T) {
		in := completeInput(40, 99, 99)
		in.Front.Issues = []string{"tampering suspected"}
		in.Front.IsValid = false
		out := engine.Decide(in)
		assert.Equal(t, models.Rejected{Reason: models.ReasonTamperingSuspected}, out.Verdict)

		in.ChannelVerified = false
		in.Liveness = nil
		assert.Equal(t, models.Rejected{Reason: models.ReasonTamperingSuspected}, engine.Decide(in).Verdict,
			"tampering is checked before completeness")

		in.Abandoned = true
		assert.Equal(t, models.Rejected{Reason: models.ReasonTamperingSuspected}, engine.Decide(in).Verdict,
			"abandoning does not hide tampering")
	})

	t.Run("valid evidence in the middle band goes to normal review", func(t *testing.T) {
		in := completeInput(65, 65, 65)
		out := engine.Decide(in)
		review, ok := out.Verdict.(models.ManualReview)
		require.True(t, ok, "got %T", out.Verdict)
		assert.Equal(t, models.PriorityNormal, review.Priority)
		assert.Equal(t, CaseID(in), review.CaseID)
		assert.Equal(t, 65.0, out.Aggregate)
	})
}

func TestDecideRules(t *testing.T) {
	engine := New(DefaultPolicy())

	tests := []struct {
		name   string
		mutate func(*Input)
		want   models.Verdict
	}{
		{
			name:   "abandoned",
			mutate: func(in *Input) { in.Abandoned = true },
			want:   models.Rejected{Reason: models.ReasonAbandoned},
		},
		{
			name:   "channel unverified",
			mutate: func(in *Input) { in.ChannelVerified = false },
			want:   models.Rejected{Reason: models.ReasonIncompleteEvidence},
		},
		{
			name:   "missing back",
			mutate: func(in *Input) { in.Back = nil },
			want:   models.Rejected{Reason: models.ReasonIncompleteEvidence},
		},
		{
			name:   "liveness cleared by a retake",
			mutate: func(in *Input) { in.Liveness = &models.BiometricArtifact{Pending: true} },
			want:   models.Rejected{Reason: models.ReasonIncompleteEvidence},
		},
		{
			name: "strict profile without comparison",
			mutate: func(in *Input) {
				in.RequireComparison = true
			},
			want: models.Rejected{Reason: models.ReasonIncompleteEvidence},
		},
		{
			name: "low confidence",
			mutate: func(in *Input) {
				in.Front.Confidence, in.Back.Confidence, in.Liveness.Confidence = 40, 40, 40
			},
			want: models.Rejected{Reason: models.ReasonLowConfidence},
		},
		{
			name: "quality issues push below the reject line",
			mutate: func(in *Input) {
				in.Front.Confidence, in.Back.Confidence, in.Liveness.Confidence = 58, 58, 58
				in.Front.Issues = []string{"glare", "blur"}
			},
			want: models.Rejected{Reason: models.ReasonLowConfidence},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := completeInput(95, 92, 90)
			tt.mutate(&in)
			assert.Equal(t, tt.want, engine.Decide(in).Verdict)
		})
	}
}

func TestReviewPriority(t *testing.T) {
	engine := New(DefaultPolicy())

	priority := func(t *testing.T, in Input) models.ReviewPriority {
		t.Helper()
		review, ok := engine.Decide(in).Verdict.(models.ManualReview)
		require.True(t, ok)
		return review.Priority
	}

	t.Run("close to the reject line", func(t *testing.T) {
		assert.Equal(t, models.PriorityHigh, priority(t, completeInput(52, 52, 52)))
		assert.Equal(t, models.PriorityNormal, priority(t, completeInput(55, 55, 55)))
	})

	t.Run("exactly on the reject line", func(t *testing.T) {
		out := engine.Decide(completeInput(50, 50, 50))
		assert.Equal(t, 50.0, out.Aggregate)
		assert.Equal(t, models.PriorityHigh, priority(t, completeInput(50, 50, 50)))

		below := engine.Decide(completeInput(49.99, 49.99, 49.99))
		assert.Equal(t, models.Rejected{Reason: models.ReasonLowConfidence}, below.Verdict)
	})

	t.Run("invalid artifact despite a high score", func(t *testing.T) {
		in := completeInput(95, 92, 90)
		in.Back.IsValid = false
		assert.Equal(t, models.PriorityHigh, priority(t, in))
	})

	t.Run("mismatch issue", func(t *testing.T) {
		in := completeInput(90, 90, 90)
		in.Back.Issues = []string{"name mismatch between sides"}
		// 90 - 15 = 75: review band, escalated because of the mismatch
		assert.Equal(t, models.PriorityHigh, priority(t, in))
	})
}

func TestComparisonWeight(t *testing.T) {
	engine := New(DefaultPolicy())
	in := completeInput(90, 90, 90)
	in.RequireComparison = true
	in.Comparison = bio(true, 40)

	// 0.8*90 + 0.2*40 = 80
	out := engine.Decide(in)
	assert.Equal(t, 80.0, out.Aggregate)
	assert.Equal(t, models.Approved{Confidence: 80}, out.Verdict)

	in.Comparison.IsValid = false
	_, review := engine.Decide(in).Verdict.(models.ManualReview)
	assert.True(t, review, "an invalid comparison never approves")
}

func TestAggregateIsClampedAndRounded(t *testing.T) {
	engine := New(DefaultPolicy())

	in := completeInput(33.333, 66.667, 77.777)
	out := engine.Decide(in)
	assert.Equal(t, 59.44, out.Aggregate)

	in = completeInput(100, 100, 100)
	in.Front.Issues = []string{"glare"}
	in.Back.Issues = []string{"glare", "crop", "shadow", "blur", "focus", "angle", "dim", "tilt", "noise", "dust", "smudge", "fold", "wear", "hue", "edge", "pixel", "fade", "spot", "line", "mark", "dot"}
	out = engine.Decide(in)
	assert.Equal(t, 0.0, out.Aggregate)
	assert.Equal(t, models.Rejected{Reason: models.ReasonLowConfidence}, out.Verdict)
}

func TestDecideIsDeterministic(t *testing.T) {
	engine := New(DefaultPolicy())
	in := completeInput(70, 68, 74)
	in.Liveness.Issues = []string{"low light"}

	first := engine.Decide(in)
	for range 50 {
		assert.Equal(t, first, engine.Decide(in))
	}

	t.Run("case id depends on the evidence", func(t *testing.T) {
		other := in
		other.Back = doc(true, 69)
		assert.NotEqual(t, CaseID(in), CaseID(other))
	})

	t.Run("case id depends on the session", func(t *testing.T) {
		other := in
		other.SessionID = models.NewSessionID()
		assert.NotEqual(t, CaseID(in), CaseID(other))
	})
}

func TestClassify(t *testing.T) {
	tests := map[string]IssueCategory{
		"Tampering suspected":        IssueTampering,
		"possible forgery":           IssueTampering,
		"screen replay detected":     IssueTampering,
		"face mismatch":              IssueMismatch,
		"Inconsistent dates":         IssueMismatch,
		"glare":                      IssueQuality,
		"document partially cropped": IssueQuality,
		"Document is not authentic":  IssueTampering,
		"security features altered":  IssueTampering,
		"data inconsistent with MRZ": IssueMismatch,

		"authenticity features obscured by glare": IssueQuality,
		"inconsistent lighting":                   IssueQuality,
		"unaltered background required":           IssueQuality,
	}
	for issue, want := range tests {
		assert.Equal(t, want, Classify(issue), issue)
	}
}

func TestRecaptureReplacesTheEvidence(t *testing.T) {
	engine := New(DefaultPolicy())

	testutil.Given(t, "a blurred but valid front that lands in review", func(t *testing.T) {
		in := completeInput(60, 90, 90)
		in.Front.Issues = []string{"image blurry"}

		out := engine.Decide(in)
		review, ok := out.Verdict.(models.ManualReview)
		require.True(t, ok, "got %T", out.Verdict)
		assert.Equal(t, models.PriorityNormal, review.Priority)
		assert.Equal(t, 74.5, out.Aggregate)

		testutil.When(t, "the front is captured again with a clean result", func(t *testing.T) {
			in.Front = doc(true, 95)

			testutil.Then(t, "the old issue no longer counts and the session is approved", func(t *testing.T) {
				out := engine.Decide(in)
				assert.Equal(t, models.Approved{Confidence: 91.75}, out.Verdict)
				assert.Zero(t, out.Penalty)
			})
		})
	})
}
