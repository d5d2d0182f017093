package ports

import (
	"context"

	"idproof/internal/kyc/models"
)

//go:generate mockgen -source=handoff.go -destination=mocks/handoff_mock.go -package=mocks

// HandoffPort receives the terminal result. The caller owns persistence, routing
// and any manual review surface from here on.
type HandoffPort interface {
	Deliver(ctx context.Context, result Result) error
}

// ProgressNotifier is told about stage changes, e.g. to refresh a badge counter in
// the surrounding application. Implementations must not block.
type ProgressNotifier interface {
	StageChanged(ctx context.Context, id models.SessionID, from, to models.Stage)
}

// Result is the hand-off payload: {approved, verdict, artifacts}.
type Result struct {
	SessionID    models.SessionID
	Approved     bool
	Verdict      models.Verdict
	Artifacts    Artifacts
	ReviewTicket string
}

// Artifacts carries image references and scores, never image bytes.
type Artifacts struct {
	Front      *models.DocumentArtifact
	Back       *models.DocumentArtifact
	Liveness   *models.BiometricArtifact
	Comparison *models.BiometricArtifact
}
