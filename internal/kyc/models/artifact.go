package models

import (
	"slices"
	"time"
)

// DocumentArtifact is the validation result of one document side.
type DocumentArtifact struct {
	ImageRef        string
	IsValid         bool
	Confidence      float64
	Issues          []string
	Recommendations []string
	CapturedAt      time.Time
	// Pending marks an artifact whose validation was cleared by a retake in flight.
	Pending bool
}

// BiometricArtifact is the result of a liveness check or a face comparison.
type BiometricArtifact struct {
	ImageRef   string
	IsValid    bool
	Confidence float64
	Issues     []string
	CapturedAt time.Time
	Pending    bool
}

// cleared keeps the image for display and drops everything a decision could use.
func (a *DocumentArtifact) cleared() *DocumentArtifact {
	if a == nil {
		return nil
	}
	return &DocumentArtifact{ImageRef: a.ImageRef, CapturedAt: a.CapturedAt, Pending: true}
}

func (a *BiometricArtifact) cleared() *BiometricArtifact {
	if a == nil {
		return nil
	}
	return &BiometricArtifact{ImageRef: a.ImageRef, CapturedAt: a.CapturedAt, Pending: true}
}

// Clone returns a deep copy so readers never alias session state.
func (a *DocumentArtifact) Clone() *DocumentArtifact {
	if a == nil {
		return nil
	}
	c := *a
	c.Issues = slices.Clone(a.Issues)
	c.Recommendations = slices.Clone(a.Recommendations)
	return &c
}

func (a *BiometricArtifact) Clone() *BiometricArtifact {
	if a == nil {
		return nil
	}
	c := *a
	c.Issues = slices.Clone(a.Issues)
	return &c
}

// ClampConfidence bounds a remote score to [0, 100].
func ClampConfidence(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
