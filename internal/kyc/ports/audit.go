package ports

import (
	"context"

	"idproof/pkg/platform/audit"
)

//go:generate mockgen -source=audit.go -destination=mocks/audit_mock.go -package=mocks

// AuditPublisher mirrors audit.Publisher so the kyc packages only depend on ports.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
