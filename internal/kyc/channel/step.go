// Package channel proves possession of an email address or phone number through a
// one-time code issued and checked by the remote verifier.
package channel

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"idproof/internal/kyc/models"
	"idproof/internal/kyc/ports"
	"idproof/internal/kyc/verifier"
	"idproof/pkg/email"
	"idproof/pkg/platform/privacy"
	"idproof/pkg/platform/sentinel"
	"idproof/pkg/requestcontext"
)

// CodeStateStore persists code bookkeeping per session and channel.
type CodeStateStore interface {
	Issue(ctx context.Context, id models.SessionID, ch models.Channel, state models.CodeState, retention time.Duration) error
	Get(ctx context.Context, id models.SessionID, ch models.Channel) (models.CodeState, error)
	// AddAttempts adjusts the attempt counter of an existing state and returns the new value.
	AddAttempts(ctx context.Context, id models.SessionID, ch models.Channel, delta int) (int, error)
	Delete(ctx context.Context, id models.SessionID) error
}

// Policy bounds resends and code guesses.
type Policy struct {
	ResendCooldown time.Duration
	CodeTTL        time.Duration
	MaxAttempts    int
}

func DefaultPolicy() Policy {
	return Policy{
		ResendCooldown: 60 * time.Second,
		CodeTTL:        10 * time.Minute,
		MaxAttempts:    3,
	}
}

// retention keeps the state long enough to report an expired code rather than a
// missing one.
func (p Policy) retention() time.Duration {
	return 2*p.CodeTTL + p.ResendCooldown
}

type Step struct {
	verifier ports.ChannelVerifier
	store    CodeStateStore
	policy   Policy
	logger   *slog.Logger
}

type Option func(*Step)

func WithPolicy(p Policy) Option {
	return func(s *Step) {
		if p.MaxAttempts > 0 {
			s.policy.MaxAttempts = p.MaxAttempts
		}
		if p.ResendCooldown > 0 {
			s.policy.ResendCooldown = p.ResendCooldown
		}
		if p.CodeTTL > 0 {
			s.policy.CodeTTL = p.CodeTTL
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Step) {
		s.logger = logger
	}
}

func New(v ports.ChannelVerifier, store CodeStateStore, opts ...Option) *Step {
	s := &Step{
		verifier: v,
		store:    store,
		policy:   DefaultPolicy(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Step) Policy() Policy {
	return s.policy
}

// RequestCode sends a fresh code for ch and returns the masked contact hint. A new
// code resets the attempt counter; it is refused while the resend cooldown runs.
func (s *Step) RequestCode(ctx context.Context, sess *models.Session, ch models.Channel, purpose models.Purpose) (string, error) {
	if err := sess.RequireStage(models.StageChannelPending); err != nil {
		return "", err
	}
	contact, err := contactFor(sess, ch)
	if err != nil {
		return "", err
	}
	if purpose == "" {
		purpose = models.PurposeIdentityVerification
	}

	now := requestcontext.Now(ctx)
	prev, err := s.store.Get(ctx, sess.ID, ch)
	switch {
	case err == nil:
		if next := prev.ResendAvailableAt(s.policy.ResendCooldown); now.Before(next) {
			return "", models.ErrResendTooSoon(ceilSeconds(next.Sub(now)))
		}
	case !errors.Is(err, sentinel.ErrNotFound):
		return "", models.ErrSendFailed(err)
	}

	sent, err := verifier.RetryOnce(ctx, func(ctx context.Context) (ports.SendCodeResult, error) {
		return s.verifier.SendChannelCode(ctx, ports.SendCodeRequest{Channel: ch, Contact: contact, Purpose: purpose})
	})
	if err != nil {
		s.logger.WarnContext(ctx, "channel code send failed",
			"session_id", sess.ID.String(),
			"channel", ch,
			"category", verifier.GetCategory(err),
		)
		return "", models.ErrSendFailed(err)
	}

	masked := sent.MaskedContact
	if masked == "" {
		masked = maskLocally(ch, contact)
	}
	state := models.CodeState{
		Purpose:       purpose,
		MaskedContact: masked,
		SentAt:        now,
		ExpiresAt:     now.Add(s.policy.CodeTTL),
	}
	if err := s.store.Issue(ctx, sess.ID, ch, state, s.policy.retention()); err != nil {
		return "", models.ErrSendFailed(err)
	}
	return masked, nil
}

// SubmitCode checks code for ch. On success the channel is marked verified and the
// session advances to the document stage. Exhausted and expired codes are refused
// without contacting the verifier.
func (s *Step) SubmitCode(ctx context.Context, sess *models.Session, ch models.Channel, code string) error {
	if err := sess.RequireStage(models.StageChannelPending); err != nil {
		return err
	}
	contact, err := contactFor(sess, ch)
	if err != nil {
		return err
	}
	if code == "" {
		return models.ErrCodeRequired()
	}

	now := requestcontext.Now(ctx)
	state, err := s.store.Get(ctx, sess.ID, ch)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.ErrNoCodeIssued()
	}
	if err != nil {
		return models.ErrCodeCheckFailed(err)
	}
	if state.Attempts >= s.policy.MaxAttempts {
		return models.ErrAttemptsExhausted()
	}
	if state.IsExpired(now) {
		return models.ErrCodeExpired()
	}

	// reserve the attempt before the remote call so parallel guesses cannot exceed the bound
	attempt, err := s.store.AddAttempts(ctx, sess.ID, ch, 1)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.ErrNoCodeIssued()
	}
	if err != nil {
		return models.ErrCodeCheckFailed(err)
	}
	if attempt > s.policy.MaxAttempts {
		return models.ErrAttemptsExhausted()
	}

	ok, err := verifier.RetryOnce(ctx, func(ctx context.Context) (bool, error) {
		return s.verifier.CheckChannelCode(ctx, ports.CheckCodeRequest{
			Channel: ch,
			Contact: contact,
			Code:    code,
			Purpose: state.Purpose,
		})
	})
	if err != nil {
		// a network failure is not the user's guess; give the attempt back
		if _, rerr := s.store.AddAttempts(ctx, sess.ID, ch, -1); rerr != nil && !errors.Is(rerr, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to release code attempt", "session_id", sess.ID.String(), "error", rerr)
		}
		return models.ErrCodeCheckFailed(err)
	}

	if !ok {
		if attempt >= s.policy.MaxAttempts {
			return models.ErrAttemptsExhausted()
		}
		return models.ErrIncorrectCode(s.policy.MaxAttempts - attempt)
	}

	if err := sess.MarkChannelVerified(ch, now); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, sess.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to clear code state", "session_id", sess.ID.String(), "error", err)
	}
	return nil
}

// Discard drops any code state for the session, e.g. once it is terminal.
func (s *Step) Discard(ctx context.Context, id models.SessionID) error {
	return s.store.Delete(ctx, id)
}

func contactFor(sess *models.Session, ch models.Channel) (string, error) {
	if !ch.IsValid() {
		return "", models.ErrUnsupportedChannel(ch)
	}
	contact := sess.Contact.Value(ch)
	if contact == "" {
		return "", models.ErrMissingContact(ch)
	}
	return contact, nil
}

func maskLocally(ch models.Channel, contact string) string {
	if ch == models.ChannelEmail {
		return email.Mask(contact)
	}
	return privacy.MaskPhone(contact)
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
