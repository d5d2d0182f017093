package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// SessionID identifies one verification attempt.
type SessionID uuid.UUID

func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

func (id SessionID) String() string {
	return uuid.UUID(id).String()
}

func (id SessionID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// ParseSessionID rejects empty, malformed and nil UUIDs.
func ParseSessionID(s string) (SessionID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || parsed == uuid.Nil {
		return SessionID{}, ErrInvalidSessionID()
	}
	return SessionID(parsed), nil
}

// Channel is a contact medium proven through a one-time code.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelPhone
}

// Purpose is forwarded to the verifier so it can template the code message.
type Purpose string

const (
	PurposeIdentityVerification Purpose = "identity_verification"
	PurposeContactUpdate        Purpose = "contact_update"
)

// Contact is supplied once when the session starts and never changes.
type Contact struct {
	Email string
	Phone string
}

// Value returns the contact value for channel, or "" when absent.
func (c Contact) Value(ch Channel) string {
	switch ch {
	case ChannelEmail:
		return strings.TrimSpace(c.Email)
	case ChannelPhone:
		return strings.TrimSpace(c.Phone)
	default:
		return ""
	}
}

// Side is one face of an identity document.
type Side string

const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

// Sides lists every side the document step requires.
var Sides = []Side{SideFront, SideBack}

func (s Side) IsValid() bool {
	return s == SideFront || s == SideBack
}

// Profile selects how strict the liveness stage is.
type Profile string

const (
	// ProfileStandard accepts a valid liveness capture on its own.
	ProfileStandard Profile = "standard"
	// ProfileStrict additionally requires a document-face vs selfie comparison.
	ProfileStrict Profile = "strict"
)

func (p Profile) IsValid() bool {
	return p == ProfileStandard || p == ProfileStrict
}

// Capture is one user-supplied image.
type Capture struct {
	Ref  string
	Data []byte
}

// NewCapture derives a content-addressed reference when the caller supplies none.
func NewCapture(ref string, data []byte) Capture {
	ref = strings.TrimSpace(ref)
	if ref == "" && len(data) > 0 {
		sum := sha256.Sum256(data)
		ref = "sha256:" + hex.EncodeToString(sum[:])
	}
	return Capture{Ref: ref, Data: data}
}

func (c Capture) IsEmpty() bool {
	return len(c.Data) == 0
}
