package handler

import (
	"encoding/base64"
	"strings"

	"idproof/internal/kyc/models"
	dErrors "idproof/pkg/domain-errors"
)

const (
	maxContactLen  = 254
	maxImageRefLen = 256
	maxCodeLen     = 12
)

// StartSessionRequest is the body of POST /v1/kyc/sessions.
type StartSessionRequest struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Profile string `json:"profile"`
}

func (r *StartSessionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Profile = strings.TrimSpace(r.Profile)
	if len(r.Email) > maxContactLen || len(r.Phone) > maxContactLen {
		return dErrors.New(dErrors.CodeValidation, "contact values must be at most 254 characters")
	}
	if r.Email == "" && r.Phone == "" {
		return dErrors.New(dErrors.CodeValidation, "email or phone is required")
	}
	return nil
}

// RequestCodeRequest is the body of POST .../channel/code.
type RequestCodeRequest struct {
	Channel string `json:"channel"`
	Purpose string `json:"purpose"`
}

func (r *RequestCodeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Channel = strings.ToLower(strings.TrimSpace(r.Channel))
	if !models.Channel(r.Channel).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "channel must be email or phone")
	}
	r.Purpose = strings.TrimSpace(r.Purpose)
	return nil
}

// VerifyCodeRequest is the body of POST .../channel/verify.
type VerifyCodeRequest struct {
	Channel string `json:"channel"`
	Code    string `json:"code"`
}

func (r *VerifyCodeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Channel = strings.ToLower(strings.TrimSpace(r.Channel))
	if !models.Channel(r.Channel).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "channel must be email or phone")
	}
	r.Code = strings.TrimSpace(r.Code)
	if r.Code == "" {
		return dErrors.New(dErrors.CodeValidation, "code is required")
	}
	if len(r.Code) > maxCodeLen {
		return dErrors.New(dErrors.CodeValidation, "code is too long")
	}
	return nil
}

// Image is one capture, base64 encoded. ImageRef is optional; a content hash is
// used when it is empty.
type Image struct {
	ImageBase64 string `json:"image_base64"`
	ImageRef    string `json:"image_ref"`

	capture models.Capture
}

func (i *Image) validate(field string) error {
	if strings.TrimSpace(i.ImageBase64) == "" {
		return dErrors.New(dErrors.CodeValidation, field+".image_base64 is required")
	}
	if len(i.ImageRef) > maxImageRefLen {
		return dErrors.New(dErrors.CodeValidation, field+".image_ref is too long")
	}
	data, err := base64.StdEncoding.DecodeString(i.ImageBase64)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, field+".image_base64 is not valid base64")
	}
	i.capture = models.NewCapture(i.ImageRef, data)
	return nil
}

// Capture returns the decoded image.
func (i *Image) Capture() models.Capture {
	return i.capture
}

// ImageRequest is the body of single capture endpoints.
type ImageRequest struct {
	Image
}

func (r *ImageRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return r.validate("image")
}

// DocumentsRequest submits both sides at once.
type DocumentsRequest struct {
	Front Image `json:"front"`
	Back  Image `json:"back"`
}

func (r *DocumentsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := r.Front.validate("front"); err != nil {
		return err
	}
	return r.Back.validate("back")
}

// RetakeRequest names the slot to capture again.
type RetakeRequest struct {
	Slot string `json:"slot"`
}

func (r *RetakeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Slot = strings.TrimSpace(r.Slot)
	if !models.Slot(r.Slot).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "slot must be one of document_front, document_back, liveness, comparison")
	}
	return nil
}
