package entities

import (
	"errors"
)

var (
	ErrMissingImages      = errors.New("both images and an action are required")
	ErrMissingCredential  = errors.New("api key is not configured")
	ErrNoImageReturned    = errors.New("no image data received from Gemini API")
	ErrDispatchInProgress = errors.New("a fusion request is already in progress")
	ErrSessionNotFound    = errors.New("session not found")
)

// 画面に表示する文言
const (
	MessageMissingInputs     = "Please upload both images and select an action."
	MessageMissingCredential = "API key is not configured. Please set the GEMINI_API_KEY environment variable."
	MessageNoImage           = "The model did not return an image. Please try a different prompt or images."
	MessageReadFailed        = "Failed to read image file"
	messageServicePrefix     = "Failed to generate image: "
)

type ErrorKind string

const (
	ErrorKindInput       ErrorKind = "input"
	ErrorKindIO          ErrorKind = "io"
	ErrorKindService     ErrorKind = "service"
	ErrorKindEmptyResult ErrorKind = "empty_result"
)

// FusionError carries the user-facing message for one failed attempt.
type FusionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *FusionError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *FusionError) Unwrap() error {
	return e.Err
}

func NewInputError(message string, err error) *FusionError {
	return &FusionError{Kind: ErrorKindInput, Message: message, Err: err}
}

func NewReadError(err error) *FusionError {
	return &FusionError{Kind: ErrorKindIO, Message: MessageReadFailed, Err: err}
}

// NewServiceError forwards the underlying error text behind a generic prefix.
func NewServiceError(err error) *FusionError {
	return &FusionError{Kind: ErrorKindService, Message: messageServicePrefix + err.Error(), Err: err}
}

func NewEmptyResultError() *FusionError {
	return &FusionError{Kind: ErrorKindEmptyResult, Message: MessageNoImage, Err: ErrNoImageReturned}
}

// UserMessage returns the text shown in the error banner.
func UserMessage(err error) string {
	var fe *FusionError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return messageServicePrefix + err.Error()
}

func KindOf(err error) ErrorKind {
	var fe *FusionError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ErrorKindService
}
