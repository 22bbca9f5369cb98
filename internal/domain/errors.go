package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken signals a signup attempt with an already registered email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrIncorrectEmail signals a login attempt with an unknown email.
	ErrIncorrectEmail = errors.New("incorrect email")
	// ErrIncorrectPassword signals a login attempt with a wrong password.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrUnsupportedFormat signals an upload with an extension no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyText signals an extraction that produced no usable text.
	ErrEmptyText = errors.New("no text extracted")
	// ErrUpstream signals a failure of a hosted service (LLM, embeddings,
	// speech-to-text). Requests fail as a whole on the first upstream error;
	// there is no retry.
	ErrUpstream = errors.New("upstream service error")
)
