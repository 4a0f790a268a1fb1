package domain

import "errors"

var (
	// ErrValidation signals invalid filter or parameter values.
	ErrValidation = errors.New("validation failed")
	// ErrRetrievalFailure signals an unreachable or misbehaving search backend.
	ErrRetrievalFailure = errors.New("retrieval failed")
	// ErrGenerationFailure signals that both primary and fallback model calls failed.
	ErrGenerationFailure = errors.New("generation failed")
	// ErrAmbiguousReference signals a document reference that cannot be resolved.
	ErrAmbiguousReference = errors.New("ambiguous document reference")
	// ErrConversationBusy signals a second concurrent turn for the same conversation.
	ErrConversationBusy = errors.New("conversation is processing another turn")
	// ErrDocumentNotFound signals a missing archive document.
	ErrDocumentNotFound = errors.New("document not found")
)
