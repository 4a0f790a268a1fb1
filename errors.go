package archiveagent

import "github.com/sedwardstx/DprgArchiveAgent/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation         = domain.ErrValidation
	ErrRetrievalFailure   = domain.ErrRetrievalFailure
	ErrGenerationFailure  = domain.ErrGenerationFailure
	ErrAmbiguousReference = domain.ErrAmbiguousReference
	ErrConversationBusy   = domain.ErrConversationBusy
	ErrDocumentNotFound   = domain.ErrDocumentNotFound
)
