package response

import (
	"errors"
	"net/http"

	"github.com/yungbote/qsl-cards-backend/internal/domain/cards"
	"github.com/yungbote/qsl-cards-backend/internal/platform/apierr"
	"github.com/yungbote/qsl-cards-backend/internal/platform/objstore"
)

// FromError maps domain and storage failures onto stable application codes.
// Unclassified errors become a generic 500 that does not leak internals.
func FromError(err error) *apierr.Error {
	if ae, ok := apierr.As(err); ok {
		return ae
	}

	var verr *cards.ValidationError
	var access *objstore.AccessError
	switch {
	case errors.As(err, &verr):
		return &apierr.Error{Status: http.StatusBadRequest, Code: apierr.CodeValidation, Message: verr.Error(), Err: err}
	case errors.As(err, &access):
		return fromAccessError(access)
	case errors.Is(err, cards.ErrCardNotFound):
		return &apierr.Error{Status: http.StatusNotFound, Code: apierr.CodeNotFound, Message: cards.ErrCardNotFound.Error(), Err: err}
	case errors.Is(err, cards.ErrIDRequired),
		errors.Is(err, cards.ErrInvalidRole),
		errors.Is(err, cards.ErrNotSequence):
		return &apierr.Error{Status: http.StatusBadRequest, Code: apierr.CodeMalformed, Message: rootMessage(err), Err: err}
	default:
		return &apierr.Error{Status: http.StatusInternalServerError, Code: apierr.CodeReadFailed, Message: "internal error", Err: err}
	}
}

func fromAccessError(e *objstore.AccessError) *apierr.Error {
	out := &apierr.Error{Status: http.StatusInternalServerError, Err: e}
	switch e.Kind {
	case objstore.AccessErrorCredentials:
		out.Code, out.Message = apierr.CodeStoreCredentials, "storage credentials rejected"
	case objstore.AccessErrorPermission:
		out.Code, out.Message = apierr.CodeStorePermission, "storage permission denied"
	case objstore.AccessErrorBucket:
		out.Code, out.Message = apierr.CodeStoreBucket, "storage bucket not found or invalid"
	case objstore.AccessErrorEndpoint:
		out.Code, out.Message = apierr.CodeStoreEndpoint, "storage endpoint or region unreachable"
	default:
		if e.Op == objstore.OpWrite {
			out.Code, out.Message = apierr.CodeWriteFailed, "data write failed"
		} else {
			out.Code, out.Message = apierr.CodeReadFailed, "data read failed"
		}
	}
	return out
}

// rootMessage drops the service-layer wrapping so clients see the sentinel's
// text.
func rootMessage(err error) string {
	for _, sentinel := range []error{cards.ErrIDRequired, cards.ErrInvalidRole, cards.ErrNotSequence} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
