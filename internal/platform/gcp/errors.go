package gcp

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/qsl-cards-backend/internal/platform/objstore"
)

func classifyError(op objstore.Op, key string, err error) error {
	if err == nil {
		return nil
	}
	return objstore.AsAccessError(backendName, op, key, accessErrorKind(err), err)
}

// accessErrorKind maps JSON API, gRPC and transport failures onto the small
// set of causes callers can act on.
func accessErrorKind(err error) objstore.AccessErrorKind {
	if errors.Is(err, storage.ErrBucketNotExist) {
		return objstore.AccessErrorBucket
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized:
			return objstore.AccessErrorCredentials
		case http.StatusForbidden:
			return objstore.AccessErrorPermission
		case http.StatusNotFound, http.StatusBadRequest:
			return objstore.AccessErrorBucket
		}
	}

	switch status.Code(err) {
	case codes.Unauthenticated:
		return objstore.AccessErrorCredentials
	case codes.PermissionDenied:
		return objstore.AccessErrorPermission
	case codes.NotFound, codes.InvalidArgument:
		return objstore.AccessErrorBucket
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return objstore.AccessErrorEndpoint
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return objstore.AccessErrorEndpoint
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "could not find default credentials"),
		strings.Contains(msg, "invalid_grant"),
		strings.Contains(msg, "oauth2: cannot fetch token"):
		return objstore.AccessErrorCredentials
	}
	return objstore.AccessErrorUnknown
}
