package bundle

import (
	"fmt"

	"github.com/vburojevic/simlaunch/internal/domain"
)

// ErrorKind enumerates the ways a packaged app can be broken. Each kind is an
// error itself so callers can use errors.Is(err, bundle.BundleNotFound).
type ErrorKind int

const (
	BundleNotFound ErrorKind = iota + 1
	ManifestNotFound
	IdentifierNotFound
)

// PackagingErrorCode is shared by every packaging failure.
const PackagingErrorCode = 1

func (k ErrorKind) Error() string {
	switch k {
	case BundleNotFound:
		return "App bundle couldn't be found, this installer was packaged incorrectly."
	case ManifestNotFound:
		return "Info.plist not found in packaged app, this installer was packaged incorrectly."
	case IdentifierNotFound:
		return "Bundle identifier not found in packaged app's Info.plist, this installer was packaged incorrectly."
	default:
		return fmt.Sprintf("unknown packaging error %d", int(k))
	}
}

// Name returns the machine-readable error code.
func (k ErrorKind) Name() string {
	switch k {
	case BundleNotFound:
		return "BUNDLE_NOT_FOUND"
	case ManifestNotFound:
		return "MANIFEST_NOT_FOUND"
	case IdentifierNotFound:
		return "IDENTIFIER_NOT_FOUND"
	default:
		return "PACKAGING_ERROR"
	}
}

func (k ErrorKind) Code() int      { return PackagingErrorCode }
func (k ErrorKind) Domain() string { return domain.ErrorDomain }

// Error is a packaging failure with the path that was inspected and, when
// available, the underlying filesystem or decoding error.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

var _ domain.CodedError = (*Error)(nil)

func (e *Error) Error() string {
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

func (e *Error) Code() int      { return e.Kind.Code() }
func (e *Error) Domain() string { return e.Kind.Domain() }
func (e *Error) Name() string   { return e.Kind.Name() }

// Detail describes what was inspected, for verbose diagnostics.
func (e *Error) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Path
}
