package dataset

import (
	"errors"
	"log/slog"

	"github.com/workbench/tablestore/internal/objectstore"
)

// CodeSet is a set of remote error-code strings.
type CodeSet map[string]struct{}

// NewCodeSet builds a CodeSet from code strings.
func NewCodeSet(codes ...string) CodeSet {
	set := make(CodeSet, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}

// DefaultNotFoundCodes is the set of remote error codes treated as
// "resource absent": the store's own coded errors plus the not-found and
// validation codes common to S3-style services.
func DefaultNotFoundCodes() CodeSet {
	return NewCodeSet(
		objectstore.CodeObjectNotFound,
		objectstore.CodeBucketNotFound,
		"NoSuchKey",
		"NoSuchBucket",
		"NotFound",
		"ResourceNotFound",
		"ResourceNotFoundException",
		"EntityNotFoundException",
		"ValidationException",
	)
}

// Classifier turns remote-store failures into a "not found vs fatal"
// decision. Errors whose code is in the not-found set are absorbed and
// logged at warning level; everything else is logged at error level and
// propagated to the caller unchanged.
type Classifier struct {
	log      *slog.Logger
	resource string
	notFound CodeSet
}

// NewClassifier builds a classifier with the given resource label for log
// messages. A nil logger falls back to slog.Default; a nil code set falls
// back to DefaultNotFoundCodes.
func NewClassifier(log *slog.Logger, resource string, notFound CodeSet) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	if notFound == nil {
		notFound = DefaultNotFoundCodes()
	}
	return &Classifier{log: log, resource: resource, notFound: notFound}
}

// For returns a copy of the classifier labeled with a specific resource
// name, for per-call-site log messages.
func (c *Classifier) For(resource string) *Classifier {
	return &Classifier{log: c.log, resource: resource, notFound: c.notFound}
}

// NotFound reports whether err is a "resource absent" failure, logging it
// either way. err must be non-nil.
func (c *Classifier) NotFound(err error) bool {
	var coded interface{ CodeValue() string }
	if errors.As(err, &coded) {
		if _, ok := c.notFound[coded.CodeValue()]; ok {
			c.log.Warn("resource not found, returning empty",
				"resource", c.resource, "code", coded.CodeValue())
			return true
		}
	}
	c.log.Error("unexpected remote error",
		"resource", c.resource, "error", err)
	return false
}

// NotFoundAsEmpty invokes fn, mapping not-found failures to the zero
// value with a nil error. Any other failure is returned unchanged, so
// callers can still distinguish permission or configuration problems from
// simple absence.
func NotFoundAsEmpty[T any](c *Classifier, fn func() (T, error)) (T, error) {
	v, err := fn()
	if err == nil {
		return v, nil
	}
	var zero T
	if c.NotFound(err) {
		return zero, nil
	}
	return zero, err
}
