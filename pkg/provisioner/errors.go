// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package provisioner

import (
	"errors"
	"net/http"

	"github.com/aws/smithy-go"
)

// Kind classifies a provisioning failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindProvider is any provider error without a more specific kind.
	KindProvider
	KindNotFound
	KindAccessDenied
	KindConflict
	// KindLocalIO covers local files that are missing or unreadable.
	KindLocalIO
	KindTemplateNotFound
	KindIPLookup
	// KindMalformedPolicy is a rendered policy that is not valid JSON, or one
	// the provider rejected as malformed.
	KindMalformedPolicy
	// KindInvalidValue is a substitution value that contains a template token.
	KindInvalidValue
	// KindInvalidKey is a KMS key that is missing or not enabled.
	KindInvalidKey
)

func (k Kind) String() string {
	switch k {
	case KindProvider:
		return "provider"
	case KindNotFound:
		return "not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindConflict:
		return "conflict"
	case KindLocalIO:
		return "local_io"
	case KindTemplateNotFound:
		return "template_not_found"
	case KindIPLookup:
		return "ip_lookup"
	case KindMalformedPolicy:
		return "malformed_policy"
	case KindInvalidValue:
		return "invalid_value"
	case KindInvalidKey:
		return "invalid_key"
	default:
		return "unknown"
	}
}

// Error is returned by every provisioner operation.
type Error struct {
	Op      string
	Bucket  string
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Op + " " + e.Bucket + ": " + e.Message
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// classifyProvider maps an SDK error onto a Kind using the API error code,
// falling back to the HTTP status for bodiless responses such as HeadBucket.
func classifyProvider(err error) Kind {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket", "NoSuchKey", "NoSuchBucketPolicy":
			return KindNotFound
		case "AccessDenied", "Forbidden", "AllAccessDisabled", "InvalidAccessKeyId",
			"SignatureDoesNotMatch", "ExpiredToken":
			return KindAccessDenied
		case "BucketAlreadyExists", "BucketAlreadyOwnedByYou", "OperationAborted":
			return KindConflict
		case "MalformedPolicy":
			return KindMalformedPolicy
		}
	}

	var respErr interface{ HTTPStatusCode() int }
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return KindNotFound
		case http.StatusForbidden:
			return KindAccessDenied
		case http.StatusConflict:
			return KindConflict
		}
	}
	return KindProvider
}

// providerMessage returns the provider's message when there is one.
func providerMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}
	return err.Error()
}
