// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy renders bucket policy templates and parses the resulting
// IAM-style policy documents.
//
// A template is plain JSON text containing the literal tokens <bucket-name>
// and <ip-address>. Substitution is textual: every occurrence is replaced,
// including occurrences inside keys or longer strings.
package policy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	BucketToken = "<bucket-name>"
	IPToken     = "<ip-address>"
)

// ErrTokenInValue is returned when a substitution value itself contains a
// template token, which would make the rendered output depend on ordering.
var ErrTokenInValue = errors.New("substitution value contains a template token")

// SyntaxError reports rendered text that is not valid JSON.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return "rendered policy is not valid JSON: " + e.Err.Error()
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Substitute replaces every occurrence of the bucket and IP tokens in tmpl.
// The result is not validated.
func Substitute(tmpl, bucket, ip string) (string, error) {
	for _, v := range []struct{ name, value string }{
		{"bucket name", bucket},
		{"ip address", ip},
	} {
		if strings.Contains(v.value, BucketToken) || strings.Contains(v.value, IPToken) {
			return "", fmt.Errorf("%s %q: %w", v.name, v.value, ErrTokenInValue)
		}
	}
	return strings.NewReplacer(BucketToken, bucket, IPToken, ip).Replace(tmpl), nil
}

// Render substitutes the tokens in tmpl, checks the result is a single JSON
// value and returns it in compact form, ready to submit as a bucket policy.
func Render(tmpl []byte, bucket, ip string) ([]byte, error) {
	text, err := Substitute(string(tmpl), bucket, ip)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return nil, &SyntaxError{Err: err}
	}
	return buf.Bytes(), nil
}
