// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"encoding/json"
	"fmt"
)

// Document is a bucket policy document. The structure mirrors AWS bucket
// policies closely enough to summarise what a rendered template grants.
//
// Example:
//
//	{
//	  "Version": "2012-10-17",
//	  "Statement": [{
//	    "Effect": "Allow",
//	    "Principal": "*",
//	    "Action": "s3:GetObject",
//	    "Resource": "arn:aws:s3:::mybucket/*",
//	    "Condition": {"IpAddress": {"aws:SourceIp": "203.0.113.5/32"}}
//	  }]
//	}
type Document struct {
	Version    string      `json:"Version,omitempty"`
	ID         string      `json:"Id,omitempty"`
	Statements []Statement `json:"Statement"`
}

// Statement is a single permission statement.
type Statement struct {
	Sid          string               `json:"Sid,omitempty"`
	Effect       Effect               `json:"Effect"`
	Principal    json.RawMessage      `json:"Principal,omitempty"`
	Actions      StringOrSlice        `json:"Action,omitempty"`
	NotActions   StringOrSlice        `json:"NotAction,omitempty"`
	Resources    StringOrSlice        `json:"Resource,omitempty"`
	NotResources StringOrSlice        `json:"NotResource,omitempty"`
	Condition    map[string]Condition `json:"Condition,omitempty"`
}

type Effect string

const (
	EffectAllow Effect = "Allow"
	EffectDeny  Effect = "Deny"
)

// Condition maps a condition key (aws:SourceIp, s3:prefix, ...) to its values.
type Condition map[string]StringOrSlice

// StringOrSlice handles JSON fields that can be either a string or []string
type StringOrSlice []string

func (s *StringOrSlice) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = []string{str}
		return nil
	}
	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	*s = arr
	return nil
}

func (s StringOrSlice) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

// Parse decodes a rendered policy. Only the envelope is checked; the provider
// remains authoritative on whether the policy is acceptable.
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	return &d, nil
}

// SourceIPs returns every aws:SourceIp value referenced by any statement.
func (d *Document) SourceIPs() []string {
	var ips []string
	for _, st := range d.Statements {
		for _, cond := range st.Condition {
			for key, values := range cond {
				if key == "aws:SourceIp" {
					ips = append(ips, values...)
				}
			}
		}
	}
	return ips
}
