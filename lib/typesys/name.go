// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package typesys

import "strings"

// ParseTypeName splits a possibly assembly-qualified type name into
// the type name and the simple assembly name. Commas inside generic
// argument brackets do not split:
//
//	"Mono.Cecil.TypeReference, Mono.Cecil, Version=0.11.0.0"
//	    -> ("Mono.Cecil.TypeReference", "Mono.Cecil")
//	"System.Int32" -> ("System.Int32", "")
func ParseTypeName(qualified string) (typeName, assembly string) {
	depth := 0
	for index, r := range qualified {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				typeName = strings.TrimSpace(qualified[:index])
				rest := qualified[index+1:]
				if comma := strings.IndexByte(rest, ','); comma >= 0 {
					rest = rest[:comma]
				}
				return typeName, strings.TrimSpace(rest)
			}
		}
	}
	return strings.TrimSpace(qualified), ""
}

// splitArraySuffix strips trailing "[]" pairs and reports how many
// were removed.
func splitArraySuffix(name string) (string, int) {
	rank := 0
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSpace(strings.TrimSuffix(name, "[]"))
		rank++
	}
	return name, rank
}
