// Package models defines data structures for the AkiliQuest exploration store.
package models

import (
	"strings"
	"unicode/utf8"
)

// TitleKey normalizes a topic title into its identity: lower-cased, trimmed,
// with runs of whitespace collapsed to one space. Stores use it as the
// uniqueness key so "Jazz", "JAZZ" and "Black  Holes"/"black holes" collapse.
func TitleKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// TopicLength counts the characters of a trimmed topic input.
func TopicLength(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// ContainsFold reports whether list holds s ignoring case.
func ContainsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// AppendUnique appends s to list unless it is already present.
func AppendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
