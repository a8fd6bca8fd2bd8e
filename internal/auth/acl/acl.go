// Package acl matches dotted-segment scope strings against granted ACL
// patterns.
//
// Grammar of a granted pattern:
//
//	pattern  = ["!"] segment *("." segment)
//	segment  = literal | "*" | "#"
//
// "*" matches exactly one segment. "#" matches zero or more trailing segments
// and is only valid as the last segment; a pattern with "#" anywhere else
// never matches. A leading "!" turns the pattern into a negation. Patterns
// are evaluated in declared order and the last matching one decides.
package acl

import "strings"

const (
	Separator     = "."
	SingleWild    = "*"
	MultiWild     = "#"
	NegatePrefix  = "!"
	SelfReference = "me"
)

// Matches reports whether the granted patterns allow the required scope. An
// empty required scope always succeeds.
func Matches(granted []string, required string) bool {
	return MatchesFor(granted, required, "")
}

// MatchesFor is Matches with "me" substitution: a pattern segment "me" also
// matches the given authID. An empty authID disables the substitution.
func MatchesFor(granted []string, required, authID string) bool {
	if required == "" {
		return true
	}

	want := strings.Split(required, Separator)
	allowed := false
	for _, pattern := range granted {
		negated := strings.HasPrefix(pattern, NegatePrefix)
		if negated {
			pattern = pattern[len(NegatePrefix):]
		}
		if pattern == "" {
			continue
		}
		if matchSegments(strings.Split(pattern, Separator), want, authID) {
			allowed = !negated
		}
	}
	return allowed
}

func matchSegments(pattern, want []string, authID string) bool {
	for i, seg := range pattern {
		if seg == MultiWild {
			// only valid in final position
			return i == len(pattern)-1
		}
		if i >= len(want) {
			return false
		}
		switch {
		case seg == SingleWild:
		case seg == want[i]:
		case seg == SelfReference && authID != "" && want[i] == authID:
		default:
			return false
		}
	}
	return len(pattern) == len(want)
}

// Valid reports whether a pattern is well formed.
func Valid(pattern string) bool {
	pattern = strings.TrimPrefix(pattern, NegatePrefix)
	if pattern == "" {
		return false
	}
	segs := strings.Split(pattern, Separator)
	for i, seg := range segs {
		if seg == MultiWild && i != len(segs)-1 {
			return false
		}
	}
	return true
}
