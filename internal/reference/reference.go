// Package reference maps human-facing identifiers (roll numbers, subject codes, emails)
// onto storage lookups.
//
// Parsing a reference yields a Plan: an ordered list of lookups to try, most specific
// first. Callers execute the plan and stop at the first hit. The order is part of the
// contract.
package reference

import (
	"strings"
)

const (
	rollAliasPrefix = "student"
	rollPadWidth    = 3
	// ids are UUIDs; codes are short. Anything longer than this with a separator is treated as an id.
	subjectIDMinLen    = 20
	subjectIDSeparator = "-"
)

// Key is the field a lookup matches on.
type Key string

const (
	KeyID    Key = "id"
	KeyEmail Key = "email"
	KeyCode  Key = "code"
)

// Lookup one exact-match query.
type Lookup struct {
	Key   Key
	Value string
}

// Plan lookups in precedence order.
type Plan []Lookup

func (p Plan) add(key Key, value string) Plan {
	if value == "" {
		return p
	}
	for _, l := range p {
		if l.Key == key && l.Value == value {
			return p
		}
	}
	return append(p, Lookup{Key: key, Value: value})
}

// Scheme institution-specific formats.
type Scheme struct {
	EmailDomain   string
	SubjectPrefix string
}

// NewScheme normalizes the configured domain.
func NewScheme(emailDomain, subjectPrefix string) Scheme {
	return Scheme{
		EmailDomain:   strings.ToLower(strings.TrimPrefix(strings.TrimSpace(emailDomain), "@")),
		SubjectPrefix: subjectPrefix,
	}
}

// NormalizeEmail trims and lower-cases an address. Emails are stored in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RollToEmail builds the canonical alias student<NNN>@domain.
// Rolls shorter than three digits are zero-padded; non-digit input yields "".
func (s Scheme) RollToEmail(roll string) string {
	roll = strings.TrimSpace(roll)
	if !isDigits(roll) {
		return ""
	}
	if len(roll) < rollPadWidth {
		roll = strings.Repeat("0", rollPadWidth-len(roll)) + roll
	}
	return rollAliasPrefix + roll + "@" + s.EmailDomain
}

// EmailToRoll extracts the roll suffix from a canonical alias, or "" if email is not one.
func (s Scheme) EmailToRoll(email string) string {
	local, domain, ok := splitEmail(NormalizeEmail(email))
	if !ok || domain != s.EmailDomain {
		return ""
	}
	roll, found := strings.CutPrefix(local, rollAliasPrefix)
	if !found || !isDigits(roll) {
		return ""
	}
	return roll
}

// IsSubjectIDShape reports whether ref looks like an internal subject id.
func IsSubjectIDShape(ref string) bool {
	return len(ref) > subjectIDMinLen && strings.Contains(ref, subjectIDSeparator)
}

// StripSubjectPrefix removes the fixed code prefix, if present.
func (s Scheme) StripSubjectPrefix(ref string) string {
	if s.SubjectPrefix == "" {
		return ref
	}
	return strings.TrimPrefix(ref, s.SubjectPrefix)
}

// StudentPlan parses a student reference.
//
//	contains "@"  -> email
//	otherwise     -> id, roll alias (digits only), raw value as email
func (s Scheme) StudentPlan(ref string) Plan {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}

	var plan Plan
	if strings.Contains(ref, "@") {
		return plan.add(KeyEmail, NormalizeEmail(ref))
	}

	plan = plan.add(KeyID, ref)
	plan = plan.add(KeyEmail, s.RollToEmail(ref))
	plan = plan.add(KeyEmail, NormalizeEmail(ref))
	return plan
}

// SubjectPlan parses a subject reference.
//
//	id-shaped -> id, then code with prefix stripped
//	otherwise -> code with prefix stripped
func (s Scheme) SubjectPlan(ref string) Plan {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}

	var plan Plan
	if IsSubjectIDShape(ref) {
		plan = plan.add(KeyID, ref)
	}
	return plan.add(KeyCode, strings.TrimSpace(s.StripSubjectPrefix(ref)))
}

// LocalPart returns the part of an address before the last "@".
func LocalPart(email string) string {
	local, _, ok := splitEmail(email)
	if !ok {
		return email
	}
	return local
}

func splitEmail(email string) (local, domain string, ok bool) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", "", false
	}
	return email[:at], email[at+1:], true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
