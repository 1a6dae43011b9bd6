package advisor

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// message is a user query folded to lower case. Turkish and generic case
// mappings disagree on dotted and dotless i, so both foldings are kept and a
// keyword matches if it is found in either.
type message struct {
	folds []string
	words map[string]struct{}
}

func newMessage(raw string) *message {
	m := &message{words: make(map[string]struct{})}
	for _, tag := range []language.Tag{language.Turkish, language.Und} {
		folded := cases.Lower(tag).String(raw)
		m.folds = append(m.folds, folded)
		for _, w := range strings.FieldsFunc(folded, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}) {
			m.words[w] = struct{}{}
		}
	}
	return m
}

func (m *message) contains(sub string) bool {
	for _, f := range m.folds {
		if strings.Contains(f, sub) {
			return true
		}
	}
	return false
}

func (m *message) hasWord(w string) bool {
	_, ok := m.words[w]
	return ok
}

// predicate is a boolean test over a folded message.
type predicate func(*message) bool

// anyOf matches when any of subs occurs as a substring.
func anyOf(subs ...string) predicate {
	return func(m *message) bool {
		for _, s := range subs {
			if m.contains(s) {
				return true
			}
		}
		return false
	}
}

// word matches when any of ws occurs as a whole word. Used for short stems
// that would otherwise fire inside unrelated words.
func word(ws ...string) predicate {
	return func(m *message) bool {
		for _, w := range ws {
			if m.hasWord(w) {
				return true
			}
		}
		return false
	}
}

func allOf(ps ...predicate) predicate {
	return func(m *message) bool {
		for _, p := range ps {
			if !p(m) {
				return false
			}
		}
		return true
	}
}

func either(ps ...predicate) predicate {
	return func(m *message) bool {
		for _, p := range ps {
			if p(m) {
				return true
			}
		}
		return false
	}
}

func not(p predicate) predicate {
	return func(m *message) bool { return !p(m) }
}
