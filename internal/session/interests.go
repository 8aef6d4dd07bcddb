package session

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minInterestLen = 5
	maxInterests   = 32
)

var stopWords = map[string]struct{}{
	"about": {}, "after": {}, "again": {}, "their": {}, "there": {},
	"these": {}, "thing": {}, "think": {}, "where": {}, "which": {},
	"while": {}, "would": {}, "could": {}, "should": {}, "hello": {},
	"thanks": {}, "please": {}, "because": {}, "really": {},
	"alors": {}, "merci": {}, "bonjour": {}, "salut": {}, "parce": {},
	"quand": {}, "comme": {}, "est-ce": {}, "aussi": {}, "toujours": {},
}

// interests counts distinct lowercase terms across user turns.
type interests struct {
	counts map[string]int
}

func newInterests() *interests {
	return &interests{counts: make(map[string]int)}
}

func (in *interests) observe(text string) {
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	}) {
		word = strings.Trim(word, "-")
		if utf8.RuneCountInString(word) < minInterestLen {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, seen := in.counts[word]; !seen && len(in.counts) >= maxInterests {
			continue
		}
		in.counts[word]++
	}
}

func (in *interests) reset() {
	clear(in.counts)
}

// top returns up to n terms by descending count, ties broken by term.
func (in *interests) top(n int) []string {
	if n <= 0 || len(in.counts) == 0 {
		return nil
	}
	terms := make([]string, 0, len(in.counts))
	for term := range in.counts {
		terms = append(terms, term)
	}
	slices.SortFunc(terms, func(a, b string) int {
		if c := cmp.Compare(in.counts[b], in.counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
