// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

// Package textmatch finds keyword occurrences in free text.
//
// Keywords and text are both normalized with Normalize before matching, so a
// keyword matches wherever it appears as a case-insensitive substring. The
// Automaton scans a text once regardless of how many keywords it holds, which
// keeps per-record keyword scoring linear in the record's text length.
package textmatch

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize lower-cases s using Unicode case mapping.
func Normalize(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Tokenize normalizes s, splits it on whitespace, and keeps tokens longer than minLen runes.
func Tokenize(s string, minLen int) []string {
	fields := strings.Fields(Normalize(s))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > minLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Automaton is an Aho-Corasick matcher over a fixed keyword set.
// It is immutable after New and safe for concurrent use.
type Automaton struct {
	root     *node
	patterns []string
}

type node struct {
	children map[rune]*node
	failure  *node
	output   []int // indices of patterns ending here, including via failure links
}

// Match is one keyword occurrence.
type Match struct {
	Pattern  string // normalized keyword
	Index    int    // position of the keyword in the slice given to New
	Position int    // byte offset of the match in the normalized text
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// New builds an automaton for patterns. Empty patterns never match.
func New(patterns []string) *Automaton {
	a := &Automaton{
		root:     newNode(),
		patterns: make([]string, len(patterns)),
	}
	for i, p := range patterns {
		a.patterns[i] = Normalize(p)
		if a.patterns[i] != "" {
			a.insert(i, a.patterns[i])
		}
	}
	a.buildFailureLinks()
	return a
}

func (a *Automaton) insert(index int, pattern string) {
	n := a.root
	for _, ch := range pattern {
		child := n.children[ch]
		if child == nil {
			child = newNode()
			n.children[ch] = child
		}
		n = child
	}
	n.output = append(n.output, index)
}

// buildFailureLinks wires each node to the longest proper suffix that is also
// a trie path, breadth first so that shallower links exist before use.
func (a *Automaton) buildFailureLinks() {
	queue := make([]*node, 0, len(a.root.children))
	for _, child := range a.root.children {
		child.failure = a.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}

			if fail == nil {
				child.failure = a.root
				continue
			}
			child.failure = fail.children[ch]
			child.output = append(child.output, child.failure.output...)
		}
	}
}

// PatternCount returns the number of patterns given to New.
func (a *Automaton) PatternCount() int {
	return len(a.patterns)
}

// scan walks the normalized text and calls emit for every pattern ending at
// each position. emit returns false to stop early.
func (a *Automaton) scan(text string, emit func(patternIdx, end int) bool) {
	if len(a.root.children) == 0 {
		return
	}

	n := a.root
	for i, ch := range text {
		for n != nil && n.children[ch] == nil {
			n = n.failure
		}
		if n == nil {
			n = a.root
			continue
		}
		n = n.children[ch]

		end := i + utf8.RuneLen(ch)
		for _, idx := range n.output {
			if !emit(idx, end) {
				return
			}
		}
	}
}

// Search returns every keyword occurrence in text.
func (a *Automaton) Search(text string) []Match {
	var matches []Match
	a.scan(Normalize(text), func(idx, end int) bool {
		matches = append(matches, Match{
			Pattern:  a.patterns[idx],
			Index:    idx,
			Position: end - len(a.patterns[idx]),
		})
		return true
	})
	return matches
}

// Present reports, per pattern index, whether the pattern occurs in text.
func (a *Automaton) Present(text string) []bool {
	found := make([]bool, len(a.patterns))
	a.scan(Normalize(text), func(idx, _ int) bool {
		found[idx] = true
		return true
	})
	return found
}

// CountPresent returns how many patterns occur at least once in text. Repeated
// occurrences count once; a pattern given to New twice counts twice.
func (a *Automaton) CountPresent(text string) int {
	count := 0
	for _, ok := range a.Present(text) {
		if ok {
			count++
		}
	}
	return count
}

// Contains reports whether any pattern occurs in text.
func (a *Automaton) Contains(text string) bool {
	found := false
	a.scan(Normalize(text), func(int, int) bool {
		found = true
		return false
	})
	return found
}
