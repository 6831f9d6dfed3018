// Moodmuse - Mood-Based Art & Music Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmuse

package moderation

import "strings"

// termMatcher finds whether any of a fixed set of terms occurs as a
// substring of a text, using the Aho-Corasick algorithm. It matches all
// terms in a single O(n + m + z) pass instead of one strings.Contains per
// term, which matters here: the deny and allow lists carry hundreds of
// terms and the matcher runs on every record name and description.
//
// Matching is case-insensitive. The automaton is built once at
// construction and immutable afterwards, so it is safe for concurrent use
// without locking.
type termMatcher struct {
	root  *acNode
	terms []string
}

// acNode is a node in the Aho-Corasick automaton.
type acNode struct {
	children map[rune]*acNode
	failure  *acNode // longest proper suffix that is also a prefix of some term
	output   []int   // indices of terms ending at this node
}

func newACNode() *acNode {
	return &acNode{children: make(map[rune]*acNode)}
}

// newTermMatcher builds an automaton over the given terms.
// Empty terms are ignored.
func newTermMatcher(terms []string) *termMatcher {
	m := &termMatcher{root: newACNode()}

	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		m.insert(term)
	}

	m.buildFailureLinks()
	return m
}

// insert adds one lowercased term to the trie.
func (m *termMatcher) insert(term string) {
	node := m.root
	for _, ch := range term {
		if node.children[ch] == nil {
			node.children[ch] = newACNode()
		}
		node = node.children[ch]
	}
	node.output = append(node.output, len(m.terms))
	m.terms = append(m.terms, term)
}

// buildFailureLinks builds failure links using BFS.
func (m *termMatcher) buildFailureLinks() {
	queue := make([]*acNode, 0, len(m.root.children))
	for _, child := range m.root.children {
		child.failure = m.root
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
				child.failure = m.root
			} else {
				child.failure = fail.children[ch]
				child.output = append(child.output, child.failure.output...)
			}
		}
	}
}

// FirstMatch returns the first term found in text (expected lowercased by
// the caller) and whether any term matched.
func (m *termMatcher) FirstMatch(text string) (string, bool) {
	if len(m.terms) == 0 {
		return "", false
	}

	node := m.root
	for _, ch := range text {
		for node != nil && node.children[ch] == nil {
			node = node.failure
		}
		if node == nil {
			node = m.root
			continue
		}
		node = node.children[ch]

		if len(node.output) > 0 {
			return m.terms[node.output[0]], true
		}
	}

	return "", false
}

// Contains reports whether any term occurs in text.
func (m *termMatcher) Contains(text string) bool {
	_, ok := m.FirstMatch(text)
	return ok
}
