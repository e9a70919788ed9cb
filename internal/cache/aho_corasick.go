package cache

import (
	"strings"
	"sync"
)

// AhoCorasick implements the Aho-Corasick string matching algorithm: it
// finds all occurrences of a set of patterns in a text in a single pass,
// O(n + m + z), instead of scanning the text once per pattern. Used by the
// transfer-daemon adapter to test a result filename against a configured
// title blacklist without a scan per blacklist term.
type AhoCorasick struct {
	mu            sync.RWMutex
	root          *acNode
	patterns      []Pattern
	built         bool
	caseSensitive bool
}

// acNode is a node in the Aho-Corasick automaton.
type acNode struct {
	children map[rune]*acNode
	failure  *acNode
	output   []int
	depth    int
}

// Pattern is a search pattern with optional associated data.
type Pattern struct {
	Text string
	Data any
}

// Match is a pattern match in the searched text.
type Match struct {
	Pattern  string
	Data     any
	Position int
}

// NewAhoCorasick creates a case-insensitive automaton.
func NewAhoCorasick() *AhoCorasick {
	return &AhoCorasick{root: newACNode(0)}
}

func newACNode(depth int) *acNode {
	return &acNode{children: make(map[rune]*acNode), depth: depth}
}

// AddPattern registers a pattern. Must be called before Build.
func (ac *AhoCorasick) AddPattern(pattern string, data any) {
	if pattern == "" {
		return
	}
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.built = false
	ac.patterns = append(ac.patterns, Pattern{Text: pattern, Data: data})
}

// AddPatterns registers multiple patterns sharing the same associated data.
func (ac *AhoCorasick) AddPatterns(patterns []string, data any) {
	for _, p := range patterns {
		ac.AddPattern(p, data)
	}
}

// Build constructs the automaton from the registered patterns. Must be
// called after the last AddPattern/AddPatterns and before Search.
func (ac *AhoCorasick) Build() {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.built {
		return
	}

	ac.root = newACNode(0)
	for i, p := range ac.patterns {
		ac.insertPattern(i, p.Text)
	}
	ac.buildFailureLinks()
	ac.built = true
}

func (ac *AhoCorasick) insertPattern(index int, pattern string) {
	node := ac.root
	text := pattern
	if !ac.caseSensitive {
		text = strings.ToLower(pattern)
	}
	for _, ch := range text {
		if node.children[ch] == nil {
			node.children[ch] = newACNode(node.depth + 1)
		}
		node = node.children[ch]
	}
	node.output = append(node.output, index)
}

func (ac *AhoCorasick) buildFailureLinks() {
	queue := make([]*acNode, 0, len(ac.root.children))
	for _, child := range ac.root.children {
		child.failure = ac.root
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
				child.failure = ac.root
			} else {
				child.failure = fail.children[ch]
				child.output = append(child.output, child.failure.output...)
			}
		}
	}
}

// Search returns every pattern match in text, with start positions.
func (ac *AhoCorasick) Search(text string) []Match {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	if !ac.built || len(ac.patterns) == 0 {
		return nil
	}

	searchText := text
	if !ac.caseSensitive {
		searchText = strings.ToLower(text)
	}

	var matches []Match
	node := ac.root
	for i, ch := range searchText {
		for node != nil && node.children[ch] == nil {
			node = node.failure
		}
		if node == nil {
			node = ac.root
			continue
		}
		node = node.children[ch]
		for _, patternIdx := range node.output {
			pattern := ac.patterns[patternIdx]
			matches = append(matches, Match{Pattern: pattern.Text, Data: pattern.Data, Position: i - len(pattern.Text) + 1})
		}
	}
	return matches
}

// SearchFirst returns the first match in text, if any.
func (ac *AhoCorasick) SearchFirst(text string) (Match, bool) {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	if !ac.built || len(ac.patterns) == 0 {
		return Match{}, false
	}

	searchText := text
	if !ac.caseSensitive {
		searchText = strings.ToLower(text)
	}

	node := ac.root
	for i, ch := range searchText {
		for node != nil && node.children[ch] == nil {
			node = node.failure
		}
		if node == nil {
			node = ac.root
			continue
		}
		node = node.children[ch]
		if len(node.output) > 0 {
			pattern := ac.patterns[node.output[0]]
			return Match{Pattern: pattern.Text, Data: pattern.Data, Position: i - len(pattern.Text) + 1}, true
		}
	}
	return Match{}, false
}

// Contains reports whether any pattern matches text.
func (ac *AhoCorasick) Contains(text string) bool {
	_, found := ac.SearchFirst(text)
	return found
}

// PatternCount returns the number of registered patterns.
func (ac *AhoCorasick) PatternCount() int {
	ac.mu.RLock()
	defer ac.mu.RUnlock()
	return len(ac.patterns)
}
