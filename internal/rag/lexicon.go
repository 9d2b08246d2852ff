// Package rag implements the question-answering pipeline: plan a retrieval
// strategy with the LLM, execute a keyword search over the corpus snapshot,
// then synthesize a grounded answer.
package rag

import (
	"sort"
	"strings"
)

// conceptSynonyms maps each domain concept to the terms customers use for it.
// Static data tuned to the support domain; scoring treats concept membership
// as a relevance signal.
var conceptSynonyms = map[string][]string{
	"complaint":        {"complaint", "issue", "problem", "concern", "disappointed", "frustrated", "unhappy", "unsatisfied"},
	"refund":           {"refund", "return", "money back", "reimbursement", "credit", "compensation"},
	"quality":          {"quality", "defective", "broken", "malfunction", "faulty", "poor quality", "bad quality"},
	"safety":           {"safety", "unsafe", "dangerous", "hazard", "risk", "harmful"},
	"shipping":         {"shipping", "delivery", "shipped", "tracking", "package", "mail"},
	"battery":          {"battery", "charge", "charging", "power", "dead battery", "low battery"},
	"gps":              {"gps", "location", "tracking", "coordinates", "position", "map"},
	"app":              {"app", "application", "software", "mobile", "phone", "device"},
	"customer_service": {"customer service", "support", "help", "assistance", "agent", "representative"},
	"topic":            {"topic", "theme", "subject", "matter", "subject matter"},
	"common":           {"common", "frequent", "often", "typical", "usual", "regular"},
}

// Expand lowercases the query and unions in the synonyms of every concept the
// query touches, the query's own words, and first-4-character prefixes of
// words longer than 4 characters. The prefix trick catches morphological
// variants ("charging"/"charge") without a real stemmer; it is a known source
// of false positives and is tunable, not load-bearing.
//
// The result is sorted and never empty for a non-blank query.
func Expand(query string) []string {
	queryLower := strings.ToLower(query)
	terms := make(map[string]struct{})

	for _, synonyms := range conceptSynonyms {
		matched := false
		for _, syn := range synonyms {
			if strings.Contains(queryLower, syn) {
				matched = true
				break
			}
		}
		if matched {
			for _, syn := range synonyms {
				terms[syn] = struct{}{}
			}
		}
	}

	for _, word := range strings.Fields(queryLower) {
		terms[word] = struct{}{}
		if len(word) > 4 {
			terms[word[:4]] = struct{}{}
		}
	}

	out := make([]string, 0, len(terms))
	for t := range terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// synonymsForConcept returns the synonym list when the literal query string
// names a concept, or nil.
func synonymsForConcept(queryLower string) []string {
	return conceptSynonyms[queryLower]
}

// inAnySynonymList reports whether term occurs as a substring of any
// concept's synonyms.
func inAnySynonymList(term string) bool {
	for _, synonyms := range conceptSynonyms {
		for _, syn := range synonyms {
			if strings.Contains(syn, term) {
				return true
			}
		}
	}
	return false
}
