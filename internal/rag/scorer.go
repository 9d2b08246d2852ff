package rag

import (
	"strings"

	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

// Score computes the tiered relevance of one item against an expanded term
// set. Pure: same inputs always produce the same score.
//
// For each expanded term found in the item's search text:
//
//	+10  the term equals the original query
//	 +5  the term is a synonym of the concept named by the literal query
//	 +2  the term occurs inside some concept's synonym list
//	 +1  anything else (plain query word or prefix)
//
// A zero score means the item is not a candidate at all.
func Score(item *model.CorpusItem, expandedTerms []string, queryLower string) int {
	if item.SearchText == "" {
		return 0
	}

	querySynonyms := synonymsForConcept(queryLower)
	score := 0
	for _, term := range expandedTerms {
		if term == "" || !strings.Contains(item.SearchText, term) {
			continue
		}
		switch {
		case term == queryLower:
			score += 10
		case containsTerm(querySynonyms, term):
			score += 5
		case inAnySynonymList(term):
			score += 2
		default:
			score++
		}
	}
	return score
}

func containsTerm(list []string, term string) bool {
	for _, s := range list {
		if s == term {
			return true
		}
	}
	return false
}
