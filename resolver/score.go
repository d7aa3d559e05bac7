/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package resolver

import "sort"

// Sub-key scores used when ranking aggregate candidates.
const (
	ScoreMatch      = 1.0
	ScoreUndeclared = 0.5
	ScoreMismatch   = 0.0
)

// Score orders candidates: higher Primary wins, then higher Secondary.
type Score struct {
	Primary   float64
	Secondary float64
}

// Better reports whether s strictly outranks o.
func (s Score) Better(o Score) bool {
	if s.Primary != o.Primary {
		return s.Primary > o.Primary
	}
	return s.Secondary > o.Secondary
}

// Strategy folds a candidate's sub-key scores into a Score.
type Strategy func(sub []float64) Score

// MinThenSum scores by the weakest sub-key, breaking ties by the total. A
// candidate with no sub-keys scores as a perfect match.
func MinThenSum(sub []float64) Score {
	if len(sub) == 0 {
		return Score{Primary: ScoreMatch}
	}
	lowest, sum := sub[0], 0.0
	for _, v := range sub {
		if v < lowest {
			lowest = v
		}
		sum += v
	}
	return Score{Primary: lowest, Secondary: sum}
}

// Rank orders candidate indices best first. Candidates with equal scores keep
// their declaration order.
func Rank(subScores [][]float64, strategy Strategy) []int {
	scores := make([]Score, len(subScores))
	order := make([]int, len(subScores))
	for i, sub := range subScores {
		scores[i] = strategy(sub)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]].Better(scores[order[b]])
	})
	return order
}
