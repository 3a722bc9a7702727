// Package feedback grades a guessed compound against the answer, attribute by
// attribute. The rules are fixed heuristics for near misses in chemistry labels.
package feedback

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"chemguess-service/internal/domain"
)

// keywords earn partial credit when both values mention the same one.
var keywords = []string{"水解", "电解", "固体", "液体", "气体", "晶体", "溶液"}

// Compare grades guess against answer. It never fails; empty labels grade as wrong.
func Compare(guess, answer domain.Compound) domain.Feedback {
	reactions := CompareReactions(guess.Labels.Reactions, answer.Labels.Reactions)
	return domain.Feedback{
		AcidBase:               CompareLabelValue(guess.Labels.AcidBase, answer.Labels.AcidBase),
		HydrolysisElectrolysis: CompareLabelValue(guess.Labels.HydrolysisElectrolysis, answer.Labels.HydrolysisElectrolysis),
		State:                  CompareState(guess.Labels.State, answer.Labels.State),
		Other:                  CompareLabelValue(guess.Labels.Other, answer.Labels.Other),
		Reactions:              reactions,
		ReactionsOverall:       OverallReactions(reactions),
		IsCorrect:              SameFormula(guess.Formula, answer.Formula),
	}
}

// SameFormula compares formulas case-insensitively.
func SameFormula(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// CompareLabelValue grades one scalar label. The first matching rule wins.
func CompareLabelValue(guess, answer string) domain.Verdict {
	g, a := normalize(guess), normalize(answer)
	if g == "" || a == "" {
		return domain.Wrong
	}
	if g == a {
		return domain.Correct
	}
	if mentionsAcidBase(g) || mentionsAcidBase(a) {
		if (isAcid(g) && isAcid(a)) || (isBase(g) && isBase(a)) {
			return domain.Partial
		}
	}
	if sharesKeyword(g, a, keywords) {
		return domain.Partial
	}
	if tokensIntersect(words(g), words(a)) {
		return domain.Partial
	}
	return domain.Wrong
}

// CompareState is CompareLabelValue plus the state pairs 液体/溶液 and 固体/晶体,
// which grade as partial in either direction.
func CompareState(guess, answer string) domain.Verdict {
	v := CompareLabelValue(guess, answer)
	if v != domain.Wrong {
		return v
	}
	answerTokens := SplitTokens(KindState, answer)
	for _, t := range SplitTokens(KindState, guess) {
		if pair, ok := statePairs[t]; ok && contains(answerTokens, pair) {
			return domain.Partial
		}
	}
	return domain.Wrong
}

// CompareReactions grades each guessed reaction against the answer's list. The
// result always has one verdict per guessed reaction.
func CompareReactions(guess, answer []string) []domain.Verdict {
	out := make([]domain.Verdict, 0, len(guess))
	for _, g := range guess {
		out = append(out, compareReaction(g, answer))
	}
	return out
}

func compareReaction(guess string, answer []string) domain.Verdict {
	for _, a := range answer {
		if a == guess {
			return domain.Correct
		}
	}
	g := strings.ToLower(guess)
	for _, a := range answer {
		a = strings.ToLower(a)
		if strings.Contains(g, firstHalf(a)) || strings.Contains(a, firstHalf(g)) {
			return domain.Partial
		}
	}
	return domain.Wrong
}

// OverallReactions folds per-reaction verdicts. No reactions grades as wrong.
func OverallReactions(verdicts []domain.Verdict) domain.Verdict {
	if len(verdicts) == 0 {
		return domain.Wrong
	}
	correct, partial := 0, 0
	for _, v := range verdicts {
		switch v {
		case domain.Correct:
			correct++
		case domain.Partial:
			partial++
		}
	}
	switch {
	case correct == len(verdicts):
		return domain.Correct
	case correct > 0 || partial > 0:
		return domain.Partial
	default:
		return domain.Wrong
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func firstHalf(s string) string {
	n := utf8.RuneCountInString(s) / 2
	return string([]rune(s)[:n])
}

func mentionsAcidBase(s string) bool {
	return strings.Contains(s, "酸") || strings.Contains(s, "碱") ||
		strings.Contains(s, "中性") || strings.Contains(s, "两性")
}

func neutralOrAmphoteric(s string) bool {
	return strings.Contains(s, "中性") || strings.Contains(s, "两性")
}

func isAcid(s string) bool {
	return strings.Contains(s, "酸") && !neutralOrAmphoteric(s)
}

func isBase(s string) bool {
	return strings.Contains(s, "碱") && !neutralOrAmphoteric(s)
}

func sharesKeyword(a, b string, vocab []string) bool {
	for _, kw := range vocab {
		if strings.Contains(a, kw) && strings.Contains(b, kw) {
			return true
		}
	}
	return false
}

// words splits on whitespace or '/', keeping multi-rune tokens and the bare
// characters 酸 and 碱.
func words(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || unicode.IsSpace(r)
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if utf8.RuneCountInString(f) > 1 || f == "酸" || f == "碱" {
			out = append(out, f)
		}
	}
	return out
}

func tokensIntersect(a, b []string) bool {
	set := make(map[string]struct{}, len(b))
	for _, t := range b {
		set[t] = struct{}{}
	}
	for _, t := range a {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}
