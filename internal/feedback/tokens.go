package feedback

import (
	"strings"
	"unicode"

	"chemguess-service/internal/domain"
)

// Kind selects how a label value is split into tokens and which near-miss
// rules apply to its tokens.
type Kind int

const (
	KindAcidBase Kind = iota
	KindHydrolysis
	KindState
	KindOther
)

// TokenVerdict grades a single token of a guessed label.
type TokenVerdict struct {
	Token   string         `json:"token"`
	Verdict domain.Verdict `json:"verdict"`
}

// Breakdown is the token-level grading of every scalar label of a guess.
type Breakdown struct {
	AcidBase               []TokenVerdict `json:"acidBase"`
	HydrolysisElectrolysis []TokenVerdict `json:"hydrolysisElectrolysis"`
	State                  []TokenVerdict `json:"state"`
	Other                  []TokenVerdict `json:"other"`
}

var (
	stateKeywords      = []string{"固体", "液体", "气体", "晶体", "溶液"}
	hydrolysisKeywords = []string{"水解", "电解"}

	// statePairs are treated as near misses in both directions.
	statePairs = map[string]string{
		"液体": "溶液",
		"溶液": "液体",
		"固体": "晶体",
		"晶体": "固体",
	}
)

// negationPrefix marks a hydrolysis token as negated ("不水解"). Negated and
// plain tokens never earn keyword credit against each other; the whole-value
// cascade in CompareLabelValue does not look at it.
const negationPrefix = "不"

// Detail grades every scalar label token by token.
func Detail(guess, answer domain.Compound) Breakdown {
	return Breakdown{
		AcidBase:               CompareTokens(KindAcidBase, guess.Labels.AcidBase, answer.Labels.AcidBase),
		HydrolysisElectrolysis: CompareTokens(KindHydrolysis, guess.Labels.HydrolysisElectrolysis, answer.Labels.HydrolysisElectrolysis),
		State:                  CompareTokens(KindState, guess.Labels.State, answer.Labels.State),
		Other:                  CompareTokens(KindOther, guess.Labels.Other, answer.Labels.Other),
	}
}

// CompareTokens grades each token of guess against the full token set of answer.
func CompareTokens(kind Kind, guess, answer string) []TokenVerdict {
	answerTokens := SplitTokens(kind, answer)
	guessTokens := SplitTokens(kind, guess)
	out := make([]TokenVerdict, 0, len(guessTokens))
	for _, t := range guessTokens {
		out = append(out, TokenVerdict{Token: t, Verdict: classifyToken(kind, t, answerTokens)})
	}
	return out
}

// SplitTokens splits a label the way it is displayed: acid/base is one token,
// hydrolysis and other split on '/', state splits on whitespace.
func SplitTokens(kind Kind, value string) []string {
	var parts []string
	switch kind {
	case KindHydrolysis, KindOther:
		parts = strings.Split(value, "/")
	case KindState:
		parts = strings.FieldsFunc(value, unicode.IsSpace)
	default:
		parts = []string{value}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(stripSpace(p), "/")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func classifyToken(kind Kind, token string, answer []string) domain.Verdict {
	if len(answer) == 0 {
		return domain.Wrong
	}
	for _, a := range answer {
		if strings.EqualFold(a, token) {
			return domain.Correct
		}
	}
	switch kind {
	case KindAcidBase:
		g, a := normalize(token), normalize(answer[0])
		if (isAcid(g) && isAcid(a)) || (isBase(g) && isBase(a)) {
			return domain.Partial
		}
	case KindState:
		if pair, ok := statePairs[token]; ok && contains(answer, pair) {
			return domain.Partial
		}
		for _, a := range answer {
			if sharesKeyword(token, a, stateKeywords) {
				return domain.Partial
			}
		}
	case KindHydrolysis:
		negated := strings.HasPrefix(token, negationPrefix)
		for _, a := range answer {
			if strings.HasPrefix(a, negationPrefix) == negated && sharesKeyword(token, a, hydrolysisKeywords) {
				return domain.Partial
			}
		}
	case KindOther:
		for _, a := range answer {
			if sharedRunes(token, a) >= 2 {
				return domain.Partial
			}
		}
	}
	return domain.Wrong
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// sharedRunes counts distinct runes present in both strings.
func sharedRunes(a, b string) int {
	seen := make(map[rune]struct{})
	for _, r := range b {
		seen[r] = struct{}{}
	}
	n := 0
	counted := make(map[rune]struct{})
	for _, r := range a {
		if _, ok := seen[r]; !ok {
			continue
		}
		if _, dup := counted[r]; dup {
			continue
		}
		counted[r] = struct{}{}
		n++
	}
	return n
}
