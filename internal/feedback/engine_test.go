package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chemguess-service/internal/domain"
)

func sulfuricAcid() domain.Compound {
	return domain.Compound{
		Formula: "H2SO4",
		Name:    "硫酸",
		Labels: domain.Labels{
			AcidBase:               "强酸",
			HydrolysisElectrolysis: "强电解质",
			State:                  "液体",
			Reactions:              []string{"H2SO4+NaOH→Na2SO4+H2O"},
			Other:                  "有腐蚀性",
		},
	}
}

func hydrochloricAcid() domain.Compound {
	return domain.Compound{
		Formula: "HCl",
		Name:    "氯化氢",
		Labels: domain.Labels{
			AcidBase:               "强酸",
			HydrolysisElectrolysis: "强电解质",
			State:                  "气体",
			Reactions:              []string{"HCl+NaOH→NaCl+H2O"},
			Other:                  "有挥发性",
		},
	}
}

func TestCompareIdentity(t *testing.T) {
	for _, c := range []domain.Compound{sulfuricAcid(), hydrochloricAcid()} {
		fb := Compare(c, c)
		assert.True(t, fb.IsCorrect, c.Formula)
		assert.Equal(t, domain.Correct, fb.AcidBase)
		assert.Equal(t, domain.Correct, fb.HydrolysisElectrolysis)
		assert.Equal(t, domain.Correct, fb.State)
		assert.Equal(t, domain.Correct, fb.Other)
		assert.Equal(t, domain.Correct, fb.ReactionsOverall)
	}
}

func TestCompareHydrochloricAgainstSulfuric(t *testing.T) {
	fb := Compare(hydrochloricAcid(), sulfuricAcid())

	assert.False(t, fb.IsCorrect)
	// identical "强酸" labels stop at the exact rule, so the acid family
	// rule never runs and the verdict is correct rather than partial
	assert.Equal(t, domain.Correct, fb.AcidBase)
	assert.Equal(t, domain.Wrong, fb.State)
	assert.Equal(t, domain.Correct, fb.HydrolysisElectrolysis)
	assert.Equal(t, domain.Wrong, fb.Other)
	require.Len(t, fb.Reactions, 1)
	// neither reaction contains the leading half of the other, so the shared
	// "NaOH" alone does not earn partial
	assert.Equal(t, domain.Wrong, fb.Reactions[0])
	assert.Equal(t, domain.Wrong, fb.ReactionsOverall)
}

func TestCompareFormulaIgnoresCase(t *testing.T) {
	guess := sulfuricAcid()
	guess.Formula = "h2so4"
	assert.True(t, Compare(guess, sulfuricAcid()).IsCorrect)
}

func TestCompareLabelValue(t *testing.T) {
	tests := []struct {
		name   string
		guess  string
		answer string
		want   domain.Verdict
	}{
		{"missing guess", "", "强酸", domain.Wrong},
		{"missing answer", "强酸", "", domain.Wrong},
		{"blank guess", "   ", "强酸", domain.Wrong},
		{"exact", "强酸", "强酸", domain.Correct},
		{"exact ignoring case and space", " Strong ", "strong", domain.Correct},
		{"acid family", "强酸", "弱酸", domain.Partial},
		{"base family", "强碱", "弱碱性", domain.Partial},
		{"acid against base", "强酸", "强碱", domain.Wrong},
		{"neutral is not acid", "中性", "弱酸", domain.Wrong},
		{"amphoteric only exact", "两性", "两性偏酸", domain.Wrong},
		{"shared keyword", "易水解", "可水解/可电解", domain.Partial},
		{"state keyword", "无色液体", "液体", domain.Partial},
		{"token overlap", "强电解质/易溶", "易溶 不挥发", domain.Partial},
		{"bare acid token", "酸 性", "酸/x", domain.Partial},
		{"single rune tokens dropped", "a/b", "b/c", domain.Wrong},
		{"nothing shared", "有腐蚀性", "有挥发性", domain.Wrong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareLabelValue(tt.guess, tt.answer))
		})
	}
}

func TestCompareStatePairsBothDirections(t *testing.T) {
	assert.Equal(t, domain.Partial, CompareState("液体", "溶液"))
	assert.Equal(t, domain.Partial, CompareState("溶液", "液体"))
	assert.Equal(t, domain.Partial, CompareState("固体", "晶体"))
	assert.Equal(t, domain.Partial, CompareState("晶体", "固体"))
	assert.Equal(t, domain.Wrong, CompareState("气体", "液体"))
	assert.Equal(t, domain.Wrong, CompareState("", "液体"))
}

func TestCompareReactionsIndexedByGuess(t *testing.T) {
	guess := []string{
		"NaOH+HCl→NaCl+H2O",
		"2NaOH+CO2→Na2CO3+H2O",
		"Fe+S→FeS",
	}
	answer := []string{"NaOH+HCl→NaCl+H2O"}

	got := CompareReactions(guess, answer)
	require.Len(t, got, 3)
	assert.Equal(t, []domain.Verdict{domain.Correct, domain.Wrong, domain.Wrong}, got)
	assert.Equal(t, domain.Partial, OverallReactions(got))
}

func TestCompareReactionsHalfPrefix(t *testing.T) {
	got := CompareReactions([]string{"NAOH+HCL→NaCl"}, []string{"NaOH+HCl→NaCl+H2O"})
	assert.Equal(t, []domain.Verdict{domain.Partial}, got)
}

func TestOverallReactions(t *testing.T) {
	assert.Equal(t, domain.Wrong, OverallReactions(nil))
	assert.Equal(t, domain.Correct, OverallReactions([]domain.Verdict{domain.Correct, domain.Correct}))
	assert.Equal(t, domain.Partial, OverallReactions([]domain.Verdict{domain.Wrong, domain.Partial}))
	assert.Equal(t, domain.Wrong, OverallReactions([]domain.Verdict{domain.Wrong, domain.Wrong}))
}

func TestCompareEmptyReactions(t *testing.T) {
	guess := sulfuricAcid()
	guess.Labels.Reactions = nil
	fb := Compare(guess, sulfuricAcid())
	assert.Empty(t, fb.Reactions)
	assert.Equal(t, domain.Wrong, fb.ReactionsOverall)
}
