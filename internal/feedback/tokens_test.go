package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chemguess-service/internal/domain"
)

func TestSplitTokens(t *testing.T) {
	assert.Equal(t, []string{"强电解质", "易水解"}, SplitTokens(KindHydrolysis, " 强电解质 / 易水解 /"))
	assert.Equal(t, []string{"无色", "液体"}, SplitTokens(KindState, "无色　液体"))
	assert.Equal(t, []string{"弱酸性"}, SplitTokens(KindAcidBase, " 弱酸性 "))
	assert.Empty(t, SplitTokens(KindOther, ""))
}

func TestCompareTokensStatePairs(t *testing.T) {
	assert.Equal(t, []TokenVerdict{{Token: "液体", Verdict: domain.Partial}}, CompareTokens(KindState, "液体", "溶液"))
	assert.Equal(t, []TokenVerdict{{Token: "溶液", Verdict: domain.Partial}}, CompareTokens(KindState, "溶液", "液体"))
	assert.Equal(t, []TokenVerdict{
		{Token: "无色", Verdict: domain.Correct},
		{Token: "晶体", Verdict: domain.Partial},
	}, CompareTokens(KindState, "无色 晶体", "固体 无色"))
}

func TestCompareTokensHydrolysisNegation(t *testing.T) {
	got := CompareTokens(KindHydrolysis, "不水解/可电解", "易水解/电解质")
	assert.Equal(t, []TokenVerdict{
		{Token: "不水解", Verdict: domain.Wrong},
		{Token: "可电解", Verdict: domain.Partial},
	}, got)
}

func TestCompareTokensOther(t *testing.T) {
	got := CompareTokens(KindOther, "有腐蚀性/易燃", "有挥发性")
	assert.Equal(t, domain.Partial, got[0].Verdict)
	assert.Equal(t, domain.Wrong, got[1].Verdict)
}

func TestCompareTokensAcidBase(t *testing.T) {
	assert.Equal(t, domain.Partial, CompareTokens(KindAcidBase, "强酸", "弱酸")[0].Verdict)
	assert.Equal(t, domain.Wrong, CompareTokens(KindAcidBase, "两性", "弱酸")[0].Verdict)
	assert.Equal(t, domain.Wrong, CompareTokens(KindAcidBase, "强酸", "")[0].Verdict)
}

func TestDetailMatchesGuessTokens(t *testing.T) {
	b := Detail(hydrochloricAcid(), sulfuricAcid())
	assert.Len(t, b.AcidBase, 1)
	assert.Equal(t, domain.Correct, b.HydrolysisElectrolysis[0].Verdict)
	assert.Equal(t, domain.Wrong, b.State[0].Verdict)
}
