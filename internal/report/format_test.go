package report

import (
	"strings"
	"testing"
	"time"

	"routecast/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourPtr(hour int) *time.Time {
	t := time.Date(2026, 7, 10, hour, 0, 0, 0, time.UTC)
	return &t
}

func fact(tv float64, th int, mv float64, mh int) types.ThresholdFact {
	return types.ThresholdFact{
		ThresholdTime:  hourPtr(th),
		ThresholdValue: types.Float(tv),
		MaxTime:        hourPtr(mh),
		MaxValue:       types.Float(mv),
	}
}

func fullRecord() types.ReportRecord {
	return types.ReportRecord{
		Type:           types.ReportMorning,
		StageToday:     "Paliri",
		NightMinC:      types.Float(8.2),
		DayMaxC:        types.Float(24.4),
		RainAmount:     fact(0.2, 6, 1.4, 16),
		RainProb:       fact(55, 8, 70, 14),
		WindSpeed:      fact(21, 11, 25, 14),
		WindGust:       fact(30, 11, 38, 15),
		Thunder:        fact(45, 15, 80, 17),
		ThunderOutlook: fact(25, 13, 25, 13),
	}
}

func TestFormat_FullRecord(t *testing.T) {
	f := NewFormatter(160)
	got := f.Format(fullRecord())

	assert.Equal(t,
		"Paliri: N8 D24 R0.2@6(1.4@16) PR55%@8(70%@14) W21@11(25@14) G30@11(38@15) TH:M@15(H@17) TH+1:L@13",
		got)
	assert.LessOrEqual(t, len(got), 160)
}

func TestFormat_AbsentFieldsRenderDashes(t *testing.T) {
	f := NewFormatter(160)
	rec := types.ReportRecord{Type: types.ReportMorning, StageToday: "Conca"}
	got := f.Format(rec)

	assert.Equal(t, "Conca: N- D- R- PR- W- G- TH- TH+1:-", got)
	assert.NotContains(t, got, "0", "absence must never render as zero")
}

func TestFormat_AllAbsentGustIsDash(t *testing.T) {
	f := NewFormatter(160)
	rec := fullRecord()
	rec.WindGust = types.ThresholdFact{}
	got := f.Format(rec)
	assert.Contains(t, got, " G- ")
}

func TestFormat_MaxOnlyFactsRenderMaximum(t *testing.T) {
	f := NewFormatter(160)
	rec := types.ReportRecord{
		Type:       types.ReportDynamic,
		StageToday: "Paliri",
		DayMaxC:    types.Float(27.1),
		RainAmount: fact(0.3, 7, 1.1, 15),
		RainProb:   fact(40, 8, 65, 14),
		WindSpeed: types.ThresholdFact{
			MaxTime:  hourPtr(13),
			MaxValue: types.Float(31),
		},
		Thunder: fact(40, 14, 55, 16),
	}
	got := f.Format(rec)

	assert.Equal(t,
		"Paliri: N- D27 R0.3@7(1.1@15) PR40%@8(65%@14) W31@13 G- TH:M@14(M@16) TH+1:-",
		got)
}

func TestFormat_BelowThresholdMaximumStillShown(t *testing.T) {
	f := NewFormatter(160)
	rec := types.ReportRecord{
		Type:       types.ReportMorning,
		StageToday: "Conca",
		RainProb: types.ThresholdFact{
			MaxTime:  hourPtr(14),
			MaxValue: types.Float(20),
		},
	}
	got := f.Format(rec)
	assert.Contains(t, got, "PR20%@14")
	assert.NotContains(t, got, "PR- ")
}

func TestFormat_MaxHiddenWhenEqualToCrossing(t *testing.T) {
	f := NewFormatter(160)
	rec := types.ReportRecord{
		StageToday: "Conca",
		RainProb:   fact(60, 9, 60, 9),
	}
	got := f.Format(rec)
	assert.Contains(t, got, "PR60%@9 ")
	assert.NotContains(t, got, "PR60%@9(")
}

func TestFormat_Idempotent(t *testing.T) {
	f := NewFormatter(120)
	rec := fullRecord()
	first := f.Format(rec)
	second := f.Format(rec)
	assert.Equal(t, first, second)
}

func TestFormat_BudgetDropsWholeFields(t *testing.T) {
	rec := fullRecord()
	rec.StageToday = "Refuge de Carozzu - Ascu Stagnu par la passerelle de Spasimata et le Lac de la Muvrella"

	full := NewFormatter(300).Format(rec)
	require.Greater(t, len(full), 160, "scenario needs an over-budget record")

	got := NewFormatter(160).Format(rec)
	assert.LessOrEqual(t, len(got), 160)
	assert.NotContains(t, got, "TH+1", "lowest-priority field is dropped first")
	assert.Contains(t, got, "G30", "higher-priority fields survive")
	assert.Contains(t, got, "N8", "temperature has the highest priority")

	// Fields go whole, never cut mid-token.
	assert.Equal(t,
		rec.StageToday+": N8 D24 R0.2@6(1.4@16) PR55%@8(70%@14) W21@11(25@14) G30@11(38@15)",
		got)
}

func TestFormat_BudgetInvariantAcrossBudgets(t *testing.T) {
	rec := fullRecord()
	rec.StageToday = "Refuge de Carozzu - Ascu Stagnu"
	for _, budget := range []int{40, 60, 80, 100, 120, 123, 160} {
		got := NewFormatter(budget).Format(rec)
		assert.LessOrEqual(t, len(got), budget, "budget %d", budget)
	}
}

func TestFormat_EveningUsesTomorrowStageName(t *testing.T) {
	rec := fullRecord()
	rec.Type = types.ReportEvening
	rec.StageTomorrow = "Carozzu"
	got := NewFormatter(160).Format(rec)
	assert.True(t, strings.HasPrefix(got, "Carozzu:"), got)
}

func TestThunderLevels(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{10, "L"},
		{29.9, "L"},
		{30, "M"},
		{69, "M"},
		{70, "H"},
		{100, "H"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, thunderLevel(tc.pct), "%.1f%%", tc.pct)
	}
}
