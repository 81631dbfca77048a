package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) localClock {
	return func() time.Time { return t }
}

func TestTableResolver_Resolve(t *testing.T) {
	// 2026-01-15 12:00 UTC，避开夏令时争议月份
	r := &TableResolver{now: fixedClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))}

	hhmm, hour, ok := r.Resolve("UTC+8（北京、上海、香港）")
	require.True(t, ok)
	assert.Equal(t, "20:00", hhmm)
	assert.Equal(t, 20, hour)
}

func TestTableResolver_UnknownLabel(t *testing.T) {
	r := NewTableResolver()
	_, _, ok := r.Resolve("亚特兰蒂斯")
	assert.False(t, ok)
}

func TestTableResolver_LegacyLabelNormalized(t *testing.T) {
	r := &TableResolver{now: fixedClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))}

	hhmm, _, ok := r.Resolve("北京时间（北京）")
	require.True(t, ok)
	assert.Equal(t, "20:00", hhmm)
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "UTC+9（东京、首尔）", NormalizeLabel("东京时间（东京）"))
	assert.Equal(t, "UTC+9（东京、首尔）", NormalizeLabel("UTC+9（东京、首尔）"))
	assert.Equal(t, "随便写的", NormalizeLabel("随便写的"))
}

func TestLabels_CoverTable(t *testing.T) {
	labels := Labels()
	assert.Len(t, labels, len(timezoneTable))
	for _, label := range labels {
		_, ok := timezoneTable[label]
		assert.True(t, ok)
	}
}
