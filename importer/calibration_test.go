package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonsonwune/admissions/models"
)

func TestLoadCalibration(t *testing.T) {
	input := `subject,kind,value,scaled
math,minimum,20
math,maximum,80
math,anchor,50,500
math,anchor,35,450
ისტორია,maximum,60
ისტორია,maximum,70
english,anchor,30,120
`
	cal, err := LoadCalibration(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cal, 3)

	math, ok := cal.Stats(models.Math)
	require.True(t, ok)
	require.NotNil(t, math.Min)
	require.NotNil(t, math.Max)
	assert.Equal(t, models.Equalized(20), *math.Min)
	assert.Equal(t, models.Equalized(80), *math.Max)
	assert.Equal(t, []models.Score{
		models.EqualizedAndScaled(500, 50),
		models.EqualizedAndScaled(450, 35),
	}, math.Anchors, "anchors keep file order")

	history, ok := cal.Stats(models.History)
	require.True(t, ok)
	assert.Equal(t, models.Equalized(70), *history.Max, "last maximum wins")
	require.NotNil(t, history.Min)
	assert.InDelta(t, 14.0, history.Min.Equalized, 1e-9, "minimum defaults to a fifth of the maximum")

	english, ok := cal.Stats(models.English)
	require.True(t, ok)
	assert.Nil(t, english.Min)
	assert.Nil(t, english.Max)
	assert.Len(t, english.Anchors, 1)

	_, ok = cal.Stats(models.Physics)
	assert.False(t, ok)
}

func TestCalibrationStatsReturnsCopy(t *testing.T) {
	cal, err := LoadCalibration(strings.NewReader("math,maximum,80\nmath,anchor,50,500\n"))
	require.NoError(t, err)

	st, _ := cal.Stats(models.Math)
	st.Max.Equalized = 1
	st.Anchors[0] = models.Equalized(0)

	again, _ := cal.Stats(models.Math)
	assert.Equal(t, 80.0, again.Max.Equalized)
	assert.Equal(t, models.EqualizedAndScaled(500, 50), again.Anchors[0])
}

func TestLoadCalibrationErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		err     error
		message string
	}{
		{"unknown subject with suggestion", "math,maximum,80\nmaht,maximum,80\n", ErrUnknownSubject, `did you mean "math"`},
		{"unknown kind", "math,median,50\n", ErrUnknownKind, "median"},
		{"bad number", "math,maximum,eighty\n", ErrInvalidNumber, "eighty"},
		{"NaN value", "math,minimum,NaN\n", ErrInvalidNumber, "NaN"},
		{"infinite maximum", "math,maximum,Inf\n", ErrInvalidNumber, "Inf"},
		{"infinite anchor scaled value", "math,anchor,50,-Infinity\n", ErrInvalidNumber, "-Infinity"},
		{"anchor without scaled value", "math,anchor,50\n", ErrMissingColumn, "math"},
		{"short record", "math,maximum,80\nmath,anchor\n", ErrMissingColumn, "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCalibration(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("math", "math"))
	assert.Equal(t, 2, levenshteinDistance("maht", "math"))
	assert.Equal(t, 4, levenshteinDistance("", "math"))
}
