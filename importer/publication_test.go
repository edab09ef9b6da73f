package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonsonwune/admissions/models"
)

const samplePublication = `ჩარიცხულთა სია 2024
2024	1
101	თბილისის	სახელმწიფო	უნივერსიტეტი
101010	ეკონომიკა
ქართული	უცხოური	მათემატიკა	%	კოეფიციენტი
1	100234	55.5	60	400	1520.5	100
2	100567	48	52.25	380	1410	30
3	100890	40	45	350	1300
101	თბილისის	სახელმწიფო	უნივერსიტეტი	(დუბლიკატი)
101020	ისტორია
ქართული	ისტორია	უცხოური	%	კოეფიციენტი
1	200111	70	65	50	1500	70
101020	ისტორია	გაგრძელება
ქართული	მათემატიკა	%	კოეფიციენტი
2	200222	61	58	1490
`

func TestParsePublication(t *testing.T) {
	pub, err := ParsePublication(strings.NewReader(samplePublication))
	require.NoError(t, err)

	require.Len(t, pub.Schools, 1)
	assert.Equal(t, "თბილისის სახელმწიფო უნივერსიტეტი", pub.Schools["101"].Name)

	require.Len(t, pub.Faculties, 2)
	economics := pub.Faculties["101010"]
	assert.Equal(t, "ეკონომიკა", economics.Name)
	assert.Equal(t, []models.Subject{models.Georgian, models.English, models.Math}, economics.Order)

	history := pub.Faculties["101020"]
	assert.Equal(t, "ისტორია", history.Name, "first header and declaration for a faculty win")
	assert.Equal(t, []models.Subject{models.Georgian, models.History, models.English}, history.Order)

	require.Len(t, pub.Students, 5)

	first := pub.Students[0]
	assert.Equal(t, "100234", first.ID)
	assert.Equal(t, "101010", first.FacultyID)
	assert.Equal(t, "1520.5", first.OverallScore)
	assert.Equal(t, models.GrantHundred, first.Grant)
	assert.Equal(t, models.Scores{
		models.Georgian: models.Scaled(55.5),
		models.English:  models.Scaled(60),
		models.Math:     models.Scaled(400),
	}, first.Scores)

	assert.Equal(t, models.GrantNone, pub.Students[1].Grant, "unknown grant code")
	assert.Equal(t, models.GrantZero, pub.Students[2].Grant, "no trailing grant field")
	assert.Equal(t, models.GrantSeventy, pub.Students[3].Grant)

	// The repeated faculty header keeps the faculty entity from its first
	// declaration, while rows follow the most recent declaration's layout.
	last := pub.Students[4]
	assert.Equal(t, "101020", last.FacultyID)
	assert.Equal(t, "1490", last.OverallScore)
	assert.Equal(t, models.Scores{
		models.Georgian: models.Scaled(61),
		models.Math:     models.Scaled(58),
	}, last.Scores)
	assert.Equal(t, models.GrantZero, last.Grant)

	assert.Equal(t, 15, pub.Stats.TotalLines)
	assert.Equal(t, 5, pub.Stats.Rows[RowStudent])
	assert.Equal(t, 2, pub.Stats.Rows[RowSchool])
	assert.Equal(t, 3, pub.Stats.Rows[RowFaculty])
	assert.Equal(t, 3, pub.Stats.Rows[RowSubjects])
}

func TestParsePublicationPreservesInputOrder(t *testing.T) {
	input := "101010\tფაკულტეტი\nმათემატიკა\t%\tx\n" +
		"1\t3\t10\t450.00\n" +
		"2\t1\t20\t450.00\n" +
		"3\t2\t30\t450.00\n"

	pub, err := ParsePublication(strings.NewReader(input))
	require.NoError(t, err)

	ids := make([]string, 0, len(pub.Students))
	for _, s := range pub.Students {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"3", "1", "2"}, ids)
}

func TestParsePublicationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   error
		line  int
	}{
		{
			name:  "student row missing the overall score",
			input: "101010\tფაკულტეტი\nქართული\tმათემატიკა\t%\tx\n1\t100\t50\t60\n",
			err:   ErrMissingColumn,
			line:  3,
		},
		{
			name:  "NaN subject score",
			input: "101010\tფაკულტეტი\nმათემატიკა\t%\tx\n1\t300007\t400\t1400\n2\t300009\tNaN\t1500\n",
			err:   ErrInvalidNumber,
			line:  4,
		},
		{
			name:  "infinite subject score",
			input: "101010\tფაკულტეტი\nმათემატიკა\t%\tx\n1\t300009\tInf\t1500\n",
			err:   ErrInvalidNumber,
			line:  3,
		},
		{
			name:  "negative infinite overall score",
			input: "101010\tფაკულტეტი\nმათემატიკა\t%\tx\n1\t300009\t400\t-Infinity\n",
			err:   ErrInvalidNumber,
			line:  3,
		},
		{
			name:  "declaration before any faculty",
			input: "101\tსკოლა\nქართული\t%\tx\n",
			err:   ErrNoFaculty,
			line:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePublication(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)

			var lineErr *LineError
			require.ErrorAs(t, err, &lineErr)
			assert.Equal(t, tt.line, lineErr.Line)
		})
	}
}
