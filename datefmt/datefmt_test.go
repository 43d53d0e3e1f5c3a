package datefmt

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostDateMediumFormat(t *testing.T) {
	f := PostDate("", time.UTC)
	s, err := f(time.Date(2024, time.January, 5, 10, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "Jan 5, 2024", s)
}

func TestPostDateContainsYearAndMonth(t *testing.T) {
	f := PostDate(DefaultLocale, time.UTC)
	months := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	for year := 1999; year <= 2031; year += 4 {
		for m := time.January; m <= time.December; m++ {
			d := time.Date(year, m, 28, 12, 0, 0, 0, time.UTC)
			s, err := f(d)
			require.NoError(t, err)
			require.NotEmpty(t, s)
			assert.Contains(t, s, strconv.Itoa(year))
			assert.True(t, strings.HasPrefix(s, months[m-1]), s)
		}
	}
}

func TestPostDateUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	f := PostDate("en-US", tokyo)
	s, err := f(time.Date(2023, time.December, 31, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "Jan 1, 2024", s)
}

func TestPostDateStrings(t *testing.T) {
	f := PostDate("en-US", time.UTC)
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-09", "Mar 9, 2024"},
		{"2024-03-09T08:00:00", "Mar 9, 2024"},
		{"2024-03-09 08:00:00", "Mar 9, 2024"},
		{"2024-03-09T08:00:00Z", "Mar 9, 2024"},
	}
	for _, tt := range tests {
		s, err := f(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, s, tt.in)
	}
}

func TestPostDatePointer(t *testing.T) {
	d := time.Date(2020, time.July, 4, 0, 0, 0, 0, time.UTC)
	s, err := PostDate("en-US", time.UTC)(&d)
	require.NoError(t, err)
	assert.Equal(t, "Jul 4, 2020", s)
}

func TestPostDateInvalid(t *testing.T) {
	f := PostDate("en-US", time.UTC)
	var nilTime *time.Time
	for _, v := range []any{"yesterday", 42, nil, time.Time{}, nilTime} {
		_, err := f(v)
		assert.ErrorIs(t, err, ErrInvalidDate, "%v", v)
	}
}

func TestMediumLocales(t *testing.T) {
	d := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Jan 5, 2024", Medium(d, "en-US"))
	assert.Equal(t, "Jan 5, 2024", Medium(d, "en_US"))
	assert.Equal(t, "5 Jan 2024", Medium(d, "en-GB"))
	assert.Equal(t, "05.01.2024", Medium(d, "de-DE"))
	assert.Equal(t, "5 janv. 2024", Medium(d, "fr"))
	assert.Equal(t, "5 janv. 2024", Medium(d, "fr-FR"))
	assert.Equal(t, "5 ene 2024", Medium(d, "es"))
	assert.Equal(t, "5 ene 2024", Medium(d, "es-ES"))
	assert.Equal(t, "Jan 5, 2024", Medium(d, "not a locale"))
}
