// Package datefmt formats dates for display in templates.
package datefmt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"

	"github.com/ancientlore/quire/config"
)

// DefaultLocale is used when no locale is given.
const DefaultLocale = "en-US"

// ErrInvalidDate is returned for values that cannot be read as a date.
var ErrInvalidDate = errors.New("invalid date")

type mediumFormat struct {
	layout string
	locale monday.Locale
}

// supported is ordered to match mediumFormats.
var supported = []language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.German,
	language.French,
	language.Spanish,
}

var mediumFormats = []mediumFormat{
	{"Jan 2, 2006", monday.LocaleEnUS},
	{"2 Jan 2006", monday.LocaleEnGB},
	{"02.01.2006", monday.LocaleDeDE},
	{"2 Jan 2006", monday.LocaleFrFR},
	{"2 Jan 2006", monday.LocaleEsES},
}

var matcher = language.NewMatcher(supported)

// layouts are tried in order when the value is a string.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Medium formats t as a medium-length date in the given locale,
// for example "Jan 5, 2024" in en-US.
func Medium(t time.Time, locale string) string {
	f := lookup(locale)
	return monday.Format(t, f.layout, f.locale)
}

func lookup(locale string) mediumFormat {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return mediumFormats[0]
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return mediumFormats[0]
	}
	return mediumFormats[idx]
}

// PostDate returns a filter that formats a date value as a medium-length
// localized string. Values are converted to loc before formatting; a nil loc
// means time.Local.
func PostDate(locale string, loc *time.Location) config.Filter {
	if loc == nil {
		loc = time.Local
	}
	return func(v any) (string, error) {
		t, err := toTime(v, loc)
		if err != nil {
			return "", fmt.Errorf("postDate: %w", err)
		}
		return Medium(t.In(loc), locale), nil
	}
}

// toTime reads v as a time. Strings without a zone are read in loc.
func toTime(v any, loc *time.Location) (time.Time, error) {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return t, fmt.Errorf("%w: nil time", ErrInvalidDate)
		}
		t = *x
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range layouts {
			p, err := time.ParseInLocation(layout, s, loc)
			if err == nil {
				return p, nil
			}
		}
		return t, fmt.Errorf("%w: %q", ErrInvalidDate, x)
	default:
		return t, fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, v)
	}
	if t.IsZero() {
		return t, fmt.Errorf("%w: zero time", ErrInvalidDate)
	}
	return t, nil
}
