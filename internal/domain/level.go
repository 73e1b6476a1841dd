package domain

import "strings"

// Level holds the display metadata for one advisory tier.
type Level struct {
	Code     string
	Ordinal  int // 0 (LOW) through 4 (SEVERE)
	Title    string
	Color    string
	Text     string
	ImageURL string
}

// Levels lists the five advisory tiers in increasing severity.
// Content taken directly from http://www.universalhub.com/french-toast.
var Levels = []Level{
	{
		Code:     "LOW",
		Ordinal:  0,
		Title:    "1 Slice / Low",
		Color:    "#97FF9B",
		ImageURL: "https://www.universalhub.com/images/2007/frenchtoastgreen.jpg",
		Text: "No storm predicted. Harvey Leonard sighs and looks dour on " +
			"the evening news. Go about your daily business but consider " +
			"buying second refrigerator for basement, diesel generator. " +
			"Good time to replenish stocks of maple syrup, cinnamon.",
	},
	{
		Code:     "GUARDED",
		Ordinal:  1,
		Title:    "2 Slices / Guarded",
		Color:    "#9799FF",
		ImageURL: "https://www.universalhub.com/images/2007/frenchtoastblue.jpg",
		Text: "Light snow predicted. Subtle grin appears on Harvey " +
			"Leonard's face. Check car fuel gauge, memorize quickest " +
			"route to emergency supermarket should conditions change.",
	},
	{
		Code:     "ELEVATED",
		Ordinal:  2,
		Title:    "3 Slices / Elevated",
		Color:    "#FFFF40",
		ImageURL: "https://www.universalhub.com/images/2007/frenchtoastyellow.jpg",
		Text: "Moderate, plowable snow predicted. Harvey Leonard openly " +
			"smiles during report. Empty your trunk to make room for " +
			"milk, eggs and bread. Clear space in refrigerator and head " +
			"to store for an extra gallon of milk, a spare dozen eggs " +
			"and a new loaf of bread.",
	},
	{
		Code:     "HIGH",
		Ordinal:  3,
		Title:    "4 Slices / High",
		Color:    "#FF821D",
		ImageURL: "https://www.universalhub.com/images/2007/frenchtoastorange.jpg",
		Text: "Heavy snow predicted. Harvey Leonard breaks into huge grin, " +
			"can't keep his hands off the weather map. Proceed at speed " +
			"limit _before snow starts_ to nearest supermarket to pick " +
			"up two gallons of milk, a couple dozen eggs and two loaves " +
			"of bread - per person in household.",
	},
	{
		Code:     "SEVERE",
		Ordinal:  4,
		Title:    "5 Slices / Severe",
		Color:    "#F85D58",
		ImageURL: "https://www.universalhub.com/images/2007/frenchtoastred.jpg",
		Text: "Nor'easter predicted. This is it, people, THE BIG ONE. " +
			"Harvey Leonard makes repeated references to the Blizzard " +
			"of '78. RUSH to emergency supermarket NOW for multiple " +
			"gallons of milk, cartons of eggs and loaves of bread. " +
			"IGNORE cries of little old lady you've just trampled in " +
			"mad rush to get last gallon of milk. Place pets in basement " +
			"for use as emergency food supply if needed.",
	},
}

var levelsByCode = func() map[string]Level {
	m := make(map[string]Level, len(Levels))
	for _, l := range Levels {
		m[l.Code] = l
	}
	return m
}()

// NormalizeCode maps a raw status string to its canonical uppercase form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LevelFor resolves a status code to its level, case-insensitively.
// Returns an UnknownLevelError for codes outside the fixed set.
func LevelFor(code string) (Level, error) {
	l, ok := levelsByCode[NormalizeCode(code)]
	if !ok {
		return Level{}, &UnknownLevelError{Code: code}
	}
	return l, nil
}
