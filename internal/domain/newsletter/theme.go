package newsletter

import "time"

type Theme struct {
	Name          string `json:"name"`
	SubjectPrefix string `json:"subject_prefix"`
	Greeting      string `json:"greeting"`
	PrimaryColor  string `json:"primary_color"`
	AccentColor   string `json:"accent_color"`
}

var (
	themeHoliday = Theme{
		Name:          "holiday",
		SubjectPrefix: "Happy Howlidays",
		Greeting:      "Warm wishes from the whole pack",
		PrimaryColor:  "#b3261e",
		AccentColor:   "#1e6b3a",
	}
	themeSpring = Theme{
		Name:          "spring",
		SubjectPrefix: "Spring Litters",
		Greeting:      "Fresh paws on fresh grass",
		PrimaryColor:  "#4caf50",
		AccentColor:   "#f8bbd0",
	}
	themeSummer = Theme{
		Name:          "summer",
		SubjectPrefix: "Summer Pups",
		Greeting:      "Sunny days and wagging tails",
		PrimaryColor:  "#ff9800",
		AccentColor:   "#03a9f4",
	}
	themeAutumn = Theme{
		Name:          "autumn",
		SubjectPrefix: "Autumn Update",
		Greeting:      "Leaf piles were made for jumping",
		PrimaryColor:  "#bf5b17",
		AccentColor:   "#ffc107",
	}
	themeWinter = Theme{
		Name:          "winter",
		SubjectPrefix: "Winter Warmth",
		Greeting:      "Cozy blankets, cold noses",
		PrimaryColor:  "#1565c0",
		AccentColor:   "#b0bec5",
	}
)

// ThemeFor elige el tema del día. Las fiestas (20/12 al 2/1) pisan la estación.
func ThemeFor(date time.Time) Theme {
	m, d := date.Month(), date.Day()
	md := int(m)*100 + d

	switch {
	case md >= 1220 || md <= 102:
		return themeHoliday
	case md >= 320 && md <= 620:
		return themeSpring
	case md >= 621 && md <= 921:
		return themeSummer
	case md >= 922 && md <= 1219:
		return themeAutumn
	default:
		return themeWinter
	}
}
