package render

type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Theme is a fixed colour set applied to the whole document.
type Theme struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Primary   RGB    `json:"primary"`
	Secondary RGB    `json:"secondary"`
	Accent    RGB    `json:"accent"`
}

const DefaultTheme = "classic"

var themes = []Theme{
	{Key: "classic", Name: "Classic Blue", Primary: RGB{42, 93, 134}, Secondary: RGB{120, 162, 196}, Accent: RGB{230, 230, 230}},
	{Key: "modern", Name: "Modern Green", Primary: RGB{45, 122, 76}, Secondary: RGB{106, 168, 126}, Accent: RGB{235, 245, 235}},
	{Key: "elegant", Name: "Elegant Purple", Primary: RGB{93, 63, 127}, Secondary: RGB{143, 113, 177}, Accent: RGB{240, 235, 249}},
	{Key: "corporate", Name: "Corporate Gray", Primary: RGB{72, 72, 72}, Secondary: RGB{128, 128, 128}, Accent: RGB{230, 230, 230}},
}

// Themes lists every theme in picker order.
func Themes() []Theme {
	return append([]Theme(nil), themes...)
}

func LookupTheme(key string) (Theme, bool) {
	for _, t := range themes {
		if t.Key == key {
			return t, true
		}
	}
	return Theme{}, false
}

// ThemeOrDefault resolves key, falling back to classic for unknown keys.
func ThemeOrDefault(key string) Theme {
	if t, ok := LookupTheme(key); ok {
		return t
	}
	return themes[0]
}
