package trailview

const (
	pageTitle   = "TrailFinder AI"
	pageTagline = "Your personal hiking companion"
)

// Page is the rendered view model.
type Page struct {
	Title   string
	Tagline string
	Weather *WeatherPanel
	Levels  []LevelButton
	Banner  string
	Loading bool
	Cards   []Card
}

type WeatherPanel struct {
	Location  string
	TempC     float64
	Condition string
	Icon      string
}

type LevelButton struct {
	Level    int
	Selected bool
}

type Card struct {
	ID             int64
	Name           string
	Description    string
	LengthKm       float64
	ElevationGainM int
	Explanation    string
	Stars          int
}

// Render is a pure function of s.
func Render(s State) Page {
	page := Page{
		Title:   pageTitle,
		Tagline: pageTagline,
		Loading: s.Loading,
	}

	if s.Weather != nil {
		panel := &WeatherPanel{
			TempC:     s.Weather.Current.TempC,
			Condition: s.Weather.Current.Condition.Text,
			Icon:      s.Weather.Current.Condition.Icon,
		}
		if s.Weather.Location != nil {
			panel.Location = s.Weather.Location.Name
		}
		page.Weather = panel
	}

	for level := MinFitnessLevel; level <= MaxFitnessLevel; level++ {
		page.Levels = append(page.Levels, LevelButton{Level: level, Selected: level == s.FitnessLevel})
	}

	// The trail error blocks the list, so it wins over the location advisory.
	switch {
	case s.TrailsError != "":
		page.Banner = s.TrailsError
	case s.LocationError != "":
		page.Banner = s.LocationError
	}

	if s.Loading {
		return page
	}
	page.Cards = make([]Card, 0, len(s.Trails))
	for _, t := range s.Trails {
		page.Cards = append(page.Cards, Card{
			ID:             t.ID,
			Name:           t.Name,
			Description:    t.Description,
			LengthKm:       t.LengthKm,
			ElevationGainM: t.ElevationGainM,
			Explanation:    t.Explanation,
			Stars:          max(t.Difficulty, 0),
		})
	}
	return page
}
