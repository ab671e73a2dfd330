package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/trailfinder/internal/domain/trailview"
)

func TestWritePageLoading(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writePage(&buf, trailview.Render(trailview.InitialState())))

	out := buf.String()
	require.Contains(t, out, "== TrailFinder AI ==")
	require.Contains(t, out, "Loading trails...")
	require.Contains(t, out, "[3]")
	require.NotContains(t, out, "Current Weather")
}

func TestWritePageCards(t *testing.T) {
	page := trailview.Page{
		Title:   "TrailFinder AI",
		Tagline: "Your personal hiking companion",
		Weather: &trailview.WeatherPanel{Location: "Interlaken", TempC: 12.5, Condition: "Sunny"},
		Levels:  []trailview.LevelButton{{Level: 1}, {Level: 2, Selected: true}},
		Banner:  trailview.LocationErrorMessage,
		Cards: []trailview.Card{
			{Name: "Fern Canyon", Description: "Shaded canyon walk", LengthKm: 6.5, ElevationGainM: 210, Explanation: "Cool and shady", Stars: 2},
			{Name: "Ridge Route", LengthKm: 12, ElevationGainM: 900, Stars: 4},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writePage(&buf, page))

	out := buf.String()
	require.Contains(t, out, "Current Weather in Interlaken")
	require.Contains(t, out, "12.5°C  Sunny")
	require.Contains(t, out, " 1  [2]")
	require.Contains(t, out, "! "+trailview.LocationErrorMessage)
	require.Contains(t, out, "Length: 6.5km  Elevation: 210m")
	require.Contains(t, out, "Difficulty: **\n")
	require.Contains(t, out, "Why: Cool and shady")
	require.Contains(t, out, "Difficulty: ****\n")
	require.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Why:")))
	require.NotContains(t, out, "Loading trails...")
}
