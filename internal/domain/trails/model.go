package trails

import "github.com/yanqian/trailfinder/pkg/metrics"

// Trail is a stored hiking route. Field names follow the trails table columns.
type Trail struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Difficulty     int     `json:"difficulty"`
	LengthKm       float64 `json:"length_km"`
	ElevationGainM int     `json:"elevation_gain_m"`
}

// Recommendation pairs a trail id with the model's reasoning.
type Recommendation struct {
	ID          int64  `json:"id"`
	Explanation string `json:"explanation"`
}

// RankedTrail is a Trail augmented with its recommendation explanation.
type RankedTrail struct {
	Trail
	Explanation string `json:"explanation,omitempty"`
}

// Request captures the payload accepted by the recommendation endpoint.
type Request struct {
	FitnessLevel int `json:"fitnessLevel"`
}

// Response is serialized back to API consumers.
type Response struct {
	Trails     []RankedTrail       `json:"trails"`
	Ranked     bool                `json:"ranked"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// Config wires runtime knobs for the recommendation domain.
type Config struct {
	Model              string
	Temperature        float32
	SystemPrompt       string
	FallbackToUnranked bool
	MinFitnessLevel    int
	MaxFitnessLevel    int
	MaxPromptTokens    int
}
