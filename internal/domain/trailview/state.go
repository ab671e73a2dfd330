package trailview

import (
	"sync"

	"github.com/yanqian/trailfinder/internal/domain/trails"
	"github.com/yanqian/trailfinder/internal/domain/weather"
)

const (
	DefaultFitnessLevel = 3
	MinFitnessLevel     = 1
	MaxFitnessLevel     = 5

	LocationErrorMessage = "Could not get your location. Some features may be limited."
	TrailsErrorMessage   = "Could not load trails. Please try again later."
)

// State is everything the browser view shows.
type State struct {
	Loading       bool
	LocationError string
	TrailsError   string
	Location      *weather.Coordinates
	Weather       *weather.Report
	FitnessLevel  int
	Trails        []trails.RankedTrail

	trailsGen  uint64
	weatherGen uint64
}

// InitialState is the view before anything has loaded.
func InitialState() State {
	return State{
		Loading:      true,
		FitnessLevel: DefaultFitnessLevel,
		Trails:       []trails.RankedTrail{},
	}
}

// Event is a state transition input.
type Event interface {
	isEvent()
}

// Mounted marks the view's first appearance.
type Mounted struct{}

type (
	LocationResolved struct {
		Coordinates weather.Coordinates
	}
	LocationFailed struct {
		Err error
	}
	FitnessLevelSelected struct {
		Level int
	}
	TrailsRequested struct {
		Generation uint64
	}
	TrailsLoaded struct {
		Generation uint64
		Trails     []trails.RankedTrail
	}
	TrailsFailed struct {
		Generation uint64
		Err        error
	}
	WeatherRequested struct {
		Generation uint64
	}
	WeatherLoaded struct {
		Generation uint64
		Report     weather.Report
	}
	WeatherFailed struct {
		Generation uint64
		Err        error
	}
)

func (Mounted) isEvent()              {}
func (LocationResolved) isEvent()     {}
func (LocationFailed) isEvent()       {}
func (FitnessLevelSelected) isEvent() {}
func (TrailsRequested) isEvent()      {}
func (TrailsLoaded) isEvent()         {}
func (TrailsFailed) isEvent()         {}
func (WeatherRequested) isEvent()     {}
func (WeatherLoaded) isEvent()        {}
func (WeatherFailed) isEvent()        {}

// Reduce applies e to s. Generations only move forward, and completions carrying anything but the
// latest generation leave s unchanged. It never mutates s.Trails in place.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case LocationResolved:
		coords := ev.Coordinates
		s.Location = &coords
	case LocationFailed:
		s.LocationError = LocationErrorMessage
	case FitnessLevelSelected:
		s.FitnessLevel = ev.Level
	case TrailsRequested:
		if ev.Generation <= s.trailsGen {
			return s
		}
		s.trailsGen = ev.Generation
		s.Loading = true
	case TrailsLoaded:
		if ev.Generation != s.trailsGen {
			return s
		}
		s.Trails = append([]trails.RankedTrail{}, ev.Trails...)
		s.TrailsError = ""
		s.Loading = false
	case TrailsFailed:
		if ev.Generation != s.trailsGen {
			return s
		}
		s.Trails = []trails.RankedTrail{}
		s.TrailsError = TrailsErrorMessage
		s.Loading = false
	case WeatherRequested:
		if ev.Generation <= s.weatherGen {
			return s
		}
		s.weatherGen = ev.Generation
	case WeatherLoaded:
		if ev.Generation != s.weatherGen {
			return s
		}
		report := ev.Report
		s.Weather = &report
	case WeatherFailed:
		// weather is optional; failures are only logged
	}
	return s
}

// Store serializes transitions and notifies subscribers with the new state.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []func(State)
}

// NewStore returns a store holding InitialState.
func NewStore() *Store {
	return &Store{state: InitialState()}
}

// Dispatch applies e and returns the resulting state.
func (s *Store) Dispatch(e Event) State {
	s.mu.Lock()
	s.state = Reduce(s.state, e)
	next := s.state
	listeners := append([]func(State){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every transition.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
