package trailview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yanqian/trailfinder/internal/domain/trails"
	"github.com/yanqian/trailfinder/internal/domain/weather"
)

// ErrLocationUnavailable is returned by a Geolocator that has no position to offer.
var ErrLocationUnavailable = errors.New("location unavailable")

// TrailsFetcher requests ranked trails for a fitness level.
type TrailsFetcher interface {
	Recommend(ctx context.Context, fitnessLevel int) ([]trails.RankedTrail, error)
}

// WeatherFetcher requests current conditions for a position.
type WeatherFetcher interface {
	Current(ctx context.Context, coords weather.Coordinates) (weather.Report, error)
}

// Geolocator resolves the device position.
type Geolocator interface {
	Locate(ctx context.Context) (weather.Coordinates, error)
}

// Controller runs the view's side effects and feeds their outcomes back into the Store.
// A new trail or weather fetch cancels the one it supersedes, and late completions from a
// superseded fetch are discarded by generation.
type Controller struct {
	store   *Store
	trails  TrailsFetcher
	weather WeatherFetcher
	geo     Geolocator
	logger  *slog.Logger

	mu            sync.Mutex
	root          context.Context
	trailsGen     uint64
	weatherGen    uint64
	cancelTrails  context.CancelFunc
	cancelWeather context.CancelFunc
	mountOnce     sync.Once
	wg            sync.WaitGroup
}

// NewController builds a controller over store. geo may be nil when the device has no locator.
func NewController(store *Store, trailsFetcher TrailsFetcher, weatherFetcher WeatherFetcher, geo Geolocator, logger *slog.Logger) *Controller {
	return &Controller{
		store:   store,
		trails:  trailsFetcher,
		weather: weatherFetcher,
		geo:     geo,
		logger:  logger.With("component", "trailview.controller"),
		root:    context.Background(),
	}
}

// Mount starts the one-time location lookup and the first trail fetch. Cancelling ctx stops every
// fetch started by this controller.
func (c *Controller) Mount(ctx context.Context) {
	c.mountOnce.Do(func() {
		c.mu.Lock()
		c.root = ctx
		c.mu.Unlock()

		c.store.Dispatch(Mounted{})
		c.locate()
		c.fetchTrails(c.store.Snapshot().FitnessLevel)
	})
}

// SelectFitnessLevel switches the level and refetches trails when it changed.
func (c *Controller) SelectFitnessLevel(level int) error {
	if level < MinFitnessLevel || level > MaxFitnessLevel {
		return fmt.Errorf("fitness level must be between %d and %d", MinFitnessLevel, MaxFitnessLevel)
	}
	if c.store.Snapshot().FitnessLevel == level {
		return nil
	}
	c.store.Dispatch(FitnessLevelSelected{Level: level})
	c.fetchTrails(level)
	return nil
}

// Wait blocks until every in-flight fetch has settled.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) locate() {
	if c.geo == nil {
		c.store.Dispatch(LocationFailed{Err: ErrLocationUnavailable})
		return
	}
	ctx := c.rootContext()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		coords, err := c.geo.Locate(ctx)
		if err != nil {
			c.logger.Warn("location lookup failed", "error", err)
			c.store.Dispatch(LocationFailed{Err: err})
			return
		}
		c.store.Dispatch(LocationResolved{Coordinates: coords})
		c.fetchWeather(coords)
	}()
}

func (c *Controller) fetchTrails(level int) {
	c.mu.Lock()
	if c.cancelTrails != nil {
		c.cancelTrails()
	}
	ctx, cancel := context.WithCancel(c.root)
	c.cancelTrails = cancel
	c.trailsGen++
	gen := c.trailsGen
	c.mu.Unlock()

	c.store.Dispatch(TrailsRequested{Generation: gen})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		items, err := c.trails.Recommend(ctx, level)
		if err != nil {
			if !c.current(gen, true) {
				return
			}
			c.logger.Error("trail fetch failed", "fitness_level", level, "error", err)
			c.store.Dispatch(TrailsFailed{Generation: gen, Err: err})
			return
		}
		c.store.Dispatch(TrailsLoaded{Generation: gen, Trails: items})
	}()
}

func (c *Controller) fetchWeather(coords weather.Coordinates) {
	c.mu.Lock()
	if c.cancelWeather != nil {
		c.cancelWeather()
	}
	ctx, cancel := context.WithCancel(c.root)
	c.cancelWeather = cancel
	c.weatherGen++
	gen := c.weatherGen
	c.mu.Unlock()

	c.store.Dispatch(WeatherRequested{Generation: gen})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		report, err := c.weather.Current(ctx, coords)
		if err != nil {
			if c.current(gen, false) {
				c.logger.Warn("weather fetch failed", "error", err)
			}
			c.store.Dispatch(WeatherFailed{Generation: gen, Err: err})
			return
		}
		c.store.Dispatch(WeatherLoaded{Generation: gen, Report: report})
	}()
}

// current reports whether gen is still the latest fetch of its kind.
func (c *Controller) current(gen uint64, trailFetch bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if trailFetch {
		return gen == c.trailsGen
	}
	return gen == c.weatherGen
}

func (c *Controller) rootContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.root
}
