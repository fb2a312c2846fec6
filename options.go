package rubikal

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"
)

// Reference animation defaults.
const (
	DefaultUpdatesPerRotation = 30
	DefaultPause              = 40 * time.Millisecond
	DefaultFrameInterval      = time.Second / 60
)

// Option configures Cube behavior.
type Option func(*config)

type config struct {
	whitelist          []string
	emphasize          bool
	updatesPerRotation int
	pause              time.Duration
	frameInterval      time.Duration
	logger             *slog.Logger
	renderer           Renderer
	onStart            func(Rotation)
	onComplete         func(RotationEvent)
}

func defaultConfig() *config {
	return &config{
		emphasize:          true,
		updatesPerRotation: DefaultUpdatesPerRotation,
		pause:              DefaultPause,
		frameInterval:      DefaultFrameInterval,
		logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		renderer:           nopRenderer{},
	}
}

// WithWhitelist limits non-blank cubelets to the given "x,y,z" coordinates.
// With no coordinates (the default) every cubelet is non-blank.
func WithWhitelist(coords ...string) Option {
	return func(c *config) {
		c.whitelist = append(c.whitelist, coords...)
	}
}

// WithEmphasis enables or disables blanking of non-rotating cubelets
// while a slice turns. Enabled by default.
func WithEmphasis(enabled bool) Option {
	return func(c *config) {
		c.emphasize = enabled
	}
}

// WithUpdatesPerRotation sets how many ticks a quarter turn takes.
func WithUpdatesPerRotation(n int) Option {
	return func(c *config) {
		c.updatesPerRotation = n
	}
}

// WithPause sets the settle gap before a queued rotation starts turning.
// The gap is counted in ticks of the frame interval, rounded up.
func WithPause(d time.Duration) Option {
	return func(c *config) {
		c.pause = d
	}
}

// WithFrameInterval sets the expected time between ticks. It is only used
// to convert the pause into a tick count; Tick itself never sleeps.
func WithFrameInterval(d time.Duration) Option {
	return func(c *config) {
		c.frameInterval = d
	}
}

// WithLogger sets the logger. Nil leaves the default discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRenderer attaches a display layer. Nil leaves the no-op renderer.
func WithRenderer(r Renderer) Option {
	return func(c *config) {
		if r != nil {
			c.renderer = r
		}
	}
}

// OnRotationStart sets a callback fired when a rotation takes its first step.
func OnRotationStart(cb func(Rotation)) Option {
	return func(c *config) {
		c.onStart = cb
	}
}

// OnRotationComplete sets a callback fired after a rotation finishes and
// slice membership has been rebuilt.
func OnRotationComplete(cb func(RotationEvent)) Option {
	return func(c *config) {
		c.onComplete = cb
	}
}

func (c *config) validate() error {
	if c.updatesPerRotation < 1 {
		return fmt.Errorf("%w: updates per rotation must be at least 1, got %d", ErrInvalidConfig, c.updatesPerRotation)
	}
	if c.pause < 0 {
		return fmt.Errorf("%w: negative pause %s", ErrInvalidConfig, c.pause)
	}
	if c.frameInterval <= 0 {
		return fmt.Errorf("%w: frame interval must be positive, got %s", ErrInvalidConfig, c.frameInterval)
	}
	return nil
}

// pauseTicks converts the pause into whole ticks.
func (c *config) pauseTicks() int {
	return int(math.Ceil(float64(c.pause) / float64(c.frameInterval)))
}

// whitelistSet parses the whitelist coordinates.
func (c *config) whitelistSet() (map[Coord]bool, error) {
	set := make(map[Coord]bool, len(c.whitelist))
	for _, s := range c.whitelist {
		coord, err := ParseCoord(s)
		if err != nil {
			return nil, err
		}
		set[coord] = true
	}
	return set, nil
}
