// Package carousel is the auto-advancing slide show. One ticker moves to the
// next slide every interval; manual navigation restarts that ticker. Every
// transition is preceded by a fade during which the old slide stays current.
package carousel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/patric-chuzhbe/useradmin/internal/broadcast"
	"github.com/patric-chuzhbe/useradmin/internal/logger"
	"github.com/patric-chuzhbe/useradmin/internal/models"
)

const (
	DefaultInterval = 3 * time.Second
	DefaultFade     = 300 * time.Millisecond
)

var ErrSlideOutOfRange = errors.New("slide index out of range")

// DefaultSlides are the three images shipped with the application.
func DefaultSlides() []models.Slide {
	return []models.Slide{
		{URL: "/static/carousel/image1.png", Alt: "Slide 1"},
		{URL: "/static/carousel/image2.png", Alt: "Slide 2"},
		{URL: "/static/carousel/image3.jpg", Alt: "Slide 3"},
	}
}

type Carousel struct {
	mu     sync.Mutex
	slides []models.Slide
	index  int
	fading bool
	// fadeTimer is non-nil while a transition is pending.
	fadeTimer *time.Timer

	interval time.Duration
	fade     time.Duration

	restart chan struct{}
	changes broadcast.Broadcaster
}

type InitOption func(*initOptions)

type initOptions struct {
	slides   []models.Slide
	interval time.Duration
	fade     time.Duration
}

func WithSlides(slides []models.Slide) InitOption {
	return func(options *initOptions) {
		options.slides = slides
	}
}

func WithInterval(interval time.Duration) InitOption {
	return func(options *initOptions) {
		options.interval = interval
	}
}

// WithFade sets how long the fade lasts; zero switches slides immediately.
func WithFade(fade time.Duration) InitOption {
	return func(options *initOptions) {
		options.fade = fade
	}
}

func New(optionsProto ...InitOption) *Carousel {
	options := &initOptions{
		slides:   DefaultSlides(),
		interval: DefaultInterval,
		fade:     DefaultFade,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	slides := make([]models.Slide, len(options.slides))
	copy(slides, options.slides)

	return &Carousel{
		slides:   slides,
		interval: options.interval,
		fade:     options.fade,
		restart:  make(chan struct{}, 1),
	}
}

// Run advances the slides until ctx is done.
func (c *Carousel) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			if c.fadeTimer != nil {
				c.fadeTimer.Stop()
			}
			c.mu.Unlock()
			return
		case <-c.restart:
			ticker.Reset(c.interval)
		case <-ticker.C:
			c.step(1)
		}
	}
}

func (c *Carousel) Subscribe(fn func()) func() {
	return c.changes.Subscribe(fn)
}

func (c *Carousel) Next() {
	c.step(1)
	c.restartTimer()
}

func (c *Carousel) Prev() {
	c.step(-1)
	c.restartTimer()
}

// GoTo jumps to slide index (0-based).
func (c *Carousel) GoTo(index int) error {
	if index < 0 || index >= len(c.slides) {
		return fmt.Errorf("%w: %d of %d", ErrSlideOutOfRange, index, len(c.slides))
	}

	c.mu.Lock()
	c.beginTransition(index)
	c.mu.Unlock()
	c.changes.Notify()

	c.restartTimer()

	return nil
}

func (c *Carousel) restartTimer() {
	select {
	case c.restart <- struct{}{}:
	default:
	}
}

func (c *Carousel) step(delta int) {
	count := len(c.slides)
	if count == 0 {
		return
	}

	c.mu.Lock()
	c.beginTransition(((c.index+delta)%count + count) % count)
	c.mu.Unlock()
	c.changes.Notify()
}

// beginTransition must be called with c.mu held. A pending transition is
// replaced by the new one.
func (c *Carousel) beginTransition(target int) {
	if c.fadeTimer != nil {
		c.fadeTimer.Stop()
		c.fadeTimer = nil
	}

	if c.fade <= 0 {
		c.commit(target)
		return
	}

	c.fading = true
	var timer *time.Timer
	timer = time.AfterFunc(c.fade, func() {
		c.mu.Lock()
		if c.fadeTimer != timer {
			c.mu.Unlock()
			return
		}
		c.fadeTimer = nil
		c.commit(target)
		c.mu.Unlock()
		c.changes.Notify()
	})
	c.fadeTimer = timer
}

func (c *Carousel) commit(target int) {
	c.index = target
	c.fading = false
	logger.Log.Debugw("carousel slide changed", "index", target)
}

func (c *Carousel) Snapshot() models.CarouselResponse {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := models.CarouselResponse{
		Index:  c.index,
		Count:  len(c.slides),
		Fading: c.fading,
	}
	if c.index < len(c.slides) {
		result.Slide = c.slides[c.index]
	}

	return result
}
