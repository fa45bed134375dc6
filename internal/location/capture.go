package location

import (
	"context"
	"fmt"
	"time"

	"fims-backend/internal/forms"
)

// Position is one device fix.
type Position struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// Options configure a single-shot position request.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration // oldest acceptable cached fix
}

func DefaultOptions() Options {
	return Options{
		HighAccuracy: true,
		Timeout:      12 * time.Second,
		MaximumAge:   30 * time.Second,
	}
}

// Geolocator is the device geolocation collaborator.
type Geolocator interface {
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
}

// Geocoder resolves a position to a formatted address. Optional.
type Geocoder interface {
	ReverseGeocode(lat, lng float64) (string, error)
}

// Fix is a completed capture: the coordinate triple plus the reverse-geocoded
// address when one was available.
type Fix struct {
	Position
	Address string
}

// Capturer bridges device geolocation into the form session.
type Capturer struct {
	geolocator Geolocator
	geocoder   Geocoder
	opts       Options
}

func NewCapturer(geolocator Geolocator, geocoder Geocoder, opts Options) *Capturer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	return &Capturer{
		geolocator: geolocator,
		geocoder:   geocoder,
		opts:       opts,
	}
}

// Capture requests one position fix within the configured timeout, then
// attempts reverse geocoding. A geocoding failure is reported as a non-empty
// warning, never as an error; a device failure returns no fix at all, so
// partial coordinates are never produced.
func (c *Capturer) Capture(ctx context.Context) (*Fix, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	pos, err := c.geolocator.CurrentPosition(ctx, c.opts)
	if err != nil {
		return nil, "", fmt.Errorf("failed to capture location: %w", err)
	}

	fix := &Fix{Position: pos}
	if c.geocoder == nil {
		return fix, "", nil
	}

	address, err := c.geocoder.ReverseGeocode(pos.Latitude, pos.Longitude)
	if err != nil {
		return fix, fmt.Sprintf("could not determine address: %v", err), nil
	}
	fix.Address = address
	return fix, "", nil
}

// CaptureInto runs Capture and applies the result to the session: the
// coordinate triple as one update, the address only when geocoding produced
// one. On device failure the session's location fields are left untouched.
func (c *Capturer) CaptureInto(ctx context.Context, s *forms.Session) (string, error) {
	fix, warning, err := c.Capture(ctx)
	if err != nil {
		return "", err
	}
	s.SetCoordinates(fix.Latitude, fix.Longitude, fix.Accuracy)
	s.SetAddress(fix.Address)
	return warning, nil
}
