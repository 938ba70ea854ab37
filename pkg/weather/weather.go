// Package weather is the weather station example of the observer pattern.
//
// The Station collects temperature, humidity and pressure,
// and every Display registered to it prints the measurements whenever they change.
package weather

import (
	"context"
	"sync"

	"go.llib.dev/patterns/pkg/notifyhub"
	"go.llib.dev/patterns/port/observer"
)

//go:generate mockgen -destination weathermock/observer.go -package weathermock go.llib.dev/patterns/pkg/weather Observer

// Measurements is a snapshot of the station's fields.
type Measurements struct {
	// Temperature in °C
	Temperature float64 `json:"temperature"`
	// Humidity in %
	Humidity float64 `json:"humidity"`
	// Pressure in hPa
	Pressure float64 `json:"pressure"`
}

// Observer receives the latest Measurements of a Station.
type Observer interface {
	Update(ctx context.Context, m Measurements) error
}

// Station is the Subject of the weather example.
// The zero value is ready to use.
type Station struct {
	// Name is used to label the station's measurements.
	Name string
	// Hub holds the registered observers.
	// Configure Hub.Policy and Hub.Logger before the first notification.
	Hub notifyhub.Hub[Measurements]

	m       sync.RWMutex
	current Measurements
}

var _ observer.Subject[Measurements] = &Station{}

func (s *Station) Register(o observer.Observer[Measurements]) error {
	return s.Hub.Register(o)
}

func (s *Station) Unregister(o observer.Observer[Measurements]) {
	s.Hub.Unregister(o)
}

func (s *Station) Subscribe(o observer.Observer[Measurements]) (observer.Subscription, error) {
	return s.Hub.Subscribe(o)
}

// SetMeasurements stores the new measurements and notifies every registered observer with them.
// Nothing is stored when ctx is already done.
func (s *Station) SetMeasurements(ctx context.Context, m Measurements) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.m.Lock()
	s.current = m
	s.m.Unlock()
	return s.Hub.Notify(ctx, m)
}

// Notify is the observer.Notifier form of SetMeasurements.
// It stores m as the current measurements, then runs a notification round with it.
func (s *Station) Notify(ctx context.Context, m Measurements) error {
	return s.SetMeasurements(ctx, m)
}

// NotifyAll runs a notification round with the current measurements.
func (s *Station) NotifyAll(ctx context.Context) error {
	return s.Hub.Notify(ctx, s.Measurements())
}

// Measurements returns the current measurements.
func (s *Station) Measurements() Measurements {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.current
}
