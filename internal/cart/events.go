package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/cartmanager/internal/domain"
)

type EventName string

const (
	EventCartInit           EventName = "cart.init"
	EventInitPricingContext EventName = "cart.init_pricing_context"
	EventFinished           EventName = "cart.finished"
)

type CartEvent struct {
	Cart *Cart
}

type PricingEvent struct {
	Cart    *Cart
	Context *domain.PricingContext
}

// Notifier delivers lifecycle events to listeners.
type Notifier interface {
	Dispatch(ctx context.Context, name EventName, event any) error
}

type NopNotifier struct{}

func (NopNotifier) Dispatch(context.Context, EventName, any) error { return nil }

type Listener func(ctx context.Context, event any) error

// Dispatcher calls listeners synchronously in registration order and stops
// at the first listener error.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[EventName][]Listener
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[EventName][]Listener)}
}

func (d *Dispatcher) Subscribe(name EventName, l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listeners[name] = append(d.listeners[name], l)
}

func (d *Dispatcher) Dispatch(ctx context.Context, name EventName, event any) error {
	d.mu.RLock()
	listeners := d.listeners[name]
	d.mu.RUnlock()

	for i, l := range listeners {
		if err := l(ctx, event); err != nil {
			return fmt.Errorf("listener[%d] for %s: %w", i, name, err)
		}
	}

	return nil
}
