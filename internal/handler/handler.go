package handler

import (
	"context"
	"fmt"

	"github.com/shaiso/funckabots/internal/events"
)

// Handler обрабатывает одно событие.
type Handler interface {
	Handle(ctx context.Context, ev events.Event) error
}

// HandlerFunc позволяет использовать функцию как Handler.
type HandlerFunc func(ctx context.Context, ev events.Event) error

// Handle вызывает f(ctx, ev).
func (f HandlerFunc) Handle(ctx context.Context, ev events.Event) error {
	return f(ctx, ev)
}

// Router — Handler, выбирающий обработчик по имени варианта события
// (VkEvent, Punishment).
type Router struct {
	handlers map[string]Handler
	fallback Handler
}

// NewRouter создаёт пустой Router.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]Handler)}
}

// Register добавляет обработчик для варианта события.
func (r *Router) Register(name string, h Handler) {
	r.handlers[name] = h
}

// Fallback задаёт обработчик для вариантов без собственного обработчика.
func (r *Router) Fallback(h Handler) {
	r.fallback = h
}

// Get возвращает обработчик для варианта события.
func (r *Router) Get(name string) (Handler, error) {
	if h, ok := r.handlers[name]; ok {
		return h, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoHandler, name)
}

// Handle реализует Handler.
func (r *Router) Handle(ctx context.Context, ev events.Event) error {
	h, err := r.Get(ev.Name())
	if err != nil {
		return err
	}
	return h.Handle(ctx, ev)
}
