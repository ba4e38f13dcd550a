package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jakebf/layershell/core"
)

// Event is what the runtime broadcasts to running subscriptions.
type Event interface {
	isRuntimeEvent()
}

// Interaction is an input event consumed by a window, tagged with whether
// its UI tree captured it.
type Interaction struct {
	Window core.WindowID
	Event  core.Event
	Status core.Status
}

// OutputAdded and OutputRemoved report monitors coming and going.
type OutputAdded struct {
	Name string
}

type OutputRemoved struct {
	Name string
}

func (Interaction) isRuntimeEvent()   {}
func (OutputAdded) isRuntimeEvent()   {}
func (OutputRemoved) isRuntimeEvent() {}

// Env is what a running recipe sees.
type Env struct {
	// Events receives broadcast events. Slow recipes miss events rather
	// than stall the reactor.
	Events <-chan Event
	Clock  clock.Clock
	// Emit hands a message to the program. It blocks while the action
	// channel is full.
	Emit func(msg any) error
}

// Recipe is one long-running event source. Recipes are identified by ID: a
// recipe keeps running across Track calls as long as its ID stays present.
type Recipe struct {
	ID  string
	Run func(ctx context.Context, env Env) error
}

// Subscription is the set of recipes a program wants running.
type Subscription struct {
	recipes []Recipe
}

// Recipes returns the recipes of s.
func (s Subscription) Recipes() []Recipe { return s.recipes }

// NoSubscription subscribes to nothing.
func NoSubscription() Subscription { return Subscription{} }

// BatchSubscriptions merges subscriptions.
func BatchSubscriptions(subs ...Subscription) Subscription {
	var out Subscription
	for _, s := range subs {
		out.recipes = append(out.recipes, s.recipes...)
	}
	return out
}

// MapSubscription applies f to every message of s. The recipe ids are
// prefixed with tag so the same recipe mapped two ways runs twice.
func MapSubscription(s Subscription, tag string, f func(any) any) Subscription {
	out := Subscription{recipes: make([]Recipe, len(s.recipes))}
	for i, r := range s.recipes {
		out.recipes[i] = Recipe{
			ID: tag + "/" + r.ID,
			Run: func(ctx context.Context, env Env) error {
				emit := env.Emit
				env.Emit = func(msg any) error { return emit(f(msg)) }
				return r.Run(ctx, env)
			},
		}
	}
	return out
}

// Stream runs f as a recipe with the given id.
func Stream(id string, f func(ctx context.Context, emit func(any) error) error) Subscription {
	return Subscription{recipes: []Recipe{{
		ID:  id,
		Run: func(ctx context.Context, env Env) error { return f(ctx, env.Emit) },
	}}}
}

// ListenWith maps broadcast events to messages. Events for which f reports
// false are skipped.
func ListenWith(id string, f func(Event) (any, bool)) Subscription {
	return Subscription{recipes: []Recipe{{
		ID: "listen/" + id,
		Run: func(ctx context.Context, env Env) error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-env.Events:
					if !ok {
						return nil
					}
					msg, keep := f(ev)
					if !keep {
						continue
					}
					if err := env.Emit(msg); err != nil {
						return err
					}
				}
			}
		},
	}}}
}

// Listen produces every input event no UI tree captured, as an Interaction.
func Listen() Subscription {
	return ListenWith("ignored", func(ev Event) (any, bool) {
		in, ok := ev.(Interaction)
		if !ok || in.Status != core.StatusIgnored {
			return nil, false
		}
		return in, true
	})
}

// Every produces f(now) on every tick of interval.
func Every(interval time.Duration, f func(time.Time) any) Subscription {
	return Subscription{recipes: []Recipe{{
		ID: fmt.Sprintf("every/%s", interval),
		Run: func(ctx context.Context, env Env) error {
			ticker := env.Clock.Ticker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case now := <-ticker.C:
					if err := env.Emit(f(now)); err != nil {
						return err
					}
				}
			}
		},
	}}}
}
