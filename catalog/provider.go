package catalog

import (
	"context"
	"log"
	"time"

	"github.com/hako/durafmt"

	"github.com/pantrypal/pantrypal-api/db"
	"github.com/pantrypal/pantrypal-api/env"
	"github.com/pantrypal/pantrypal-api/types"
)

// Provider bundles the ingredient catalog cache with the goroutine
// that periodically refreshes it from the database
type Provider struct {
	stopRefresh chan struct{}

	refreshPeriod  time.Duration
	refreshTimeout time.Duration
	source         db.IngredientProvider

	*Cache
}

// NewProvider loads values from the environment and creates the
// provider (doesn't start goroutines)
func NewProvider(source db.IngredientProvider) (*Provider, error) {
	refreshPeriod, err := env.GetDurationEnv("catalog refresh period", "CATALOG_REFRESH_PERIOD")
	if err != nil {
		return nil, err
	}

	refreshTimeout, err := env.GetDurationEnv("catalog refresh timeout", "CATALOG_REFRESH_TIMEOUT")
	if err != nil {
		return nil, err
	}

	return &Provider{
		stopRefresh:    make(chan struct{}),
		refreshPeriod:  refreshPeriod,
		refreshTimeout: refreshTimeout,
		source:         source,
		Cache:          &Cache{},
	}, nil
}

// Connect performs the initial load and starts the periodic refresh
// goroutine
func (p *Provider) Connect(ctx context.Context) error {
	ingredients, err := p.fetch(ctx)
	if err != nil {
		return err
	}
	p.Cache.Load(ingredients)

	go p.periodRefresh()

	return nil
}

// Disconnect stops the periodic refresh goroutine
func (p *Provider) Disconnect(ctx context.Context) error {
	p.stopRefresh <- struct{}{}

	return nil
}

// Periodically refreshes the cache from the database
func (p *Provider) periodRefresh() {
	humanDuration := durafmt.Parse(p.refreshPeriod).LimitFirstN(2).String()
	for {
		select {
		case <-p.stopRefresh:
			return
		case <-time.After(p.refreshPeriod):
			p.tryRefresh(humanDuration)
		}
	}
}

// Attempts to fetch and reload the cache,
// printing out an error if it occurs
func (p *Provider) tryRefresh(delayUntilNext string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.refreshTimeout)
	defer cancel()

	ingredients, err := p.fetch(ctx)
	if err != nil {
		// Report error,
		// but continue the goroutine
		log.Println("an error occurred while refreshing the ingredient catalog cache:")
		log.Println(err)
		return
	}

	p.Cache.Load(ingredients)
	log.Printf("reloaded ingredient catalog cache (%d total); refreshing again in %s\n",
		len(ingredients), delayUntilNext)
}

func (p *Provider) fetch(ctx context.Context) ([]types.Ingredient, error) {
	return p.source.GetAllIngredients(ctx, types.IngredientFilter{})
}
