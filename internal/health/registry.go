package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Opsboard/internal/config"
)

// Registry holds one dashboard per configured platform, in config order.
type Registry struct {
	order      []string
	dashboards map[string]*Dashboard
	policy     RefreshPolicy
}

func NewRegistry(cfg config.DashboardsConfig, fetcher Fetcher, clock Clock) (*Registry, error) {
	r := &Registry{
		dashboards: make(map[string]*Dashboard, len(cfg.Platforms)),
		policy:     RefreshPolicy(cfg.Refresh.Policy),
	}
	loc := cfg.Location()
	for _, p := range cfg.Platforms {
		d, err := NewDashboard(Options{
			Key:       p.Key,
			Label:     p.Label,
			Kind:      Kind(p.Kind),
			Endpoints: p.Endpoints,
			Shops:     cfg.Shops,
			Mode:      CalendarMode(cfg.CalendarMode),
			Location:  loc,
			Clock:     clock,
		}, fetcher)
		if err != nil {
			return nil, fmt.Errorf("platform %s: %w", p.Key, err)
		}
		r.order = append(r.order, p.Key)
		r.dashboards[p.Key] = d
	}
	return r, nil
}

func (r *Registry) Get(key string) (*Dashboard, bool) {
	d, ok := r.dashboards[key]
	return d, ok
}

func (r *Registry) All() []*Dashboard {
	out := make([]*Dashboard, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.dashboards[key])
	}
	return out
}

// LoadAll performs the initial load of every platform.
func (r *Registry) LoadAll(ctx context.Context) {
	for _, d := range r.All() {
		if err := d.Load(ctx); err != nil && !errors.Is(err, ErrStaleResponse) {
			log.Ctx(ctx).Warn().Err(err).Str("platform", d.Key()).Msg("Initial dashboard load failed")
		}
	}
}

// RefreshAll applies the configured refresh policy to every platform.
func (r *Registry) RefreshAll(ctx context.Context) error {
	var refreshed int
	for _, d := range r.All() {
		ok, err := d.Refresh(ctx, r.policy)
		if errors.Is(err, ErrStaleResponse) {
			log.Ctx(ctx).Debug().Str("platform", d.Key()).Msg("Refresh superseded by a newer selection")
			continue
		}
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("platform", d.Key()).Msg("Dashboard refresh failed")
			continue
		}
		if ok {
			refreshed++
		}
	}
	log.Ctx(ctx).Debug().Int("refreshed", refreshed).Str("policy", string(r.policy)).Msg("Dashboard refresh complete")
	return nil
}
