package policy

import (
	"context"
	"sync"
	"time"
)

const DefaultCacheTTL = 5 * time.Minute

// Resolver assembles a tenant's effective policy view. Missing configuration
// rows resolve to defaults; only storage failures surface as errors.
// Resolved views are cached per tenant with a TTL.
type Resolver struct {
	store StoreAPI
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	policy  *TenantPolicy
	expires time.Time
}

func NewResolver(store StoreAPI, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Resolver{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cacheEntry),
	}
}

func (r *Resolver) Resolve(ctx context.Context, tenantID string) (*TenantPolicy, error) {
	if cached := r.lookup(tenantID); cached != nil {
		return cached, nil
	}

	types, err := r.store.LeaveTypes(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	rules, err := r.store.Rules(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	settings, err := r.store.ApprovalSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		defaults := DefaultApprovalSettings()
		settings = &defaults
	}
	schedule, err := r.store.WorkSchedule(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		defaults := DefaultWorkSchedule()
		schedule = &defaults
	}

	resolved := &TenantPolicy{
		TenantID:   tenantID,
		LeaveTypes: types,
		Rules:      rules,
		Approval:   *settings,
		Schedule:   *schedule,
	}
	r.storeEntry(tenantID, resolved)
	return resolved, nil
}

// Invalidate drops the cached view for one tenant, or for all tenants when
// tenantID is empty.
func (r *Resolver) Invalidate(tenantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tenantID == "" {
		r.cache = make(map[string]cacheEntry)
		return
	}
	delete(r.cache, tenantID)
}

func (r *Resolver) lookup(tenantID string) *TenantPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[tenantID]
	if !ok || r.now().After(entry.expires) {
		return nil
	}
	return entry.policy
}

func (r *Resolver) storeEntry(tenantID string, p *TenantPolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[tenantID] = cacheEntry{policy: p, expires: r.now().Add(r.ttl)}
}
