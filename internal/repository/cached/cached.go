// Package cached wraps the patient and provider stores with a TTL
// read-cache. Billing reconciliation and reminder rendering look the
// same few records up once per appointment; the cache keeps those
// passes from hammering the database.
package cached

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/meditrack/clinic-api/internal/model"
	"github.com/meditrack/clinic-api/internal/repository"
)

type patientRepository struct {
	inner repository.PatientRepository
	cache *gocache.Cache
}

func NewPatientRepository(inner repository.PatientRepository, ttl time.Duration) repository.PatientRepository {
	return &patientRepository{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	if v, ok := r.cache.Get(id.String()); ok {
		return v.(*model.Patient), nil
	}

	patient, err := r.inner.Get(ctx, id)
	if err != nil {
		// Misses are not cached; a patient created moments later should
		// be visible on the next lookup.
		return nil, err
	}

	r.cache.Set(id.String(), patient, gocache.DefaultExpiration)
	return patient, nil
}

type providerRepository struct {
	inner repository.ProviderRepository
	cache *gocache.Cache
}

func NewProviderRepository(inner repository.ProviderRepository, ttl time.Duration) repository.ProviderRepository {
	return &providerRepository{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (r *providerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	if v, ok := r.cache.Get(id.String()); ok {
		return v.(*model.Provider), nil
	}

	provider, err := r.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache.Set(id.String(), provider, gocache.DefaultExpiration)
	return provider, nil
}

func (r *providerRepository) List(ctx context.Context) ([]*model.Provider, error) {
	// Listing always goes to the store; it feeds the worker's periodic
	// sweep where staleness would delay reconciliation.
	return r.inner.List(ctx)
}
