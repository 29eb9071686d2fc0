package ownership

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"kennel-exchange/internal/ports/cache"
	"kennel-exchange/internal/ports/capabilities"
)

var ErrUnknownFeature = errors.New("unknown capability")

// PuppyOwners responde si el usuario tiene una compra pagada (orders.Service).
type PuppyOwners interface {
	OwnsPuppy(ctx context.Context, userID string) (bool, error)
}

// BreederVerifier responde si el usuario es un criadero verificado (breeders.Service).
type BreederVerifier interface {
	IsVerified(ctx context.Context, userID string) (bool, error)
}

const grantTTL = 5 * time.Minute

// Resolver decide high_table: dueño de un cachorro pagado o criadero verificado.
// Solo cachea positivos; una compra pagada no se revierte.
type Resolver struct {
	owners   PuppyOwners
	breeders BreederVerifier
	cache    cache.Store
	allowAll bool
}

// NewResolver crea un resolver.
// Si ALLOW_ALL_CAPABILITIES=true (env), todo devuelve true (modo dev).
func NewResolver(owners PuppyOwners, breeders BreederVerifier, store cache.Store) *Resolver {
	allowAll := strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_ALL_CAPABILITIES")), "true")
	return &Resolver{
		owners:   owners,
		breeders: breeders,
		cache:    store,
		allowAll: allowAll,
	}
}

// HasFeature implementa capabilities.CapabilitiesResolver.
func (r *Resolver) HasFeature(ctx context.Context, in capabilities.CapabilityCheck) (bool, error) {
	if in.Feature != capabilities.FeatureHighTable {
		return false, ErrUnknownFeature
	}
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return false, nil
	}
	if r.allowAll {
		return true, nil
	}

	key := "cap:" + string(in.Feature) + ":" + userID
	if r.cache != nil {
		if _, err := r.cache.Get(ctx, key); err == nil {
			return true, nil
		}
	}

	ok, err := r.check(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	if r.cache != nil {
		_ = r.cache.Set(ctx, key, []byte("1"), grantTTL)
	}
	return true, nil
}

func (r *Resolver) check(ctx context.Context, userID string) (bool, error) {
	if r.owners != nil {
		ok, err := r.owners.OwnsPuppy(ctx, userID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	if r.breeders != nil {
		return r.breeders.IsVerified(ctx, userID)
	}
	return false, nil
}
