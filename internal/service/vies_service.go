package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"backoffice/internal/cache"
	"backoffice/internal/vies"
	"backoffice/pkg/apperror"

	"go.uber.org/zap"
)

// ViesResult is the lookup payload returned to clients and stored in cache.
// Name and Address are nil when the registry marks the number invalid.
type ViesResult struct {
	Valid   bool    `json:"valid"`
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

type ViesService interface {
	// Lookup validates a VAT number against the EU registry, serving
	// repeated queries for the same number from cache for 24 hours.
	Lookup(ctx context.Context, rawNIF string) (ViesResult, error)
}

type viesService struct {
	client vies.Client
	store  cache.Store
	ttl    time.Duration
	log    *zap.Logger
}

func NewViesService(client vies.Client, store cache.Store, log *zap.Logger) ViesService {
	return &viesService{client: client, store: store, ttl: 24 * time.Hour, log: log}
}

// NormalizeNIF splits a raw tax number into country code and digits. Numbers
// without a leading country prefix are assumed Portuguese.
func NormalizeNIF(raw string) (country, number string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", apperror.Validation("nif is required")
	}

	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	cleaned := strings.ToUpper(b.String())

	if len(cleaned) >= 2 && isAlpha(cleaned[0]) && isAlpha(cleaned[1]) {
		country = cleaned[:2]
		number = cleaned[2:]
	} else {
		country = "PT"
		number = cleaned
	}
	if number == "" {
		return "", "", apperror.Validation("nif is invalid")
	}
	return country, number, nil
}

func isAlpha(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func (s *viesService) Lookup(ctx context.Context, rawNIF string) (ViesResult, error) {
	country, number, err := NormalizeNIF(rawNIF)
	if err != nil {
		return ViesResult{}, err
	}

	key := "vies:" + country + ":" + number

	if raw, ok, err := s.store.Get(ctx, key); err == nil && ok {
		var cached ViesResult
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		s.log.Warn("discarding corrupt vies cache entry", zap.String("key", key))
	} else if err != nil {
		s.log.Warn("vies cache read failed", zap.Error(err))
	}

	checked, err := s.client.CheckVat(ctx, country, number)
	if err != nil {
		// failures are never cached so a retry hits the registry again
		return ViesResult{}, apperror.Unavailable("vies service unavailable", err)
	}

	result := ViesResult{Valid: checked.Valid}
	if checked.Valid {
		if checked.Name != "" {
			name := checked.Name
			result.Name = &name
		}
		if checked.Address != "" {
			address := checked.Address
			result.Address = &address
		}
	}

	if raw, err := json.Marshal(result); err == nil {
		if err := s.store.Set(ctx, key, string(raw), s.ttl); err != nil {
			s.log.Warn("vies cache write failed", zap.Error(err))
		}
	}

	return result, nil
}
