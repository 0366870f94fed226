// Package domaincheck interprets registrar responses into a normalized
// availability result, with deterministic fallback suggestions and an
// optional price ceiling.
package domaincheck

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"onboardly/internal/domaincheck/metrics"
	"onboardly/internal/registrar"
	dErrors "onboardly/pkg/domain-errors"
	"onboardly/pkg/platform/sentinel"
)

// Result is the normalized availability outcome returned to callers.
// Suggestions is non-empty exactly when the domain is not available.
type Result struct {
	Available   bool     `json:"available"`
	Domain      string   `json:"domain"`
	Price       string   `json:"price"`
	Reason      string   `json:"reason,omitempty"`
	Message     string   `json:"message,omitempty"`
	Suggestions []string `json:"suggestions"`
}

// ReasonPrice marks a domain rejected by the price ceiling.
const ReasonPrice = "price"

const minDomainLength = 3

// RegistrarAPI is the slice of the registrar client the evaluator needs.
type RegistrarAPI interface {
	CheckDomain(ctx context.Context, domain string) (*registrar.RawResponse, error)
}

// CacheStore caches final availability results. Implementations return
// sentinel.ErrNotFound on a miss.
type CacheStore interface {
	Get(ctx context.Context, domain string) (*Result, error)
	Set(ctx context.Context, domain string, result *Result, ttl time.Duration) error
}

// Options tune the evaluator.
type Options struct {
	// PriceLimit enables price gating when > 0.
	PriceLimit float64
	// CacheTTL bounds how long availability results are reused.
	CacheTTL time.Duration
}

// Service is the availability evaluator.
type Service struct {
	registrar RegistrarAPI
	cache     CacheStore
	opts      Options
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// New constructs the evaluator. cache and m may be nil.
func New(reg RegistrarAPI, cache CacheStore, opts Options, logger *slog.Logger, m *metrics.Metrics) *Service {
	if opts.CacheTTL == 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	return &Service{
		registrar: reg,
		cache:     cache,
		opts:      opts,
		logger:    logger,
		metrics:   m,
	}
}

// NormalizeDomain validates and canonicalizes a requested domain name.
// Violations never reach the upstream.
func NormalizeDomain(domain string) (string, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return "", dErrors.New(dErrors.CodeValidation, "domainName is required")
	}
	if len(domain) < minDomainLength {
		return "", dErrors.Newf(dErrors.CodeValidation, "domain name must be at least %d characters", minDomainLength)
	}
	if !strings.Contains(domain, ".") {
		return "", dErrors.New(dErrors.CodeValidation, "domain name must include an extension, e.g. example.com")
	}
	return domain, nil
}

// Check validates the domain, consults the cache, and otherwise asks the
// registrar, normalizing whichever response shape comes back.
func (s *Service) Check(ctx context.Context, domainName string) (*Result, error) {
	domain, err := NormalizeDomain(domainName)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, cacheErr := s.cache.Get(ctx, domain)
		if cacheErr == nil {
			s.metrics.IncrementCacheHit()
			return cached, nil
		}
		if !errors.Is(cacheErr, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "availability cache read failed", "domain", domain, "error", cacheErr)
		}
	}

	start := time.Now()
	raw, err := s.registrar.CheckDomain(ctx, domain)
	s.metrics.ObserveUpstreamLatency(time.Since(start))
	if err != nil {
		s.metrics.IncrementCheck("upstream_error")
		return nil, err
	}

	result := s.evaluate(domain, raw)
	s.recordOutcome(result)

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, domain, result, s.opts.CacheTTL); cacheErr != nil {
			s.logger.WarnContext(ctx, "availability cache write failed", "domain", domain, "error", cacheErr)
		}
	}

	return result, nil
}

// evaluate normalizes the two observed registrar response shapes and applies
// the optional price gate. Price gating happens before the result is cached,
// so cached entries are final.
func (s *Service) evaluate(domain string, raw *registrar.RawResponse) *Result {
	result := &Result{
		Domain:      domain,
		Price:       "N/A",
		Suggestions: []string{},
	}

	if !raw.Succeeded() {
		// A business-level failure from the registrar is a normal outcome.
		result.Message = raw.Message
		if result.Message == "" {
			result.Message = "registrar reported a failure"
		}
		result.Suggestions = Alternatives(domain)
		return result
	}

	result.Available = availabilityFlag(raw)
	if price := priceString(raw); price != "" {
		result.Price = price
	}

	if result.Available && s.opts.PriceLimit > 0 {
		price, parseErr := strconv.ParseFloat(result.Price, 64)
		// An unparseable price under gating never passes as available.
		if parseErr != nil || price > s.opts.PriceLimit {
			result.Available = false
			result.Reason = ReasonPrice
		}
	}

	if !result.Available {
		result.Suggestions = Alternatives(domain)
	}
	return result
}

// availabilityFlag folds the flat `available=="1"` and nested
// `response.avail=="yes"` shapes into one boolean.
func availabilityFlag(raw *registrar.RawResponse) bool {
	if raw.Available == "1" {
		return true
	}
	if raw.Response != nil && strings.EqualFold(raw.Response.Avail, "yes") {
		return true
	}
	return false
}

func priceString(raw *registrar.RawResponse) string {
	if raw.Pricing != nil && raw.Pricing.Registration != "" {
		return raw.Pricing.Registration
	}
	if raw.Response != nil && raw.Response.Price != "" {
		return raw.Response.Price
	}
	return ""
}

func (s *Service) recordOutcome(result *Result) {
	switch {
	case result.Available:
		s.metrics.IncrementCheck("available")
	case result.Reason == ReasonPrice:
		s.metrics.IncrementCheck("price_gated")
	default:
		s.metrics.IncrementCheck("unavailable")
	}
}
