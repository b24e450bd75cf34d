package validators

import (
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// Registry manages URL validators and classifies hosts against their
// combined allow-list.
type Registry struct {
	mu         sync.RWMutex
	validators []Validator
	legacy     bool
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithLegacySubstringMatch makes Classify accept any host that merely
// contains an allow-listed domain. This reproduces the historical behaviour
// and accepts hosts like facebook.com.attacker.example; keep it off unless
// exact parity is required.
func WithLegacySubstringMatch(enabled bool) RegistryOption {
	return func(r *Registry) {
		r.legacy = enabled
	}
}

// NewRegistry creates a new validator registry
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		validators: make([]Validator, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a validator to the registry
func (r *Registry) Register(v Validator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators = append(r.validators, v)
}

// Classify decides whether raw belongs to a supported platform. It never
// touches the network; unparsable input is Unsupported.
func (r *Registry) Classify(raw string) PlatformKind {
	host, ok := hostOf(raw)
	if !ok {
		return Unsupported
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.validators {
		if r.legacy {
			if containsAny(host, v.Domains()) {
				return Supported
			}
			continue
		}
		if matchHost(host, v.Domains()) {
			return Supported
		}
	}
	return Unsupported
}

// Validate finds the appropriate validator and validates the URL
func (r *Registry) Validate(url string) ValidationResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.validators {
		if v.CanHandle(url) {
			return v.Validate(url)
		}
	}

	return ValidationResult{
		Valid:      false,
		SourceType: SourceUnknown,
		URL:        url,
		Error:      "unsupported URL format",
	}
}

// SupportedPlatforms returns display names in registration order
func (r *Registry) SupportedPlatforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.validators))
	for _, v := range r.validators {
		names = append(names, v.DisplayName())
	}
	return names
}

// DefaultRegistry creates a registry with all built-in validators
func DefaultRegistry(opts ...RegistryOption) *Registry {
	r := NewRegistry(opts...)
	r.Register(NewYouTubeValidator())
	r.Register(NewFacebookValidator())
	return r
}

// matchHost reports whether host sits under one of domains on a label
// boundary: the host's registrable domain (eTLD+1) must equal that of an
// allow-listed entry, so music.youtube.com matches while
// facebook.com.attacker.example does not.
func matchHost(host string, domains []string) bool {
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return false
	}
	for _, d := range domains {
		if want, err := publicsuffix.EffectiveTLDPlusOne(d); err == nil && want == registrable {
			return true
		}
	}
	return false
}

func containsAny(host string, domains []string) bool {
	for _, d := range domains {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}
