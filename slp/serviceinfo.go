package slp

import (
	"strings"
	"time"
)

// ServiceKey identifies a registration: a ServiceURL plus a language tag.
// Two registrations with the same key collide; different languages are
// independent entries. Equality is case-insensitive on both parts, so
// ServiceKey is safe to use as a map key directly.
type ServiceKey struct {
	url      string // normalized (lower-cased)
	language string // normalized (lower-cased)
}

func NewServiceKey(url ServiceURL, language string) ServiceKey {
	return ServiceKey{url: url.normalized(), language: strings.ToLower(language)}
}

func (k ServiceKey) String() string { return k.url + "[" + k.language + "]" }

// ServiceInfo is a single cached registration: identity, domain
// partitioning, attributes, language, and lifetime bookkeeping.
type ServiceInfo struct {
	Key          ServiceKey
	URL          ServiceURL
	Type         ServiceType
	Scopes       Scopes
	Attributes   Attributes
	Language     string
	RegisteredAt time.Time
}

// NewServiceInfo builds a ServiceInfo from its registration fields,
// deriving Type and Key from the URL.
func NewServiceInfo(url ServiceURL, scopes Scopes, attrs Attributes, language string, registeredAt time.Time) (ServiceInfo, error) {
	t, err := url.ServiceType()
	if err != nil {
		return ServiceInfo{}, err
	}
	return ServiceInfo{
		Key:          NewServiceKey(url, language),
		URL:          url,
		Type:         t,
		Scopes:       scopes,
		Attributes:   attrs,
		Language:     language,
		RegisteredAt: registeredAt,
	}, nil
}

// Expired reports whether the service's lifetime has elapsed as of now. A
// lifetime of LifetimePermanent never expires.
func (s ServiceInfo) Expired(now time.Time) bool {
	if s.URL.Lifetime == LifetimePermanent {
		return false
	}
	return now.Sub(s.RegisteredAt) >= time.Duration(s.URL.Lifetime)*time.Second
}

// WithAttributes returns a copy of s with Attributes replaced; everything
// else, including RegisteredAt, is preserved - updates never reset the
// lifetime clock (§3).
func (s ServiceInfo) WithAttributes(attrs Attributes) ServiceInfo {
	s.Attributes = attrs
	return s
}
