package slp

import "strings"

// ServiceType is a structured service-type name, either "service:concrete"
// or "service:abstract:concrete". Equality is case-insensitive on every
// part.
type ServiceType struct {
	Abstract string // empty when the type has no abstract part
	Concrete string
}

// DirectoryAgent is the well-known service type a DA answers discovery
// requests for.
var DirectoryAgent = ServiceType{Concrete: "directory-agent"}

// ParseServiceType parses "service:concrete" or "service:abstract:concrete".
func ParseServiceType(s string) (ServiceType, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		if !strings.EqualFold(parts[0], "service") || parts[1] == "" {
			return ServiceType{}, NewError(InvalidRegistration, "malformed service type "+s)
		}
		return ServiceType{Concrete: parts[1]}, nil
	case 3:
		if !strings.EqualFold(parts[0], "service") || parts[1] == "" || parts[2] == "" {
			return ServiceType{}, NewError(InvalidRegistration, "malformed service type "+s)
		}
		return ServiceType{Abstract: parts[1], Concrete: parts[2]}, nil
	default:
		return ServiceType{}, NewError(InvalidRegistration, "malformed service type "+s)
	}
}

// MustParseServiceType is for well-known constants; it panics on a malformed
// input.
func MustParseServiceType(s string) ServiceType {
	t, err := ParseServiceType(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t ServiceType) String() string {
	if t.Abstract == "" {
		return "service:" + t.Concrete
	}
	return "service:" + t.Abstract + ":" + t.Concrete
}

func (t ServiceType) Equals(other ServiceType) bool {
	return strings.EqualFold(t.Abstract, other.Abstract) && strings.EqualFold(t.Concrete, other.Concrete)
}

func (t ServiceType) IsZero() bool {
	return t.Concrete == "" && t.Abstract == ""
}
