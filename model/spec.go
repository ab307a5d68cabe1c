package model

import "strings"

// Spec names a model together with the host that serves it.
type Spec struct {
	Host  string
	Model string
}

// ParseSpec splits "host/model" into its parts.
//
// Model names may contain slashes themselves ("mistralai/Mixtral-8x7B"), so
// the prefix is only taken as a host when isHost accepts it. A nil isHost
// accepts nothing.
func ParseSpec(s string, isHost func(string) bool) Spec {
	s = strings.TrimSpace(s)
	prefix, rest, found := strings.Cut(s, "/")
	if found && isHost != nil && isHost(strings.ToLower(prefix)) {
		return Spec{Host: strings.ToLower(prefix), Model: rest}
	}
	return Spec{Model: s}
}

// String returns the spec in "host/model" form, or just the model when no
// host is set.
func (s Spec) String() string {
	if s.Host == "" {
		return s.Model
	}
	return s.Host + "/" + s.Model
}

// WithDefaultHost returns s with Host set to host if it was empty.
func (s Spec) WithDefaultHost(host string) Spec {
	if s.Host == "" {
		s.Host = host
	}
	return s
}
