// Package policy decides which input combinations may be submitted for analysis.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rbright/courtside/internal/form"
)

// Policy is a pure predicate over form state deciding submit readiness.
type Policy interface {
	Name() string
	Satisfied(form.State) bool
	// Requirement describes, for users, what the policy needs before submitting.
	Requirement() string
}

const (
	NameStrict        = "strict"
	NameMediaOptional = "media_optional"
	NameImageRequired = "image_required"
)

type rule struct {
	name        string
	requirement string
	check       func(form.State) bool
}

func (r rule) Name() string                { return r.name }
func (r rule) Requirement() string         { return r.requirement }
func (r rule) Satisfied(s form.State) bool { return r.check(s) }

var (
	// Strict needs a court image or game video and a non-blank transcript.
	Strict Policy = rule{
		name:        NameStrict,
		requirement: "upload a court image or game video and enter a transcript",
		check: func(s form.State) bool {
			return (s.HasImage() || s.HasVideo()) && s.HasTranscript()
		},
	}

	// MediaOptional needs a game video or a non-blank transcript; images never count.
	MediaOptional Policy = rule{
		name:        NameMediaOptional,
		requirement: "upload a game video or enter a transcript",
		check: func(s form.State) bool {
			return s.HasVideo() || s.HasTranscript()
		},
	}

	// ImageRequired needs a court image and a non-blank transcript.
	ImageRequired Policy = rule{
		name:        NameImageRequired,
		requirement: "upload a court image and enter a transcript",
		check: func(s form.State) bool {
			return s.HasImage() && s.HasTranscript()
		},
	}
)

var registry = map[string]Policy{
	NameStrict:        Strict,
	NameMediaOptional: MediaOptional,
	NameImageRequired: ImageRequired,
}

// Lookup returns the named policy. There is no fallback: an empty or unknown name is an error.
func Lookup(name string) (Policy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("validation policy must be set (one of: %s)", strings.Join(Names(), ", "))
	}
	p, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("unknown validation policy %q (one of: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names lists the registered policy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
