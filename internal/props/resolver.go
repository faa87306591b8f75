package props

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/vvka-141/pgscan/pkg/pgscan"
)

// maxDepth bounds expression nesting so that self-referencing properties
// fail instead of recursing forever.
const maxDepth = 32

// Resolver looks up properties and evaluates ${...} expressions.
type Resolver struct {
	properties map[string]string
}

// New creates a resolver over the process environment and then each source
// in order; later sources override earlier ones.
func New(sources ...map[string]string) *Resolver {
	properties := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok && key != "" {
			properties[key] = value
		}
	}
	for _, source := range sources {
		for key, value := range source {
			properties[key] = value
		}
	}
	return &Resolver{properties: properties}
}

// Contains reports whether key is defined. Expressions are not evaluated.
func (r *Resolver) Contains(key string) bool {
	_, ok := r.properties[key]
	return ok
}

// Keys returns every defined key, sorted.
func (r *Resolver) Keys() []string {
	keys := make([]string, 0, len(r.properties))
	for key := range r.properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get resolves key, which may be a plain name or an expression. The boolean
// is false when a plain key is undefined.
func (r *Resolver) Get(key string) (string, bool, error) {
	return r.get(key, 0)
}

// GetOr resolves key, falling back to the resolved def when it is undefined.
func (r *Resolver) GetOr(key, def string) (string, error) {
	return r.getOr(key, def, 0)
}

// Required resolves key and fails with pgscan.ErrPropertyNotFound when it is
// undefined.
func (r *Resolver) Required(key string) (string, error) {
	return r.required(key, 0)
}

// Resolve evaluates value as if it were stored under some key: an
// expression is resolved, anything else is returned unchanged.
func (r *Resolver) Resolve(value string) (string, error) {
	return r.resolveValue(value, 0)
}

func (r *Resolver) get(key string, depth int) (string, bool, error) {
	if depth > maxDepth {
		return "", false, fmt.Errorf("%w: property %q nests more than %d levels", pgscan.ErrInvalidConfig, key, maxDepth)
	}

	e, isExpr, err := parseExpr(key)
	if err != nil {
		return "", false, err
	}
	if isExpr {
		value, err := r.evaluate(e, depth+1)
		return value, err == nil, err
	}

	value, ok := r.properties[key]
	if !ok {
		return "", false, nil
	}
	resolved, err := r.resolveValue(value, depth+1)
	if err != nil {
		return "", false, err
	}
	return resolved, true, nil
}

func (r *Resolver) getOr(key, def string, depth int) (string, error) {
	value, found, err := r.get(key, depth)
	if err != nil {
		return "", err
	}
	if found {
		return value, nil
	}
	return r.resolveValue(def, depth+1)
}

func (r *Resolver) required(key string, depth int) (string, error) {
	value, found, err := r.get(key, depth)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %s", pgscan.ErrPropertyNotFound, key)
	}
	return value, nil
}

// resolveValue evaluates a stored value or default that may itself be an
// expression.
func (r *Resolver) resolveValue(value string, depth int) (string, error) {
	e, isExpr, err := parseExpr(value)
	if err != nil {
		return "", err
	}
	if !isExpr {
		return value, nil
	}
	return r.evaluate(e, depth+1)
}

func (r *Resolver) evaluate(e expr, depth int) (string, error) {
	if e.hasDefault {
		return r.getOr(e.key, e.def, depth)
	}
	return r.required(e.key, depth)
}

type expr struct {
	key        string
	def        string
	hasDefault bool
}

// parseExpr recognizes "${key}" and "${key:default}". The key ends at the
// first colon, so defaults may contain colons and further expressions.
func parseExpr(s string) (expr, bool, error) {
	if !strings.HasPrefix(s, "${") || !strings.HasSuffix(s, "}") {
		return expr{}, false, nil
	}
	body := s[2 : len(s)-1]
	key, def, hasDefault := strings.Cut(body, ":")
	if key == "" {
		return expr{}, false, fmt.Errorf("%w: empty key in %q", pgscan.ErrInvalidConfig, s)
	}
	return expr{key: key, def: def, hasDefault: hasDefault}, true, nil
}
