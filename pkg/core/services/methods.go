package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jakechorley/deskrota/pkg/core/search"
)

// ErrUnknownMethod is returned for method names that are neither a method nor an alias
var ErrUnknownMethod = errors.New("unknown method")

// methodAliases maps legacy experiment labels to methods
var methodAliases = map[string]string{
	"local":      search.MethodILS,
	"no_local":   search.MethodAnneal,
	"ent1":       search.MethodHillClimb,
	"ent1_local": search.MethodHillClimb,
	"ent1_meta":  search.MethodAnneal,
	"ent1_sa":    search.MethodAnneal,
}

// ResolveMethod returns the canonical method name for a method or alias
func ResolveMethod(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := methodAliases[key]; ok {
		key = alias
	}

	switch key {
	case search.MethodHillClimb, search.MethodAnneal, search.MethodILS, search.MethodGenetic:
		return key, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

// ResolveMethods resolves every name, dropping duplicates and keeping first-seen order
func ResolveMethods(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	methods := make([]string, 0, len(names))
	for _, name := range names {
		method, err := ResolveMethod(name)
		if err != nil {
			return nil, err
		}
		if seen[method] {
			continue
		}
		seen[method] = true
		methods = append(methods, method)
	}
	return methods, nil
}
