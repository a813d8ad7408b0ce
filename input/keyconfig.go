package input

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

var (
	ErrUnknownAction = errors.New("input: unknown action")
	ErrUnknownKey    = errors.New("input: unknown key")
)

// Rune aliases for keys that can't be bare single-char config keys
var runeAliases = map[string]rune{
	"space":     ' ',
	"backslash": '\\',
}

// keysByName is the lower-cased inverse of tcell.KeyNames
var keysByName = func() map[string]tcell.Key {
	m := make(map[string]tcell.Key, len(tcell.KeyNames))
	for k, name := range tcell.KeyNames {
		m[strings.ToLower(name)] = k
	}
	return m
}()

// LoadKeyConfig parses key name → action name bindings into a sparse override table
// Key names are single characters, rune aliases, or tcell key names ("Up", "Ctrl-A")
// The "none" action unbinds the key when merged
func LoadKeyConfig(bindings map[string]string) (*KeyTable, error) {
	kt := &KeyTable{
		Keys:  make(map[tcell.Key]Action),
		Runes: make(map[rune]Action),
	}
	for keyStr, actionName := range bindings {
		a, ok := actionRegistry[strings.ToLower(strings.TrimSpace(actionName))]
		if !ok {
			return nil, fmt.Errorf("key %q: %w: %q", keyStr, ErrUnknownAction, actionName)
		}
		if r, ok := resolveRune(keyStr); ok {
			kt.Runes[unicode.ToLower(r)] = a
			continue
		}
		k, ok := keysByName[strings.ToLower(keyStr)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, keyStr)
		}
		kt.Keys[k] = a
	}
	return kt, nil
}

// resolveRune converts a config key string to a rune
// Accepts single characters and named aliases
func resolveRune(s string) (rune, bool) {
	if r, ok := runeAliases[strings.ToLower(s)]; ok {
		return r, true
	}
	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], true
	}
	return 0, false
}

// MergeKeyTable returns a new KeyTable with base values overridden by override
// Entries bound to "none" delete the key from the result
func MergeKeyTable(base, override *KeyTable) *KeyTable {
	result := base.Clone()
	if override == nil {
		return result
	}
	mergeMap(result.Keys, override.Keys)
	mergeMap(result.Runes, override.Runes)
	return result
}

func mergeMap[K comparable](base, override map[K]Action) {
	for k, v := range override {
		if v == actionNone {
			delete(base, k)
		} else {
			base[k] = v
		}
	}
}
