// =============================================================================
// Invoice Combination Finder - Invoice ID Transformations
// =============================================================================
//
// Invoice ids exported by accounting systems rarely match the ids people type.
// A profile can normalize every id read from a file before the search runs.
//
// TRANSFORMATION TYPES:
//   - trim, uppercase, lowercase
//   - prepend_string, append_string
//   - replace, regex_replace
//   - pad_zeros_to_length
//   - lookup
//
// Actions are applied in the order they are listed in the profile.
//
// =============================================================================

package processor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/config"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies a profile's id transformations. Regular expressions are
// compiled once, when the transformer is built.
type Transformer struct {
	actions  []config.TransformationAction
	patterns map[int]*regexp.Regexp
}

// NewTransformer validates and prepares the given actions.
//
// RETURNS:
//   - A Transformer ready for concurrent use.
//   - An error for an unknown action type or an invalid regex.
func NewTransformer(actions []config.TransformationAction) (*Transformer, error) {
	t := &Transformer{
		actions:  actions,
		patterns: make(map[int]*regexp.Regexp),
	}

	for i, action := range actions {
		if !config.KnownTransformations[action.Type] {
			return nil, fmt.Errorf("unknown transformation type %q", action.Type)
		}
		if action.Type == "regex_replace" && action.Find != "" {
			re, err := regexp.Compile(action.Find)
			if err != nil {
				return nil, fmt.Errorf("invalid regex pattern %q: %w", action.Find, err)
			}
			t.patterns[i] = re
		}
		if action.Type == "pad_zeros_to_length" {
			if n, err := strconv.Atoi(action.Value); err != nil || n <= 0 {
				return nil, fmt.Errorf("pad_zeros_to_length needs a positive length, got %q", action.Value)
			}
		}
	}

	return t, nil
}

// Empty reports whether the transformer has nothing to do.
func (t *Transformer) Empty() bool {
	return len(t.actions) == 0
}

// Transform applies every action to id in order.
func (t *Transformer) Transform(id string) string {
	for i, action := range t.actions {
		id = t.apply(i, id, action)
	}
	return id
}

// apply applies a single transformation action.
func (t *Transformer) apply(index int, value string, action config.TransformationAction) string {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "trim":
		return strings.TrimSpace(value)

	case "uppercase":
		return strings.ToUpper(value)

	case "lowercase":
		return strings.ToLower(value)

	case "prepend_string":
		// EXAMPLE: "1001" with value "INV-" -> "INV-1001"
		return action.Value + value

	case "append_string":
		return value + action.Value

	case "replace":
		// EXAMPLE: "INV_1001" with find "_" and value "-" -> "INV-1001"
		if action.Find == "" {
			return value
		}
		return strings.ReplaceAll(value, action.Find, action.Value)

	case "regex_replace":
		// EXAMPLE: "inv 1001/A" with find "[^0-9]" and value "" -> "1001"
		re, ok := t.patterns[index]
		if !ok {
			return value
		}
		return re.ReplaceAllString(value, action.Value)

	// =========================================================================
	// NUMERIC FORMATTING
	// =========================================================================

	case "pad_zeros_to_length":
		// EXAMPLE: "123" with value "6" -> "000123"
		n, _ := strconv.Atoi(action.Value)
		return PadLeft(value, n, '0')

	// =========================================================================
	// LOOKUPS
	// =========================================================================

	case "lookup":
		// Ids missing from the table pass through unchanged.
		if replacement, ok := action.LookupTable[value]; ok {
			return replacement
		}
		return value
	}

	return value
}

// PadLeft pads s on the left with padChar up to length runes.
func PadLeft(s string, length int, padChar rune) string {
	missing := length - len([]rune(s))
	if missing <= 0 {
		return s
	}
	return strings.Repeat(string(padChar), missing) + s
}
