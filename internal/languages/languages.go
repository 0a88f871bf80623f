package languages

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultName is used whenever a code is unset or unknown.
const DefaultName = "English"

var builtin = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"pl": "Polish",
	"uk": "Ukrainian",
	"ru": "Russian",
	"tr": "Turkish",
	"ar": "Arabic",
	"he": "Hebrew",
	"hi": "Hindi",
	"bn": "Bengali",
	"id": "Indonesian",
	"vi": "Vietnamese",
	"th": "Thai",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"sv": "Swedish",
	"no": "Norwegian",
	"da": "Danish",
	"fi": "Finnish",
	"cs": "Czech",
	"ro": "Romanian",
	"el": "Greek",
	"hu": "Hungarian",
	"ka": "Georgian",
}

// Table maps short language codes to display names. It is read-only after construction.
type Table struct {
	names map[string]string
}

func Default() *Table {
	t := &Table{names: make(map[string]string, len(builtin))}
	for k, v := range builtin {
		t.names[k] = v
	}
	return t
}

// Load returns the builtin table extended by a YAML file of `code: Name` pairs.
// An empty path yields the builtin table.
func Load(path string) (*Table, error) {
	t := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read languages file: %w", err)
	}
	extra := map[string]string{}
	if err := yaml.Unmarshal(raw, &extra); err != nil {
		return nil, fmt.Errorf("parse languages file: %w", err)
	}
	for code, name := range extra {
		code = normalize(code)
		name = strings.TrimSpace(name)
		if code == "" || name == "" {
			continue
		}
		t.names[code] = name
	}
	return t, nil
}

// Name resolves code to a display name, falling back to DefaultName.
func (t *Table) Name(code *string) string {
	if t == nil || code == nil {
		return DefaultName
	}
	if name, ok := t.names[normalize(*code)]; ok {
		return name
	}
	return DefaultName
}

// Codes lists known codes in sorted order.
func (t *Table) Codes() []string {
	out := make([]string, 0, len(t.names))
	for k := range t.names {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
