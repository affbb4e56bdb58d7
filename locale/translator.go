// Package locale provides JSON-backed UI translations with dot-path lookup
// and fallback to a default language.
package locale

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultLang is the language used when a key is missing from the requested
// language, and the language loaded when none is requested.
const DefaultLang = "ru"

// Translator resolves dot-separated keys like "canvas.idea_seed" against
// per-language JSON catalogs. Lookup falls back to DefaultLang, then to the
// key itself, so a missing translation never breaks the UI.
type Translator struct {
	mu       sync.RWMutex
	lang     string
	catalogs map[string]map[string]string
}

// NewTranslator loads every *.json catalog from dir (the file stem is the
// language code) and selects lang as the active language.
func NewTranslator(fsys fs.FS, lang string) (*Translator, error) {
	if lang == "" {
		lang = DefaultLang
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read locale directory: %w", err)
	}

	catalogs := make(map[string]map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}

		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read locale file %s: %w", name, err)
		}

		var raw map[string]interface{}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse locale file %s: %w", name, err)
		}

		code := strings.TrimSuffix(name, ".json")
		catalogs[code] = flatten("", raw)
	}

	if len(catalogs) == 0 {
		return nil, fmt.Errorf("no locale catalogs found")
	}
	if _, ok := catalogs[lang]; !ok {
		return nil, fmt.Errorf("locale %q not found", lang)
	}

	return &Translator{lang: lang, catalogs: catalogs}, nil
}

// flatten turns nested JSON objects into dot-path keys. Non-string leaves
// are ignored.
func flatten(prefix string, raw map[string]interface{}) map[string]string {
	out := make(map[string]string)
	for key, value := range raw {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			out[path] = v
		case map[string]interface{}:
			for k, s := range flatten(path, v) {
				out[k] = s
			}
		}
	}
	return out
}

// Lang returns the active language code.
func (t *Translator) Lang() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// SetLang switches the active language. Unknown languages are rejected.
func (t *Translator) SetLang(lang string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.catalogs[lang]; !ok {
		return fmt.Errorf("locale %q not found", lang)
	}
	t.lang = lang
	return nil
}

// Languages returns the loaded language codes.
func (t *Translator) Languages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	langs := make([]string, 0, len(t.catalogs))
	for code := range t.catalogs {
		langs = append(langs, code)
	}
	return langs
}

// T resolves key in the active language, falling back to DefaultLang and
// finally to the key itself.
func (t *Translator) T(key string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if s, ok := t.catalogs[t.lang][key]; ok {
		return s
	}
	if s, ok := t.catalogs[DefaultLang][key]; ok {
		return s
	}
	return key
}

// Tf resolves key and formats it with args via fmt.Sprintf.
func (t *Translator) Tf(key string, args ...interface{}) string {
	return fmt.Sprintf(t.T(key), args...)
}
