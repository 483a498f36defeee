// Package i18n localizes user-facing messages from embedded TOML files.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

var (
	mu        sync.RWMutex
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
)

func init() {
	b, err := loadBundle()
	if err != nil {
		panic("i18n: " + err.Error())
	}
	bundle = b
	localizer = i18n.NewLocalizer(b, language.English.String())
}

func loadBundle() (*i18n.Bundle, error) {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		name := path.Join("locales", entry.Name())
		data, err := locales.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if _, err := b.ParseMessageFileBytes(data, entry.Name()); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}
	return b, nil
}

// SetLanguage selects the language for later lookups. Messages missing in
// that language fall back to English.
func SetLanguage(code string) error {
	tag, err := language.Parse(code)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", code, err)
	}

	mu.Lock()
	defer mu.Unlock()
	localizer = i18n.NewLocalizer(bundle, tag.String(), language.English.String())
	return nil
}

// Languages returns the languages with a message file.
func Languages() []language.Tag {
	return bundle.LanguageTags()
}

// T returns the message for id, or id itself when it is unknown.
func T(id string) string {
	return localize(&i18n.LocalizeConfig{MessageID: id}, id)
}

// TData fills the message's template with data.
func TData(id string, data map[string]any) string {
	return localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data}, id)
}

// TPlural picks the plural form for count. The template sees it as .Count.
func TPlural(id string, count int) string {
	return localize(&i18n.LocalizeConfig{
		MessageID:    id,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	}, id)
}

func localize(config *i18n.LocalizeConfig, fallback string) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()

	msg, err := l.Localize(config)
	if err != nil {
		return fallback
	}
	return msg
}
