package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func useLanguage(t *testing.T, code string) {
	t.Helper()
	require.NoError(t, SetLanguage(code))
	t.Cleanup(func() { require.NoError(t, SetLanguage("en")) })
}

func TestEnglishByDefault(t *testing.T) {
	assert.Equal(t, "Select a device:", T("menu_title"))
	assert.Equal(t, "No UART services found", T("no_consoles"))
	assert.Equal(t, "Connected to Logger", TData("connected", map[string]any{"Name": "Logger"}))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "Found 1 console", TPlural("found_count", 1))
	assert.Equal(t, "Found 3 consoles", TPlural("found_count", 3))
}

func TestGerman(t *testing.T) {
	useLanguage(t, "de-DE")

	assert.Equal(t, "Gerät auswählen:", T("menu_title"))
	assert.Equal(t, "2 Konsolen gefunden", TPlural("found_count", 2))
}

func TestUnsupportedLanguageFallsBackToEnglish(t *testing.T) {
	useLanguage(t, "fr")
	assert.Equal(t, "Select a device:", T("menu_title"))
}

func TestUnknownMessage(t *testing.T) {
	assert.Equal(t, "no_such_message", T("no_such_message"))
}

func TestInvalidLanguage(t *testing.T) {
	require.Error(t, SetLanguage("not a tag!"))
}

func TestLocaleFilesComplete(t *testing.T) {
	assert.ElementsMatch(t, []language.Tag{language.English, language.German}, Languages())

	// Every English message has a German translation.
	for _, id := range []string{
		"menu_title", "scanning", "no_consoles", "device_not_found", "connecting",
		"connected", "session_hint", "session_hint_read_only", "disconnected",
		"cancelled", "scan_header", "config_written",
	} {
		en := T(id)
		useLanguage(t, "de")
		de := T(id)
		require.NoError(t, SetLanguage("en"))
		assert.NotEqual(t, id, en, id)
		assert.NotEqual(t, en, de, id)
	}
}
