// loader.go — загрузка встроенных каталогов переводов.
package i18n

import (
	"fmt"
	"log/slog"
)

// LoadEmbedded создаёт Bundle и загружает в него locales/en.json и locales/ru.json.
func LoadEmbedded(logger *slog.Logger) (*Bundle, error) {
	bundle := NewBundle(logger)

	for _, lang := range []string{LangEN, LangRU} {
		path := fmt.Sprintf("locales/%s.json", lang)
		data, err := LocaleFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("i18n: не удалось прочитать %s: %w", path, err)
		}
		if err := bundle.LoadMessages(lang, data); err != nil {
			return nil, err
		}
	}

	logger.Info("i18n каталоги загружены", slog.Int("languages", 2))
	return bundle, nil
}
