// Пакет i18n — тексты формы создания пользователя и сообщения валидации.
// Каталоги en/ru встроены в бинарник; язык запроса определяется middleware
// (query "lang" → cookie "lang" → Accept-Language → "en").
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Поддерживаемые языки.
const (
	LangEN = "en"
	LangRU = "ru"
)

// matcher — языковой matcher для Accept-Language.
var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Russian,
})

type contextKey string

const contextKeyLang contextKey = "i18n_lang"

// Translator — поиск текста по ключу сообщения для языка.
type Translator interface {
	Translate(lang, key string) string
}

// Bundle — хранилище каталогов переводов (lang → key → текст).
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string
	logger   *slog.Logger
}

// NewBundle создаёт пустой Bundle.
func NewBundle(logger *slog.Logger) *Bundle {
	return &Bundle{
		catalogs: make(map[string]map[string]string),
		logger:   logger,
	}
}

// LoadMessages загружает плоский JSON-каталог {"key": "text"} для языка.
// Повторная загрузка дополняет каталог, совпадающие ключи перезаписываются.
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: ошибка парсинга каталога %s: %w", lang, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	catalog, ok := b.catalogs[lang]
	if !ok {
		catalog = make(map[string]string, len(messages))
		b.catalogs[lang] = catalog
	}
	for k, v := range messages {
		catalog[k] = v
	}

	if b.logger != nil {
		b.logger.Debug("i18n каталог загружен",
			slog.String("lang", lang),
			slog.Int("keys", len(messages)),
		)
	}
	return nil
}

// Translate возвращает перевод по ключу.
// Порядок поиска: запрошенный язык → английский → сам ключ.
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if catalog, ok := b.catalogs[lang]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}

	if lang != LangEN {
		if catalog, ok := b.catalogs[LangEN]; ok {
			if msg, ok := catalog[key]; ok {
				return msg
			}
		}
	}

	return key
}

// TranslateAll переводит каждое сообщение списка, сохраняя порядок.
func (b *Bundle) TranslateAll(lang string, keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = b.Translate(lang, k)
	}
	return out
}

// WithLang помещает язык в контекст.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, contextKeyLang, lang)
}

// LangFromContext извлекает язык из контекста. Default: "en".
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(contextKeyLang).(string); ok && lang != "" {
		return lang
	}
	return LangEN
}

// T переводит ключ на язык из контекста.
func T(ctx context.Context, tr Translator, key string) string {
	if tr == nil {
		return key
	}
	return tr.Translate(LangFromContext(ctx), key)
}

// MatchLanguage определяет лучший язык из Accept-Language заголовка.
func MatchLanguage(acceptLanguage string) string {
	tag, _ := language.MatchStrings(matcher, acceptLanguage)
	base, _ := tag.Base()

	if strings.HasPrefix(base.String(), LangRU) {
		return LangRU
	}
	return LangEN
}

// IsSupported проверяет, поддерживается ли язык.
func IsSupported(lang string) bool {
	return lang == LangEN || lang == LangRU
}
