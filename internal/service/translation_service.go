package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/noah-isme/ai-saathi-api/internal/models"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
)

// supportedLanguages pairs language names with their BCP 47 tags; the first entry is the matcher fallback.
var supportedLanguages = []struct {
	name string
	tag  language.Tag
}{
	{LanguageEnglish, language.English},
	{LanguageHindi, language.Hindi},
	{LanguageMarathi, language.Marathi},
	{LanguageBengali, language.Bengali},
	{LanguageTamil, language.Tamil},
	{LanguageTelugu, language.Telugu},
}

// LanguageOption describes a supported language.
type LanguageOption struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Label string `json:"label"`
}

// TranslationServiceConfig tunes the translation service.
type TranslationServiceConfig struct {
	DefaultLanguage string
	DynamicCacheTTL time.Duration
}

// TranslationService resolves static catalog messages and translates free text through the translation agent.
type TranslationService struct {
	catalog         Catalog
	agents          agentRunner
	cache           *CacheService
	logger          *zap.Logger
	matcher         language.Matcher
	defaultLanguage string
	dynamicTTL      time.Duration
}

// NewTranslationService constructs a TranslationService. A nil catalog uses DefaultCatalog.
func NewTranslationService(catalog Catalog, agents agentRunner, cache *CacheService, logger *zap.Logger, cfg TranslationServiceConfig) *TranslationService {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DynamicCacheTTL <= 0 {
		cfg.DynamicCacheTTL = 24 * time.Hour
	}
	tags := make([]language.Tag, len(supportedLanguages))
	for i, l := range supportedLanguages {
		tags[i] = l.tag
	}
	s := &TranslationService{
		catalog:    catalog,
		agents:     agents,
		cache:      cache,
		logger:     logger,
		matcher:    language.NewMatcher(tags),
		dynamicTTL: cfg.DynamicCacheTTL,
	}
	s.defaultLanguage = LanguageEnglish
	if name, ok := s.lookupName(cfg.DefaultLanguage); ok {
		s.defaultLanguage = name
	}
	return s
}

// DefaultLanguage returns the configured fallback language.
func (s *TranslationService) DefaultLanguage() string {
	return s.defaultLanguage
}

// Languages lists the supported languages.
func (s *TranslationService) Languages() []LanguageOption {
	title := cases.Title(language.English)
	out := make([]LanguageOption, 0, len(supportedLanguages))
	for _, l := range supportedLanguages {
		out = append(out, LanguageOption{Name: l.name, Code: l.tag.String(), Label: title.String(l.name)})
	}
	return out
}

// Supported reports whether name (or a BCP 47 code) is a supported language.
func (s *TranslationService) Supported(name string) bool {
	_, ok := s.lookupName(name)
	return ok
}

// Resolve picks the response language. An explicit choice wins over the
// Accept-Language header; anything unsupported falls back to the default.
func (s *TranslationService) Resolve(acceptLanguage, explicit string) string {
	if name, ok := s.lookupName(explicit); ok {
		return name
	}
	if strings.TrimSpace(acceptLanguage) == "" {
		return s.defaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return s.defaultLanguage
	}
	_, idx, confidence := s.matcher.Match(tags...)
	if confidence == language.No {
		return s.defaultLanguage
	}
	return supportedLanguages[idx].name
}

// Translate returns the catalog message for key in lang, falling back to
// English and finally to the key itself.
func (s *TranslationService) Translate(key, lang string) string {
	name, ok := s.lookupName(lang)
	if !ok {
		name = s.defaultLanguage
	}
	if msg, ok := s.catalog[name][key]; ok {
		return msg
	}
	if msg, ok := s.catalog[LanguageEnglish][key]; ok {
		return msg
	}
	return key
}

// TranslateWith translates key and substitutes positional {n} placeholders.
func (s *TranslationService) TranslateWith(key, lang string, args ...interface{}) string {
	msg := s.Translate(key, lang)
	if len(args) == 0 {
		return msg
	}
	pairs := make([]string, 0, len(args)*2)
	for i, arg := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", fmt.Sprint(arg))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// Catalog returns the full message set for lang with English filling the gaps.
func (s *TranslationService) Catalog(lang string) (string, map[string]string, error) {
	name, ok := s.lookupName(lang)
	if !ok {
		return "", nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("language %q is not supported", lang))
	}
	out := make(map[string]string, len(s.catalog[LanguageEnglish]))
	for key, msg := range s.catalog[LanguageEnglish] {
		out[key] = msg
	}
	for key, msg := range s.catalog[name] {
		out[key] = msg
	}
	return name, out, nil
}

// Keys lists every message key known in English, sorted.
func (s *TranslationService) Keys() []string {
	keys := make([]string, 0, len(s.catalog[LanguageEnglish]))
	for key := range s.catalog[LanguageEnglish] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// TranslateDynamic translates free text from English into lang using the
// translation agent. Results are cached; English targets and blank text are
// returned unchanged.
func (s *TranslationService) TranslateDynamic(ctx context.Context, text, lang string) (string, error) {
	name, ok := s.lookupName(lang)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("language %q is not supported", lang))
	}
	if name == LanguageEnglish || strings.TrimSpace(text) == "" {
		return text, nil
	}

	key := dynamicTranslationKey(name, text)
	var cached string
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	if s.agents == nil {
		return "", appErrors.Clone(appErrors.ErrAgentUnavailable, "translation agent is not configured")
	}
	result, err := s.agents.Run(ctx, models.AgentTranslation, map[string]interface{}{
		"text":            text,
		"source_language": LanguageEnglish,
		"target_language": name,
	})
	if err != nil {
		return "", err
	}
	translated, ok := result["translated_text"].(string)
	if !ok || translated == "" {
		return "", appErrors.Clone(appErrors.ErrAgentUnavailable, "translation agent returned no text")
	}
	if err := s.cache.Set(ctx, key, translated, s.dynamicTTL); err != nil {
		s.logger.Debug("failed to cache dynamic translation", zap.String("language", name), zap.Error(err))
	}
	return translated, nil
}

// TranslateDynamicOrOriginal is TranslateDynamic that falls back to text on failure.
func (s *TranslationService) TranslateDynamicOrOriginal(ctx context.Context, text, lang string) string {
	translated, err := s.TranslateDynamic(ctx, text, lang)
	if err != nil {
		s.logger.Debug("dynamic translation fell back to source text", zap.String("language", lang), zap.Error(err))
		return text
	}
	return translated
}

// lookupName accepts a language name ("Hindi") or a BCP 47 code ("hi-IN").
func (s *TranslationService) lookupName(raw string) (string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", false
	}
	for _, l := range supportedLanguages {
		if raw == l.name {
			return l.name, true
		}
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	for _, l := range supportedLanguages {
		if b, _ := l.tag.Base(); b == base {
			return l.name, true
		}
	}
	return "", false
}

func dynamicTranslationKey(lang, text string) string {
	sum := sha1.Sum([]byte(text))
	return "i18n:dyn:" + lang + ":" + hex.EncodeToString(sum[:])
}
