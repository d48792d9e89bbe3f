package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ai-saathi-api/internal/dto"
	"github.com/noah-isme/ai-saathi-api/internal/service"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
)

type fakeTranslations struct {
	translateErr error
	lastText     string
	lastLang     string
}

func (f *fakeTranslations) Languages() []service.LanguageOption {
	return []service.LanguageOption{{Name: "english", Code: "en", Label: "English"}, {Name: "hindi", Code: "hi", Label: "हिन्दी"}}
}

func (f *fakeTranslations) DefaultLanguage() string { return "english" }

func (f *fakeTranslations) Catalog(lang string) (string, map[string]string, error) {
	if lang != "hindi" && lang != "hi" {
		return "", nil, appErrors.Clone(appErrors.ErrNotFound, "language not supported")
	}
	return "hindi", map[string]string{"dashboard.title": "डैशबोर्ड"}, nil
}

func (f *fakeTranslations) TranslateDynamic(_ context.Context, text, lang string) (string, error) {
	f.lastText, f.lastLang = text, lang
	if f.translateErr != nil {
		return "", f.translateErr
	}
	return "[" + lang + "] " + text, nil
}

func TestI18nHandlerLanguages(t *testing.T) {
	handler := NewI18nHandler(&fakeTranslations{})

	c, rec := newTestContext(http.MethodGet, "/i18n/languages", nil)
	withLanguage(c, "hindi")
	handler.Languages(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "english", envelope.Meta["default"])
	assert.Equal(t, "hindi", envelope.Meta["selected"])
	var languages []service.LanguageOption
	decodeData(t, rec, &languages)
	assert.Len(t, languages, 2)
}

func TestI18nHandlerCatalog(t *testing.T) {
	handler := NewI18nHandler(&fakeTranslations{})

	c, rec := newTestContext(http.MethodGet, "/i18n/hi", nil)
	c.AddParam("language", "hi")
	handler.Catalog(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hindi", rec.Header().Get("Content-Language"))
	var catalog dto.CatalogResponse
	decodeData(t, rec, &catalog)
	assert.Equal(t, "hindi", catalog.Language)
	assert.Equal(t, "डैशबोर्ड", catalog.Messages["dashboard.title"])
}

func TestI18nHandlerCatalogUnknownLanguage(t *testing.T) {
	handler := NewI18nHandler(&fakeTranslations{})

	c, rec := newTestContext(http.MethodGet, "/i18n/klingon", nil)
	c.AddParam("language", "klingon")
	handler.Catalog(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestI18nHandlerTranslate(t *testing.T) {
	svc := &fakeTranslations{}
	handler := NewI18nHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/i18n/translate", map[string]string{"text": "Good morning", "language": "tamil"})
	handler.Translate(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var res dto.TranslateResponse
	decodeData(t, rec, &res)
	assert.Equal(t, "Good morning", res.Original)
	assert.Equal(t, "[tamil] Good morning", res.Translated)
	assert.Equal(t, "tamil", res.Language)
}

func TestI18nHandlerTranslateErrors(t *testing.T) {
	handler := NewI18nHandler(&fakeTranslations{})
	c, rec := newTestContext(http.MethodPost, "/i18n/translate", map[string]string{"text": "hello"})
	handler.Translate(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	handler = NewI18nHandler(&fakeTranslations{translateErr: appErrors.ErrAgentUnavailable})
	c, rec = newTestContext(http.MethodPost, "/i18n/translate", map[string]string{"text": "hello", "language": "hindi"})
	handler.Translate(c)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
