package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ai-saathi-api/internal/dto"
	"github.com/noah-isme/ai-saathi-api/internal/service"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
	"github.com/noah-isme/ai-saathi-api/pkg/response"
)

type translationService interface {
	Languages() []service.LanguageOption
	DefaultLanguage() string
	Catalog(lang string) (string, map[string]string, error)
	TranslateDynamic(ctx context.Context, text, lang string) (string, error)
}

// I18nHandler serves message catalogs and dynamic translation.
type I18nHandler struct {
	translations translationService
}

// NewI18nHandler constructs I18nHandler.
func NewI18nHandler(translations translationService) *I18nHandler {
	return &I18nHandler{translations: translations}
}

// Languages godoc
// @Summary Supported languages
// @Tags I18n
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /i18n/languages [get]
func (h *I18nHandler) Languages(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.translations.Languages(), nil, map[string]interface{}{
		"default":  h.translations.DefaultLanguage(),
		"selected": languageFromContext(c),
	})
}

// Catalog godoc
// @Summary Message catalog of a language
// @Description Missing keys are filled from English.
// @Tags I18n
// @Produce json
// @Param language path string true "Language name or code (hindi, hi)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /i18n/{language} [get]
func (h *I18nHandler) Catalog(c *gin.Context) {
	name, messages, err := h.translations.Catalog(c.Param("language"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Language", name)
	response.JSON(c, http.StatusOK, dto.CatalogResponse{Language: name, Messages: messages}, nil)
}

// Translate godoc
// @Summary Translate free text
// @Tags I18n
// @Accept json
// @Produce json
// @Param payload body dto.TranslateRequest true "Text and target language"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /i18n/translate [post]
func (h *I18nHandler) Translate(c *gin.Context) {
	var req dto.TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "text and language are required"))
		return
	}
	translated, err := h.translations.TranslateDynamic(c.Request.Context(), req.Text, req.Language)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TranslateResponse{
		Original:   req.Text,
		Translated: translated,
		Language:   req.Language,
	}, nil)
}
