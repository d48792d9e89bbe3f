package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextLanguageKey is the gin context key storing the response language.
const ContextLanguageKey = "language"

// LanguageResolver negotiates a supported language. Implemented by
// service.TranslationService.
type LanguageResolver interface {
	Resolve(acceptLanguage, explicit string) string
	DefaultLanguage() string
}

// Language resolves the response language of a request. The lang query
// parameter wins over Accept-Language; without either the authenticated
// user's preferred language applies.
func Language(resolver LanguageResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		explicit := c.Query("lang")
		accept := c.GetHeader("Accept-Language")
		if strings.TrimSpace(explicit) == "" && strings.TrimSpace(accept) == "" {
			if claims := Claims(c); claims != nil {
				explicit = claims.Language
			}
		}
		lang := resolver.Resolve(accept, explicit)
		c.Set(ContextLanguageKey, lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}

// LanguageFromContext returns the language chosen by Language, or fallback
// when the middleware did not run.
func LanguageFromContext(c *gin.Context, fallback string) string {
	if value, ok := c.Get(ContextLanguageKey); ok {
		if lang, ok := value.(string); ok && lang != "" {
			return lang
		}
	}
	return fallback
}
