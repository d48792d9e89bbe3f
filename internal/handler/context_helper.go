package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ai-saathi-api/internal/middleware"
	"github.com/noah-isme/ai-saathi-api/internal/models"
	"github.com/noah-isme/ai-saathi-api/internal/service"
	appErrors "github.com/noah-isme/ai-saathi-api/pkg/errors"
)

const defaultLanguage = service.LanguageEnglish

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

func languageFromContext(c *gin.Context) string {
	return middleware.LanguageFromContext(c, defaultLanguage)
}

func actorFromContext(c *gin.Context, claims *models.JWTClaims) service.Actor {
	return service.Actor{
		UserID:    claims.UserID,
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	}
}

// teacherScope returns the teacher filter for claims. Admins see every
// teacher's records.
func teacherScope(claims *models.JWTClaims) string {
	if claims.Role == models.RoleAdmin {
		return ""
	}
	return claims.UserID
}

func parseIDParam(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer")
	}
	return id, nil
}
