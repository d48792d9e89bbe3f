package dto

// TranslateRequest is the payload accepted by POST /i18n/translate.
type TranslateRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"language" binding:"required"`
}

// TranslateResponse carries a dynamic translation.
type TranslateResponse struct {
	Original   string `json:"original"`
	Translated string `json:"translated"`
	Language   string `json:"language"`
}

// CatalogResponse is the static message catalog of one language.
type CatalogResponse struct {
	Language string            `json:"language"`
	Messages map[string]string `json:"messages"`
}
