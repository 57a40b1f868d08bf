// Package web serves the embedded upload/progress/download page.
package web

import (
	_ "embed"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lexsightllc/video-transcriber-app/internal/config"
	"github.com/lexsightllc/video-transcriber-app/internal/model"
)

//go:embed index.html
var indexHTML string

// Index renders the single-page UI with the configured model tiers and
// languages baked into the select boxes.
func Index(cfg *config.Config) fiber.Handler {
	page := strings.NewReplacer(
		"{{MODEL_OPTIONS}}", tierOptions(cfg.Transcriber.DefaultModelTier),
		"{{LANGUAGE_OPTIONS}}", languageOptions(),
		"{{ACCEPT_EXTENSIONS}}", acceptList(cfg.Storage.AllowedExtensions),
	).Replace(indexHTML)

	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(page)
	}
}

func tierOptions(defaultTier model.ModelTier) string {
	var b strings.Builder
	for _, tier := range model.ValidModelTiers {
		selected := ""
		if tier == defaultTier {
			selected = " selected"
		}
		b.WriteString(`<option value="` + string(tier) + `"` + selected + `>` + string(tier) + `</option>`)
	}
	return b.String()
}

func languageOptions() string {
	var b strings.Builder
	for _, lang := range model.ValidLanguages {
		b.WriteString(`<option value="` + string(lang) + `">` + string(lang) + `</option>`)
	}
	return b.String()
}

func acceptList(extensions []string) string {
	parts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		parts = append(parts, "."+ext)
	}
	return strings.Join(parts, ",")
}
