package handlers

import (
	"io"
	"log"

	"github.com/gofiber/fiber/v2"

	"deckflow/internal/fileextract"
)

// maxUploadSize caps an individual uploaded file at 20MB.
const maxUploadSize = 20 * 1024 * 1024

// FileHandler extracts text from uploaded documents for use as deck context
type FileHandler struct{}

// NewFileHandler creates a new file handler
func NewFileHandler() *FileHandler {
	return &FileHandler{}
}

// ExtractFiles pulls text out of uploaded files
// POST /api/files/extract (multipart, field name "files")
func (h *FileHandler) ExtractFiles(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Expected multipart form data",
		})
	}

	uploads := form.File["files"]
	if len(uploads) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No files uploaded, use the \"files\" field",
		})
	}

	extracted := make([]fiber.Map, 0, len(uploads))
	for _, upload := range uploads {
		if upload.Size > maxUploadSize {
			extracted = append(extracted, fiber.Map{
				"filename": upload.Filename,
				"error":    "File exceeds the 20MB limit",
			})
			continue
		}

		file, err := upload.Open()
		if err != nil {
			log.Printf("❌ [FILES] Failed to open upload %s: %v", upload.Filename, err)
			extracted = append(extracted, fiber.Map{
				"filename": upload.Filename,
				"error":    "Failed to read file",
			})
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			log.Printf("❌ [FILES] Failed to read upload %s: %v", upload.Filename, err)
			extracted = append(extracted, fiber.Map{
				"filename": upload.Filename,
				"error":    "Failed to read file",
			})
			continue
		}

		result, err := fileextract.Extract(upload.Filename, data)
		if err != nil {
			log.Printf("⚠️ [FILES] Extraction failed for %s: %v", upload.Filename, err)
			extracted = append(extracted, fiber.Map{
				"filename": upload.Filename,
				"error":    err.Error(),
			})
			continue
		}

		log.Printf("✅ [FILES] Extracted %d words from %s", result.WordCount, result.Filename)
		extracted = append(extracted, fiber.Map{
			"filename":   result.Filename,
			"content":    result.Text,
			"page_count": result.PageCount,
			"word_count": result.WordCount,
		})
	}

	return c.JSON(fiber.Map{
		"files": extracted,
		"count": len(extracted),
	})
}
