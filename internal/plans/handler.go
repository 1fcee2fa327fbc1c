package plans

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"ledger-reports/internal/apperr"
	"ledger-reports/internal/ledger"
)

// POST /plans_insert
// multipart form, field "file": xlsx with period, category and sum columns
func InsertPlansHandler(ingestor *Ingestor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return apperr.InvalidFormat("plan file is missing: %v", err)
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return apperr.InvalidFormat("only .xlsx files are accepted")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return apperr.InvalidFormat("cannot open uploaded file: %v", err)
		}
		defer file.Close()

		rows, err := ParseWorkbook(file)
		if err != nil {
			return err
		}

		inserted, err := ingestor.Ingest(c.UserContext(), rows)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"message":  "ok",
			"inserted": inserted,
		})
	}
}

// GET /plans_performance?target_date=2024-03-15
func PlansPerformanceHandler(perf *Performance) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("target_date")
		if raw == "" {
			return apperr.InvalidArgument("target_date is required (YYYY-MM-DD)")
		}
		target, err := time.Parse(ledger.DateLayout, raw)
		if err != nil {
			return apperr.InvalidArgument("invalid date format, use YYYY-MM-DD")
		}

		report, err := perf.Report(c.UserContext(), target)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{"plans_performance": report})
	}
}
