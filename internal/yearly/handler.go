package yearly

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ledger-reports/internal/apperr"
)

// GET /year_performance?year=2024
func YearPerformanceHandler(rollup *Rollup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("year")
		if raw == "" {
			return apperr.InvalidArgument("year is required")
		}
		year, err := strconv.Atoi(raw)
		if err != nil {
			return apperr.InvalidArgument("invalid year %q", raw)
		}

		rows, err := rollup.Report(c.UserContext(), year)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{"year_performance": rows})
	}
}
