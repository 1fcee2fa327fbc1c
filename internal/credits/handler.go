package credits

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ledger-reports/internal/apperr"
)

// GET /user_credits/:user_id
func UserCreditsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := strconv.ParseUint(c.Params("user_id"), 10, 32)
		if err != nil {
			return apperr.InvalidArgument("user_id must be a positive integer")
		}

		history, err := svc.History(c.UserContext(), uint(userID))
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{"user_credits": history})
	}
}
