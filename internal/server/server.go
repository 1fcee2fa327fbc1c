// Package server assembles the fiber application: middleware, the central
// error handler and the report routes.
package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ledger-reports/internal/apperr"
	"ledger-reports/internal/config"
	"ledger-reports/internal/credits"
	"ledger-reports/internal/logging"
	"ledger-reports/internal/plans"
	"ledger-reports/internal/yearly"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Config      *config.Config
	Logger      *logrus.Logger
	Credits     *credits.Service
	Ingestor    *plans.Ingestor
	Performance *plans.Performance
	Rollup      *yearly.Rollup
	Health      Pinger
}

func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ledger-reports",
		BodyLimit:    d.Config.UploadLimitMB * 1024 * 1024,
		ErrorHandler: ErrorHandler(d.Logger),
	})

	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: logging.RequestIDKey,
	}))
	app.Use(logging.RequestLogger(d.Logger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(d.Config.CORSOriginList(), ","),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,OPTIONS",
	}))
	app.Use(Timeout(d.Config.RequestTimeout))

	app.Get("/healthz", HealthHandler(d.Health))
	app.Get("/user_credits/:user_id", credits.UserCreditsHandler(d.Credits))
	app.Post("/plans_insert", plans.InsertPlansHandler(d.Ingestor))
	app.Get("/plans_performance", plans.PlansPerformanceHandler(d.Performance))
	app.Get("/year_performance", yearly.YearPerformanceHandler(d.Rollup))

	return app
}

// Timeout bounds the user context handed to the store for each request.
// fasthttp does not cancel anything when the client disconnects, so this
// deadline is the only thing that stops an abandoned query.
func Timeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// GET /healthz
func HealthHandler(p Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := p.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "database is unreachable",
				"kind":  apperr.KindStorage.String(),
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// ErrorHandler renders every error as {"error", "kind"} with the status of
// its kind.
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
				"kind":  kindForStatus(fe.Code).String(),
			})
		}

		kind := apperr.KindOf(err)
		status := statusFor(kind)
		message := "unexpected server error"

		var ae *apperr.Error
		if errors.As(err, &ae) {
			message = ae.Message
		}

		if status >= fiber.StatusInternalServerError {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.Locals(logging.RequestIDKey),
				"path":       c.Path(),
			}).Error("Unexpected error")
		}

		if kind == apperr.KindUnknown {
			kind = apperr.KindStorage
		}
		return c.Status(status).JSON(fiber.Map{
			"error": message,
			"kind":  kind.String(),
		})
	}
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindInvalidFormat, apperr.KindConflict, apperr.KindInvalidArgument:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func kindForStatus(code int) apperr.Kind {
	switch {
	case code == fiber.StatusNotFound:
		return apperr.KindNotFound
	case code >= fiber.StatusInternalServerError:
		return apperr.KindStorage
	default:
		return apperr.KindInvalidArgument
	}
}
