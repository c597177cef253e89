package httpapi

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-home/internal/controller"
	"github.com/i474232898/weather-home/internal/weather"
)

var validate = validator.New()

// Screen is the weather screen driven over HTTP. *controller.Controller implements it.
type Screen interface {
	View() controller.ViewState
	OnTextChange(text string)
	OpenSearch()
	CloseSearch()
	ToggleSearch() bool
	Select(s weather.Suggestion) error
	Retry() error
	Refresh() error
}

// ErrorHandler renders every handler error as a JSON body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterSystemRoutes adds the health probe and the Prometheus scrape endpoint.
func RegisterSystemRoutes(app *fiber.App, service string, gatherer prometheus.Gatherer) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": service,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, screen Screen) {
	v1 := app.Group("/api/v1")

	v1.Get("/view", func(c *fiber.Ctx) error {
		return c.JSON(screen.View())
	})

	search := v1.Group("/search")

	search.Post("/open", func(c *fiber.Ctx) error {
		screen.OpenSearch()
		return c.JSON(screen.View())
	})

	search.Post("/close", func(c *fiber.Ctx) error {
		screen.CloseSearch()
		return c.JSON(screen.View())
	})

	search.Post("/toggle", func(c *fiber.Ctx) error {
		screen.ToggleSearch()
		return c.JSON(screen.View())
	})

	search.Put("/query", func(c *fiber.Ctx) error {
		var req queryRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		screen.OnTextChange(req.Text)
		return c.Status(fiber.StatusAccepted).JSON(screen.View())
	})

	search.Post("/select", func(c *fiber.Ctx) error {
		var req selectRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		req.Name = strings.TrimSpace(req.Name)
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := screen.Select(req.toSuggestion()); err != nil {
			return screenError(err)
		}
		return c.Status(fiber.StatusAccepted).JSON(screen.View())
	})

	forecast := v1.Group("/forecast")

	forecast.Post("/retry", func(c *fiber.Ctx) error {
		if err := screen.Retry(); err != nil {
			return screenError(err)
		}
		return c.Status(fiber.StatusAccepted).JSON(screen.View())
	})

	forecast.Post("/refresh", func(c *fiber.Ctx) error {
		if err := screen.Refresh(); err != nil {
			return screenError(err)
		}
		return c.Status(fiber.StatusAccepted).JSON(screen.View())
	})

	v1.Get("/images/:condition", func(c *fiber.Ctx) error {
		condition, err := url.PathUnescape(c.Params("condition"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid condition")
		}
		return c.JSON(fiber.Map{
			"condition": condition,
			"image":     weather.ImageFor(condition),
		})
	})
}

func screenError(err error) error {
	switch {
	case errors.Is(err, controller.ErrNothingToRetry):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, controller.ErrEmptySelection):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, controller.ErrClosed):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// queryRequest carries the raw search field text. Length gating happens in the controller.
type queryRequest struct {
	Text string `json:"text" validate:"max=200"`
}

// selectRequest identifies the suggestion the user picked.
type selectRequest struct {
	ID      int64  `json:"id"`
	Name    string `json:"name" validate:"required,max=200"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

func (r selectRequest) toSuggestion() weather.Suggestion {
	return weather.Suggestion{
		ID:      r.ID,
		Name:    r.Name,
		Region:  r.Region,
		Country: r.Country,
	}
}
