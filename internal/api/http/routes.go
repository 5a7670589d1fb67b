package httpapi

import (
	"bytes"
	"errors"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/cctv-weather/internal/render"
	"github.com/i474232898/cctv-weather/internal/store"
	"github.com/i474232898/cctv-weather/internal/weather"
)

var validate = validator.New()

// Deps are the components the routes read from.
type Deps struct {
	Store    *store.MemoryStore
	Renderer *render.Renderer
	IconDir  string
	Registry *prometheus.Registry
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/records", func(c *fiber.Ctx) error {
		q, err := parseRecordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		records, err := deps.Store.Records(q.toFilter())
		if err != nil {
			return notFoundOr(err, "failed to load records")
		}

		return c.JSON(fiber.Map{
			"count":   len(records),
			"records": records,
		})
	})

	v1.Get("/dropped", func(c *fiber.Ctx) error {
		report, err := deps.Store.Latest()
		if err != nil {
			return notFoundOr(err, "failed to load run")
		}
		dropped := report.Dropped
		if dropped == nil {
			dropped = []weather.Drop{}
		}
		return c.JSON(fiber.Map{
			"runId":   report.RunID,
			"dropped": dropped,
		})
	})

	v1.Get("/summary", func(c *fiber.Ctx) error {
		report, err := deps.Store.Latest()
		if err != nil {
			return notFoundOr(err, "failed to load run")
		}
		return c.JSON(fiber.Map{
			"runId":    report.RunID,
			"started":  report.Started,
			"finished": report.Finished,
			"tally":    weather.AggregateReport(report),
		})
	})

	app.Get("/map", func(c *fiber.Ctx) error {
		report, err := deps.Store.Latest()
		if err != nil {
			return notFoundOr(err, "failed to load run")
		}

		var buf bytes.Buffer
		if err := deps.Renderer.Render(&buf, report.Records); err != nil {
			log.Printf("api: render map: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render map")
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	})

	if deps.IconDir != "" {
		app.Static("/icons", deps.IconDir)
	}

	if deps.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "no completed run")
	}
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}

// recordQuery holds query parameters for the records endpoint.
type recordQuery struct {
	Condition string `validate:"omitempty,oneof=clear cloudy rain snow fog analysis_failed"`
	Mismatch  bool
}

func (q recordQuery) toFilter() store.RecordFilter {
	return store.RecordFilter{
		Visual:       weather.Condition(q.Condition),
		MismatchOnly: q.Mismatch,
	}
}

func parseRecordQuery(c *fiber.Ctx) (recordQuery, error) {
	var q recordQuery

	q.Condition = c.Query("condition")

	if s := c.Query("mismatch"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, errors.New("mismatch must be a boolean")
		}
		q.Mismatch = b
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}
