package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"plagcheck/internal/service"
)

// RegisterRoutes attaches every endpoint of the service to app.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.CheckService, gatherer prometheus.Gatherer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	app.Get("/", Index())
	app.Post("/check", WebCheck(svc))
	app.Post("/check-plagiarism-folder", CheckFolder(svc))

	reports := app.Group("/reports")
	reports.Get("/", ListReports(svc))
	reports.Get("/:id", GetReport(svc))
	reports.Get("/:id/view", ViewReport(svc))
	reports.Get("/:id/document", DownloadMainDocument(svc))
	reports.Delete("/:id", DeleteReport(svc))
}
