package handler

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"plagcheck/internal/model"
	"plagcheck/internal/report"
	"plagcheck/internal/service"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

type pageData struct {
	Title   string
	Error   string
	Report  *model.Report
	Results template.HTML
}

func renderPage(c *fiber.Ctx, status int, name string, data pageData) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	c.Status(status).Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func renderIndex(c *fiber.Ctx, status int, msg string) error {
	return renderPage(c, status, "index", pageData{Title: "Plagiarism Checker", Error: msg})
}

func renderResult(c *fiber.Ctx, rep *model.Report) error {
	var buf bytes.Buffer
	if err := report.RenderHTML(&buf, report.Build(rep.Files)); err != nil {
		return err
	}
	return renderPage(c, fiber.StatusOK, "result", pageData{
		Title:   "Results for " + rep.MainDocument,
		Report:  rep,
		Results: template.HTML(buf.String()), // RenderHTML escapes its input
	})
}

// Index serves the upload page.
func Index() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return renderIndex(c, fiber.StatusOK, "")
	}
}

// WebCheck runs a check from the upload page form and renders the result page.
// Failures are shown on the upload page.
func WebCheck(svc service.CheckService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		main, folder, err := readUploads(c)
		if err != nil {
			status, _, msg := checkError(err)
			return renderIndex(c, status, msg)
		}
		rep, err := svc.Check(c.UserContext(), main, folder)
		if err != nil {
			status, _, msg := checkError(err)
			return renderIndex(c, status, msg)
		}
		return renderResult(c, rep)
	}
}

// ViewReport renders a stored report as the result page.
func ViewReport(svc service.CheckService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rep, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return reportError(c, err)
		}
		return renderResult(c, rep)
	}
}
