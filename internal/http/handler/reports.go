package handler

import (
	"errors"
	"path"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"plagcheck/internal/service"
)

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func reportError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrNotFound) {
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "report not found")
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ListReports returns report summaries, newest first.
//
//	@Summary	List reports
//	@Tags		reports
//	@Produce	json
//	@Param		limit	query		int	false	"page size"	default(10)
//	@Param		offset	query		int	false	"offset"	default(0)
//	@Success	200		{object}	service.ReportListResult
//	@Failure	400		{object}	errorPayload
//	@Router		/reports [get]
func ListReports(svc service.CheckService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetReport returns one report with its per-file results.
//
//	@Summary	Get a report
//	@Tags		reports
//	@Produce	json
//	@Param		id	path		string	true	"report id"
//	@Success	200	{object}	model.Report
//	@Failure	404	{object}	errorPayload
//	@Router		/reports/{id} [get]
func GetReport(svc service.CheckService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rep, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return reportError(c, err)
		}
		return c.JSON(rep)
	}
}

// DownloadMainDocument streams the archived main document of a report.
//
//	@Summary	Download the checked document
//	@Tags		reports
//	@Produce	octet-stream
//	@Param		id	path	string	true	"report id"
//	@Success	200
//	@Failure	404	{object}	errorPayload
//	@Router		/reports/{id}/document [get]
func DownloadMainDocument(svc service.CheckService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, info, err := svc.MainDocument(c.UserContext(), id)
		if err != nil {
			return reportError(c, err)
		}
		c.Attachment(path.Base(info.Key))
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		size := int(info.Size)
		if size <= 0 {
			size = -1
		}
		return c.SendStream(rc, size)
	}
}

// DeleteReport removes a report and its archived uploads.
//
//	@Summary	Delete a report
//	@Tags		reports
//	@Param		id	path	string	true	"report id"
//	@Success	204
//	@Failure	404	{object}	errorPayload
//	@Router		/reports/{id} [delete]
func DeleteReport(svc service.CheckService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return reportError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
