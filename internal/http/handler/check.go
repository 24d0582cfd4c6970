package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"plagcheck/internal/model"
	"plagcheck/internal/service"
)

// Multipart field names of the check form.
const (
	MainField   = "doc1"
	FolderField = "folder"
)

const msgFilesRequired = "Please upload both the document and the folder."

// CheckFolder compares the uploaded main document with every folder file.
//
//	@Summary	Check a document against a folder
//	@Tags		check
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		doc1	formData	file	true	"main document"
//	@Param		folder	formData	file	true	"folder files (repeat the field)"
//	@Success	200		{object}	model.CheckResponse
//	@Failure	400		{object}	errorPayload
//	@Failure	422		{object}	errorPayload
//	@Failure	500		{object}	errorPayload
//	@Router		/check-plagiarism-folder [post]
func CheckFolder(svc service.CheckService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		main, folder, err := readUploads(c)
		if err != nil {
			status, code, msg := checkError(err)
			return writeError(c, status, code, msg)
		}

		rep, err := svc.Check(c.UserContext(), main, folder)
		if err != nil {
			status, code, msg := checkError(err)
			return writeError(c, status, code, msg)
		}
		return c.JSON(model.CheckResponse{ReportID: rep.ID, Files: rep.Files})
	}
}

func checkError(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, service.ErrFilesRequired):
		return fiber.StatusBadRequest, "FILES_REQUIRED", msgFilesRequired
	case errors.Is(err, service.ErrUnsupportedDocument):
		return fiber.StatusUnprocessableEntity, "UNSUPPORTED_DOCUMENT", "The main document could not be read."
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}

// readUploads loads the main document and the folder files from the multipart form.
// A request that is not a multipart form counts as missing files.
func readUploads(c *fiber.Ctx) (model.UploadedFile, []model.UploadedFile, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, fasthttp.ErrNoMultipartForm) {
		return model.UploadedFile{}, nil, service.ErrFilesRequired
	}
	if err != nil {
		return model.UploadedFile{}, nil, fmt.Errorf("parse multipart form: %w", err)
	}
	mains := form.File[MainField]
	folderHeaders := form.File[FolderField]
	if len(mains) == 0 || len(folderHeaders) == 0 {
		return model.UploadedFile{}, nil, service.ErrFilesRequired
	}

	main, err := readFile(mains[0])
	if err != nil {
		return model.UploadedFile{}, nil, err
	}
	folder := make([]model.UploadedFile, 0, len(folderHeaders))
	for _, fh := range folderHeaders {
		f, err := readFile(fh)
		if err != nil {
			return model.UploadedFile{}, nil, err
		}
		folder = append(folder, f)
	}
	return main, folder, nil
}

func readFile(fh *multipart.FileHeader) (model.UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return model.UploadedFile{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return model.UploadedFile{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return model.UploadedFile{Name: fh.Filename, ContentType: ct, Size: fh.Size, Data: data}, nil
}
