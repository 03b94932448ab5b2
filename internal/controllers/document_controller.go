package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/legalcms/backend/internal/logger"
	"github.com/legalcms/backend/internal/middleware"
	"github.com/legalcms/backend/internal/repository"
	"github.com/legalcms/backend/internal/services"
)

type DocumentController struct {
	documents *services.DocumentService
}

func NewDocumentController(documents *services.DocumentService) *DocumentController {
	return &DocumentController{documents: documents}
}

func (dc *DocumentController) GetDocuments(c *gin.Context) {
	filter := repository.DocumentFilter{
		CaseID:     c.Query("caseId"),
		UploadedBy: c.Query("uploadedBy"),
	}

	documents, err := dc.documents.List(c.Request.Context(), middleware.CurrentActor(c), filter)
	if err != nil {
		respondError(c, err, "document_controller")
		return
	}

	c.JSON(http.StatusOK, documents)
}

func (dc *DocumentController) GetDocument(c *gin.Context) {
	view, err := dc.documents.Get(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "document_controller")
		return
	}

	c.JSON(http.StatusOK, view)
}

// CreateDocument records metadata for a file that is stored elsewhere.
func (dc *DocumentController) CreateDocument(c *gin.Context) {
	var req services.DocumentInput
	if !bindJSON(c, &req) {
		return
	}

	view, err := dc.documents.Create(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		respondError(c, err, "document_controller")
		return
	}

	c.JSON(http.StatusCreated, view)
}

// uploadFormSlack covers the multipart framing and text fields sent
// alongside the file.
const uploadFormSlack = 64 << 10

// UploadDocument accepts a multipart form with file, caseId and an optional
// display name.
func (dc *DocumentController) UploadDocument(c *gin.Context) {
	if limit := dc.documents.MaxUploadBytes(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+uploadFormSlack)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, dc.documents.UploadLimitError(), "document_controller")
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	file, err := header.Open()
	if err != nil {
		logger.WithError(err, "document_controller").Error("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	view, err := dc.documents.Upload(c.Request.Context(), middleware.CurrentActor(c), services.UploadInput{
		CaseID:   c.PostForm("caseId"),
		Name:     c.PostForm("name"),
		Filename: header.Filename,
		Size:     header.Size,
		File:     file,
	})
	if err != nil {
		respondError(c, err, "document_controller")
		return
	}

	c.JSON(http.StatusCreated, view)
}

// DownloadDocument answers with a presigned link when the store offers one
// and streams the file otherwise.
func (dc *DocumentController) DownloadDocument(c *gin.Context) {
	download, err := dc.documents.Download(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "document_controller")
		return
	}

	if download.URL != "" {
		c.JSON(http.StatusOK, gin.H{"url": download.URL})
		return
	}
	defer download.Body.Close()

	doc := download.Document
	c.DataFromReader(http.StatusOK, doc.FileSize, doc.MimeType, download.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", doc.OriginalName),
	})
}

func (dc *DocumentController) DeleteDocument(c *gin.Context) {
	if err := dc.documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "document_controller")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}
