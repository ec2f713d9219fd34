package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alwiirfani/chemicals-sub000/app"
	"github.com/alwiirfani/chemicals-sub000/db"
	"github.com/alwiirfani/chemicals-sub000/models"
)

type SDSController struct{ *Srv }

func NewSDSController(s *Srv) *SDSController { return &SDSController{Srv: s} }

const maxSDSBytes = 20 << 20

// POST /api/v1/chemicals/:id/sds  (multipart field "file")
func (sc *SDSController) Upload(c *gin.Context) {
	chemicalID := c.Param("id")
	chem, err := sc.Repo.FindChemicalByID(c.Request.Context(), chemicalID)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "chemical not found"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "file is required"})
		return
	}
	if fh.Size > maxSDSBytes {
		c.JSON(http.StatusBadRequest, app.H{"error": "file too large"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "could not read upload"})
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectKey := fmt.Sprintf("sds/%s/%s%s", chem.ID, uuid.NewString(), filepath.Ext(fh.Filename))

	url, err := sc.Storage.UploadFile(c.Request.Context(), f, objectKey, contentType)
	if err != nil {
		sc.Log.Error("sds upload", "err", err, "chemical", chem.ID)
		c.JSON(http.StatusInternalServerError, app.H{"error": "upload failed"})
		return
	}

	doc := &models.SDSDocument{
		ID:          uuid.NewString(),
		ChemicalID:  chem.ID,
		FileName:    fh.Filename,
		ObjectKey:   objectKey,
		ContentType: contentType,
		SizeBytes:   fh.Size,
		UploadedBy:  app.CurrentUserID(c),
		URL:         url,
	}
	if err := sc.Repo.CreateSDSDocument(c.Request.Context(), doc); err != nil {
		// 元数据没写成就把对象也清掉
		_ = sc.Storage.DeleteFile(c.Request.Context(), objectKey)
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// GET /api/v1/chemicals/:id/sds
func (sc *SDSController) ListForChemical(c *gin.Context) {
	docs, err := sc.Repo.ListSDSDocuments(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"documents": docs})
}

// GET /api/v1/sds/:id — returns the document metadata and its download URL.
func (sc *SDSController) Get(c *gin.Context) {
	doc, err := sc.Repo.FindSDSDocumentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DELETE /api/v1/sds/:id
func (sc *SDSController) Delete(c *gin.Context) {
	doc, err := sc.Repo.FindSDSDocumentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	if err := sc.Repo.DeleteSDSDocumentByID(c.Request.Context(), doc.ID); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if err := sc.Storage.DeleteFile(c.Request.Context(), doc.ObjectKey); err != nil {
		sc.Log.Warn("sds object delete", "err", err, "key", doc.ObjectKey)
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
