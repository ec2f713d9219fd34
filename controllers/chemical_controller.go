package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alwiirfani/chemicals-sub000/app"
	"github.com/alwiirfani/chemicals-sub000/db"
	"github.com/alwiirfani/chemicals-sub000/models"
)

type ChemicalController struct{ *Srv }

func NewChemicalController(s *Srv) *ChemicalController { return &ChemicalController{Srv: s} }

type createChemicalRequest struct {
	Code         string  `json:"code" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	CASNumber    string  `json:"casNumber"`
	Unit         string  `json:"unit" binding:"required"`
	CurrentStock float64 `json:"currentStock" binding:"gte=0"`
	MinStock     float64 `json:"minStock" binding:"gte=0"`
	Location     string  `json:"location"`
	HazardClass  string  `json:"hazardClass"`
}

// POST /api/v1/chemicals
func (cc *ChemicalController) CreateChemical(c *gin.Context) {
	var in createChemicalRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	chem := &models.Chemical{
		ID:           uuid.NewString(),
		Code:         in.Code,
		Name:         in.Name,
		CASNumber:    in.CASNumber,
		Unit:         in.Unit,
		CurrentStock: in.CurrentStock,
		MinStock:     in.MinStock,
		Location:     in.Location,
		HazardClass:  in.HazardClass,
	}
	if err := cc.Repo.CreateChemical(c.Request.Context(), chem); err != nil {
		c.JSON(http.StatusConflict, app.H{"error": "chemical code already exists"})
		return
	}
	c.JSON(http.StatusCreated, chem)
}

// GET /api/v1/chemicals?q=&page=&size=
func (cc *ChemicalController) ListChemicals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := cc.Repo.ListChemicals(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"total": res.Total, "chemicals": res.Chemicals})
}

// GET /api/v1/chemicals/:id
func (cc *ChemicalController) GetChemical(c *gin.Context) {
	chem, err := cc.Repo.FindChemicalByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "chemical not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chem)
}

type updateChemicalRequest struct {
	Name        *string  `json:"name"`
	CASNumber   *string  `json:"casNumber"`
	Unit        *string  `json:"unit"`
	MinStock    *float64 `json:"minStock"`
	Location    *string  `json:"location"`
	HazardClass *string  `json:"hazardClass"`
}

// PUT /api/v1/chemicals/:id — metadata only; stock moves through borrowings
// or the adjust endpoint.
func (cc *ChemicalController) UpdateChemical(c *gin.Context) {
	var in updateChemicalRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.CASNumber != nil {
		fields["cas_number"] = *in.CASNumber
	}
	if in.Unit != nil {
		fields["unit"] = *in.Unit
	}
	if in.MinStock != nil {
		fields["min_stock"] = *in.MinStock
	}
	if in.Location != nil {
		fields["location"] = *in.Location
	}
	if in.HazardClass != nil {
		fields["hazard_class"] = *in.HazardClass
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "nothing to update"})
		return
	}

	if err := cc.Repo.UpdateChemical(c.Request.Context(), c.Param("id"), fields); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "chemical not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

type adjustStockRequest struct {
	Delta float64 `json:"delta" binding:"required"`
}

// POST /api/v1/chemicals/:id/adjust — manual stock correction (delivery,
// stocktake). Negative deltas may not take the counter below zero.
func (cc *ChemicalController) AdjustStock(c *gin.Context) {
	var in adjustStockRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "delta is required"})
		return
	}
	chem, err := cc.Repo.AdjustStock(c.Request.Context(), c.Param("id"), in.Delta)
	if err != nil {
		var ise *db.InsufficientStockError
		switch {
		case errors.Is(err, db.ErrNotFound):
			c.JSON(http.StatusNotFound, app.H{"error": "chemical not found"})
		case errors.As(err, &ise):
			c.JSON(http.StatusBadRequest, app.H{"error": "adjustment would make stock negative"})
		default:
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, chem)
}

// DELETE /api/v1/chemicals/:id
func (cc *ChemicalController) DeleteChemical(c *gin.Context) {
	if err := cc.Repo.DeleteChemicalByID(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "chemical not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
