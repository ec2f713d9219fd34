package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alwiirfani/chemicals-sub000/app"
	"github.com/alwiirfani/chemicals-sub000/db"
	"github.com/alwiirfani/chemicals-sub000/models"
)

// borrowingStore is the slice of the repository the borrowing endpoints use.
type borrowingStore interface {
	CreateBorrowing(ctx context.Context, borrowerID, purpose string, items []db.NewBorrowingItem) (*models.Borrowing, error)
	FindBorrowingByID(ctx context.Context, id string) (*models.Borrowing, error)
	ListBorrowings(ctx context.Context, q db.BorrowingsQuery) (db.ListBorrowingsResult, error)
	TransitionBorrowing(ctx context.Context, borrowingID, actorID string, action models.BorrowingAction, returned []db.ReturnedItem) (*db.TransitionResult, error)
}

type BorrowingController struct {
	Store borrowingStore
	Log   *slog.Logger
}

func NewBorrowingController(s *Srv) *BorrowingController {
	return &BorrowingController{Store: s.Repo, Log: s.Log}
}

type createBorrowingRequest struct {
	Purpose string                `json:"purpose" binding:"required"`
	Items   []db.NewBorrowingItem `json:"items" binding:"required,min=1,dive"`
}

// POST /api/v1/borrowings
func (bc *BorrowingController) Create(c *gin.Context) {
	var in createBorrowingRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	b, err := bc.Store.CreateBorrowing(c.Request.Context(), app.CurrentUserID(c), in.Purpose, in.Items)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrEmptyItems), errors.Is(err, db.ErrDuplicateItem):
			c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		case errors.Is(err, db.ErrNotFound):
			c.JSON(http.StatusBadRequest, app.H{"error": "unknown chemical in items"})
		default:
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GET /api/v1/borrowings?status=&userId=&page=&size=
// Non-staff callers only ever see their own borrowings.
func (bc *BorrowingController) List(c *gin.Context) {
	q := db.BorrowingsQuery{
		Status:     c.Query("status"),
		BorrowerID: c.Query("userId"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))

	if !app.CurrentRole(c).Staff() {
		q.BorrowerID = app.CurrentUserID(c)
	}

	res, err := bc.Store.ListBorrowings(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"total": res.Total, "borrowings": res.Borrowings})
}

// GET /api/v1/borrowings/:id
func (bc *BorrowingController) Get(c *gin.Context) {
	b, err := bc.Store.FindBorrowingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "borrowing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if !app.CurrentRole(c).Staff() && b.BorrowerID != app.CurrentUserID(c) {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, b)
}

type transitionRequest struct {
	Action        models.BorrowingAction `json:"action" binding:"required"`
	ReturnedItems []db.ReturnedItem      `json:"returnedItems"`
}

// PATCH /api/v1/borrowings/:id — the single entry point for lifecycle
// actions. Staff only; routes wire StaffOnly ahead of this handler.
func (bc *BorrowingController) Transition(c *gin.Context) {
	var in transitionRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "action is required"})
		return
	}
	if !in.Action.Valid() {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid action"})
		return
	}

	res, err := bc.Store.TransitionBorrowing(c.Request.Context(), c.Param("id"), app.CurrentUserID(c), in.Action, in.ReturnedItems)
	if err != nil {
		bc.fail(c, in.Action, err)
		return
	}

	app.TransitionsTotal.WithLabelValues(string(in.Action), "ok").Inc()
	c.JSON(http.StatusOK, res)
}

// fail maps transition errors onto the API contract: business and validation
// failures are 400 with detail, unknown borrowings 404, anything else a
// generic 500.
func (bc *BorrowingController) fail(c *gin.Context, action models.BorrowingAction, err error) {
	var (
		invalid *db.InvalidTransitionError
		stock   *db.InsufficientStockError
		badItem *db.ReturnItemError
	)
	switch {
	case errors.Is(err, db.ErrNotFound):
		app.TransitionsTotal.WithLabelValues(string(action), "rejected").Inc()
		c.JSON(http.StatusNotFound, app.H{"error": "borrowing not found"})
	case errors.As(err, &invalid):
		app.TransitionsTotal.WithLabelValues(string(action), "rejected").Inc()
		c.JSON(http.StatusBadRequest, app.H{"error": invalid.Error()})
	case errors.As(err, &stock):
		app.TransitionsTotal.WithLabelValues(string(action), "rejected").Inc()
		c.JSON(http.StatusBadRequest, app.H{
			"error":      stock.Error(),
			"chemicalId": stock.ChemicalID,
			"available":  stock.Available,
			"requested":  stock.Requested,
		})
	case errors.As(err, &badItem):
		app.TransitionsTotal.WithLabelValues(string(action), "rejected").Inc()
		c.JSON(http.StatusBadRequest, app.H{"error": badItem.Error()})
	default:
		app.TransitionsTotal.WithLabelValues(string(action), "error").Inc()
		bc.Log.Error("borrowing transition", "action", action, "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
	}
}
