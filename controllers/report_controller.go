package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/alwiirfani/chemicals-sub000/app"
	"github.com/alwiirfani/chemicals-sub000/db"
)

type ReportController struct{ *Srv }

func NewReportController(s *Srv) *ReportController { return &ReportController{Srv: s} }

// GET /api/v1/reports/dashboard
func (rc *ReportController) Dashboard(c *gin.Context) {
	s, err := rc.Repo.DashboardSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s)
}

func usageQueryFromRequest(c *gin.Context) db.UsageQuery {
	q := db.UsageQuery{
		ChemicalID: c.Query("chemicalId"),
		UserID:     c.Query("userId"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Size, _ = strconv.Atoi(c.DefaultQuery("size", "50"))
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.From = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.To = &t
		}
	}
	return q
}

// GET /api/v1/reports/usage?chemicalId=&userId=&from=&to=&page=&size=
func (rc *ReportController) Usage(c *gin.Context) {
	res, err := rc.Repo.ListUsage(c.Request.Context(), usageQueryFromRequest(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"total": res.Total, "rows": res.Rows})
}

// GET /api/v1/reports/usage/export — same filters as Usage, as a workbook.
func (rc *ReportController) UsageExport(c *gin.Context) {
	q := usageQueryFromRequest(c)
	q.Page = 1
	q.Size = 500

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"recorded_at",
		"chemical_name",
		"quantity",
		"unit",
		"user_name",
		"borrowing_id",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	rowIdx := 2
	for {
		res, err := rc.Repo.ListUsage(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
		for _, r := range res.Rows {
			row := []interface{}{
				r.RecordedAt.Format(time.RFC3339),
				r.ChemicalName,
				r.Quantity,
				r.Unit,
				r.UserName,
				r.BorrowingID,
			}
			cell := fmt.Sprintf("A%d", rowIdx)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
				return
			}
			rowIdx++
		}
		if len(res.Rows) < q.Size {
			break
		}
		q.Page++
	}

	name := fmt.Sprintf("usage-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		rc.Log.Error("usage export write", "err", err)
	}
}
