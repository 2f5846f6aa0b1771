package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/invest_backend/models"
)

func listInvestSummariesHandler(c *gin.Context) {
	itemId, ok := paramId(c, "id")
	if !ok {
		return
	}
	unitId, ok := paramId(c, "unitId")
	if !ok {
		return
	}
	summaryType, err := models.ParseSummaryType(c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	fromDate, err := queryDate(c, "from")
	if err != nil {
		respondError(c, err)
		return
	}
	toDate, err := queryDate(c, "to")
	if err != nil {
		respondError(c, err)
		return
	}

	summaries, err := models.ListInvestSummaries(c.Request.Context(), itemId, unitId, summaryType, fromDate, toDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func getInvestSummaryTotalHandler(c *gin.Context) {
	itemId, ok := paramId(c, "id")
	if !ok {
		return
	}
	unitId, ok := paramId(c, "unitId")
	if !ok {
		return
	}
	total, err := models.GetInvestSummaryTotal(c.Request.Context(), itemId, unitId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, total)
}

func listTotalSummariesHandler(c *gin.Context) {
	totals, err := models.ListTotalSummaries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func exportInvestSummariesHandler(c *gin.Context) {
	itemId, ok := paramId(c, "id")
	if !ok {
		return
	}
	unitId, ok := paramId(c, "unitId")
	if !ok {
		return
	}
	summaryType, err := models.ParseSummaryType(c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}

	f, err := models.ExportInvestSummaries(c.Request.Context(), itemId, unitId, summaryType)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+models.ExportFileName(itemId, unitId, summaryType)+`"`)
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
