package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/invest_backend/middlewares"
	"github.com/mmdatafocus/invest_backend/models"
	"github.com/mmdatafocus/invest_backend/utils"
)

type investHistoryResponse struct {
	*models.InvestHistory
	Unit *models.InvestUnit `json:"unit"`
}

// attach units through the unit loader
func withUnits(c *gin.Context, histories []*models.InvestHistory) ([]*investHistoryResponse, error) {
	unitIds := make([]int, 0, len(histories))
	for _, history := range histories {
		unitIds = append(unitIds, history.UnitId)
	}
	unitIds = utils.UniqueSlice(unitIds)

	unitMap := make(map[int]*models.InvestUnit)
	if len(unitIds) > 0 {
		units, errs := middlewares.GetInvestUnits(c.Request.Context(), unitIds)
		for i, unit := range units {
			if len(errs) > i && errs[i] != nil {
				return nil, errs[i]
			}
			unitMap[unitIds[i]] = unit
		}
	}

	results := make([]*investHistoryResponse, 0, len(histories))
	for _, history := range histories {
		results = append(results, &investHistoryResponse{
			InvestHistory: history,
			Unit:          unitMap[history.UnitId],
		})
	}
	return results, nil
}

func historyFilterFromQuery(c *gin.Context) (*models.InvestHistoryFilter, error) {
	var filter models.InvestHistoryFilter
	var err error
	if filter.UnitId, err = queryInt(c, "unit_id"); err != nil {
		return nil, err
	}
	if filter.FromDate, err = queryDate(c, "from"); err != nil {
		return nil, err
	}
	if filter.ToDate, err = queryDate(c, "to"); err != nil {
		return nil, err
	}
	if value := c.Query("type"); value != "" {
		historyType := models.HistoryType(value)
		if !historyType.IsValid() {
			return nil, utils.NewInputError("invalid history type %q", value)
		}
		filter.HistoryType = &historyType
	}
	return &filter, nil
}

func listInvestHistoriesHandler(c *gin.Context) {
	itemId, ok := paramId(c, "id")
	if !ok {
		return
	}
	filter, err := historyFilterFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	histories, err := models.ListInvestHistories(c.Request.Context(), itemId, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	results, err := withUnits(c, histories)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func createInvestHistoryHandler(c *gin.Context) {
	itemId, ok := paramId(c, "id")
	if !ok {
		return
	}
	var input models.NewInvestHistory
	if !bindJSON(c, &input) {
		return
	}
	history, err := models.CreateInvestHistory(c.Request.Context(), itemId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, history)
}

func getInvestHistoryHandler(c *gin.Context) {
	itemId, ok := paramId(c, "id")
	if !ok {
		return
	}
	historyId, ok := paramId(c, "historyId")
	if !ok {
		return
	}
	history, err := models.GetInvestHistory(c.Request.Context(), itemId, historyId)
	if err != nil {
		respondError(c, err)
		return
	}
	results, err := withUnits(c, []*models.InvestHistory{history})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results[0])
}

func updateInvestHistoryHandler(c *gin.Context) {
	itemId, ok := paramId(c, "id")
	if !ok {
		return
	}
	historyId, ok := paramId(c, "historyId")
	if !ok {
		return
	}
	var input models.NewInvestHistory
	if !bindJSON(c, &input) {
		return
	}
	history, err := models.UpdateInvestHistory(c.Request.Context(), itemId, historyId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func deleteInvestHistoryHandler(c *gin.Context) {
	itemId, ok := paramId(c, "id")
	if !ok {
		return
	}
	historyId, ok := paramId(c, "historyId")
	if !ok {
		return
	}
	history, err := models.DeleteInvestHistory(c.Request.Context(), itemId, historyId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
