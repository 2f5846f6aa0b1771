package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/invest_backend/middlewares"
	"github.com/mmdatafocus/invest_backend/models"
	"github.com/mmdatafocus/invest_backend/utils"
)

type investItemResponse struct {
	*models.InvestItem
	Group *models.InvestGroup `json:"group"`
}

// attach groups through the group loader
func withGroups(c *gin.Context, items []*models.InvestItem) ([]*investItemResponse, error) {
	var groupIds []int
	for _, item := range items {
		if item.GroupId != nil {
			groupIds = append(groupIds, *item.GroupId)
		}
	}
	groupIds = utils.UniqueSlice(groupIds)

	groupMap := make(map[int]*models.InvestGroup)
	if len(groupIds) > 0 {
		groups, errs := middlewares.GetInvestGroups(c.Request.Context(), groupIds)
		for i, group := range groups {
			if len(errs) > i && errs[i] != nil {
				return nil, errs[i]
			}
			groupMap[groupIds[i]] = group
		}
	}

	results := make([]*investItemResponse, 0, len(items))
	for _, item := range items {
		response := &investItemResponse{InvestItem: item}
		if item.GroupId != nil {
			response.Group = groupMap[*item.GroupId]
		}
		results = append(results, response)
	}
	return results, nil
}

func listInvestItemsHandler(c *gin.Context) {
	groupId, err := queryInt(c, "group_id")
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := models.ListInvestItems(c.Request.Context(), groupId)
	if err != nil {
		respondError(c, err)
		return
	}
	results, err := withGroups(c, items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func createInvestItemHandler(c *gin.Context) {
	var input models.NewInvestItem
	if !bindJSON(c, &input) {
		return
	}
	item, err := models.CreateInvestItem(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func getInvestItemHandler(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	item, err := models.GetInvestItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	results, err := withGroups(c, []*models.InvestItem{item})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results[0])
}

func updateInvestItemHandler(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var input models.NewInvestItem
	if !bindJSON(c, &input) {
		return
	}
	item, err := models.UpdateInvestItem(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func deleteInvestItemHandler(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	item, err := models.DeleteInvestItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
