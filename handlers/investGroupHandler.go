package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/invest_backend/models"
)

func listInvestGroupsHandler(c *gin.Context) {
	groups, err := models.ListInvestGroups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func createInvestGroupHandler(c *gin.Context) {
	var input models.NewInvestGroup
	if !bindJSON(c, &input) {
		return
	}
	group, err := models.CreateInvestGroup(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func getInvestGroupHandler(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	group, err := models.GetInvestGroup(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func updateInvestGroupHandler(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	var input models.NewInvestGroup
	if !bindJSON(c, &input) {
		return
	}
	group, err := models.UpdateInvestGroup(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func deleteInvestGroupHandler(c *gin.Context) {
	id, ok := paramId(c, "id")
	if !ok {
		return
	}
	group, err := models.DeleteInvestGroup(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}
