package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/invest_backend/models"
)

func listInvestUnitsHandler(c *gin.Context) {
	itemId, ok := paramId(c, "id")
	if !ok {
		return
	}
	units, err := models.ListInvestUnits(c.Request.Context(), itemId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

func createInvestUnitHandler(c *gin.Context) {
	itemId, ok := paramId(c, "id")
	if !ok {
		return
	}
	var input models.NewInvestUnit
	if !bindJSON(c, &input) {
		return
	}
	unit, err := models.CreateInvestUnit(c.Request.Context(), itemId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, unit)
}

func updateInvestUnitHandler(c *gin.Context) {
	itemId, ok := paramId(c, "id")
	if !ok {
		return
	}
	unitId, ok := paramId(c, "unitId")
	if !ok {
		return
	}
	var input models.NewInvestUnit
	if !bindJSON(c, &input) {
		return
	}
	unit, err := models.UpdateInvestUnit(c.Request.Context(), itemId, unitId, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}

func deleteInvestUnitHandler(c *gin.Context) {
	itemId, ok := paramId(c, "id")
	if !ok {
		return
	}
	unitId, ok := paramId(c, "unitId")
	if !ok {
		return
	}
	unit, err := models.DeleteInvestUnit(c.Request.Context(), itemId, unitId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, unit)
}
