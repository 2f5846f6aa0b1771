package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/invest_backend/middlewares"
)

// RegisterRoutes mounts the auth and invest endpoints on r.
func RegisterRoutes(r gin.IRouter) {
	api := r.Group("/")
	api.Use(middlewares.AuthMiddleware())
	api.Use(middlewares.LoaderMiddleware())

	auth := api.Group("/auth")
	auth.POST("/signup", signUpHandler)
	auth.POST("/login", loginHandler)
	auth.POST("/otp/verify", verifyOtpHandler)
	auth.POST("/refresh", refreshTokenHandler)
	auth.POST("/logout", middlewares.RequireUser(), logoutHandler)
	auth.GET("/me", middlewares.RequireUser(), profileHandler)

	invest := api.Group("/invest")
	invest.Use(middlewares.RequireUser())

	invest.GET("/groups", listInvestGroupsHandler)
	invest.POST("/groups", createInvestGroupHandler)
	invest.GET("/groups/:id", getInvestGroupHandler)
	invest.PUT("/groups/:id", updateInvestGroupHandler)
	invest.DELETE("/groups/:id", deleteInvestGroupHandler)

	invest.GET("/items", listInvestItemsHandler)
	invest.POST("/items", createInvestItemHandler)
	invest.GET("/items/:id", getInvestItemHandler)
	invest.PUT("/items/:id", updateInvestItemHandler)
	invest.DELETE("/items/:id", deleteInvestItemHandler)

	invest.GET("/items/:id/units", listInvestUnitsHandler)
	invest.POST("/items/:id/units", createInvestUnitHandler)
	invest.PUT("/items/:id/units/:unitId", updateInvestUnitHandler)
	invest.DELETE("/items/:id/units/:unitId", deleteInvestUnitHandler)

	invest.GET("/items/:id/histories", listInvestHistoriesHandler)
	invest.POST("/items/:id/histories", createInvestHistoryHandler)
	invest.GET("/items/:id/histories/:historyId", getInvestHistoryHandler)
	invest.PUT("/items/:id/histories/:historyId", updateInvestHistoryHandler)
	invest.DELETE("/items/:id/histories/:historyId", deleteInvestHistoryHandler)

	invest.GET("/items/:id/units/:unitId/summaries", listInvestSummariesHandler)
	invest.GET("/items/:id/units/:unitId/summaries/total", getInvestSummaryTotalHandler)
	invest.GET("/items/:id/units/:unitId/summaries/export", exportInvestSummariesHandler)
	invest.GET("/summaries/total", listTotalSummariesHandler)
}
