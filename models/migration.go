package models

import (
	"log"

	"github.com/mmdatafocus/invest_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&InvestGroup{}, &InvestItem{}, &InvestUnit{},
		&InvestHistory{},
		&InvestSummary{}, &InvestSummaryTotal{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
