package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mmdatafocus/invest_backend/config"
	"github.com/mmdatafocus/invest_backend/models"
	"gorm.io/gorm"
)

type rebuildTarget struct {
	ItemId int
	UnitId int
}

func main() {
	itemID := flag.Int("item-id", 0, "Optional: rebuild only one item. If 0, rebuilds every item.")
	unitID := flag.Int("unit-id", 0, "Optional: rebuild only one unit of the item.")
	skipMigrate := flag.Bool("skip-migrate", false, "Do not run AutoMigrate before rebuilding.")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	if !*skipMigrate {
		models.MigrateTable()
	}

	// no user in ctx: the owner guard stays off and every user's items are visible
	var targets []rebuildTarget
	query := db.WithContext(ctx).Model(&models.InvestUnit{}).Select("item_id, id AS unit_id")
	if *itemID > 0 {
		query = query.Where("item_id = ?", *itemID)
	}
	if *unitID > 0 {
		query = query.Where("id = ?", *unitID)
	}
	if err := query.Order("item_id, id").Scan(&targets).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to list units: %v\n", err)
		os.Exit(1)
	}
	if len(targets) == 0 {
		fmt.Fprintln(os.Stderr, "no units found to rebuild")
		return
	}

	failed := 0
	for _, target := range targets {
		fmt.Printf("Rebuilding invest summaries item=%d unit=%d\n", target.ItemId, target.UnitId)

		if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return models.RebuildSummaries(tx, target.ItemId, target.UnitId)
		}); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "item %d unit %d rebuild failed: %v\n", target.ItemId, target.UnitId, err)
			continue
		}
	}

	fmt.Printf("Done: %d rebuilt, %d failed\n", len(targets)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
