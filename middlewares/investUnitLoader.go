package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/invest_backend/models"
	"gorm.io/gorm"
)

type investUnitReader struct {
	db *gorm.DB
}

func (r *investUnitReader) getInvestUnits(ctx context.Context, ids []int) []*dataloader.Result[*models.InvestUnit] {
	var results []models.InvestUnit
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.InvestUnit](len(ids), err)
	}
	return generateLoaderResults(results, ids)
}

func GetInvestUnits(ctx context.Context, ids []int) ([]*models.InvestUnit, []error) {
	loaders := For(ctx)
	return loaders.InvestUnitLoader.LoadMany(ctx, ids)()
}
