package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/invest_backend/models"
	"gorm.io/gorm"
)

type investGroupReader struct {
	db *gorm.DB
}

func (r *investGroupReader) getInvestGroups(ctx context.Context, ids []int) []*dataloader.Result[*models.InvestGroup] {
	var results []models.InvestGroup
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.InvestGroup](len(ids), err)
	}
	return generateLoaderResults(results, ids)
}

func GetInvestGroups(ctx context.Context, ids []int) ([]*models.InvestGroup, []error) {
	loaders := For(ctx)
	return loaders.InvestGroupLoader.LoadMany(ctx, ids)()
}
