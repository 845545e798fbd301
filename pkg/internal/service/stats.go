package service

import (
	"context"

	"github.com/dkozyrev/softvault/pkg/internal/model"
	"github.com/dkozyrev/softvault/pkg/internal/types"
)

// StatsService computes the admin dashboard counters.
type StatsService struct{ *Service }

func NewStatsService(c context.Context) *StatsService {
	return &StatsService{newService(c)}
}

// Collect gathers catalog-wide counts in one pass of simple aggregates.
func (s *StatsService) Collect(ctx context.Context) (*types.StatsResponse, error) {
	dbx := s.dbClient.GetDB().WithContext(ctx)
	resp := &types.StatsResponse{}

	if err := dbx.Model(&model.Product{}).Count(&resp.Products).Error; err != nil {
		return nil, err
	}

	if err := dbx.Model(&model.Version{}).Count(&resp.Versions).Error; err != nil {
		return nil, err
	}

	if err := dbx.Model(&model.Category{}).Count(&resp.Categories).Error; err != nil {
		return nil, err
	}

	if err := dbx.Model(&model.Version{}).Where("is_disabled = ?", true).Count(&resp.Disabled).Error; err != nil {
		return nil, err
	}

	if err := dbx.Model(&model.Version{}).
		Where("is_filled = ? AND is_disabled = ?", false, false).
		Count(&resp.Unfilled).Error; err != nil {
		return nil, err
	}

	var total struct{ Total int64 }
	err := dbx.Model(&model.Version{}).
		Select("COALESCE(SUM(file_size), 0) AS total").
		Where("is_disabled = ?", false).
		Scan(&total).Error
	if err != nil {
		return nil, err
	}

	resp.TotalBytes = total.Total

	return resp, nil
}
