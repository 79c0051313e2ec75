// internal/services/farm_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrimart/agrimart-backend/internal/models"
)

func createFarmRequest(location string, size decimal.Decimal, crop string) *CreateFarmRequest {
	return &CreateFarmRequest{
		Location:         location,
		Latitude:         "39.4699",
		Longitude:        "-0.3763",
		Size:             size,
		Crop:             crop,
		CropStage:        models.CropStageVegetative,
		SoilType:         models.SoilTypeLoam,
		IrrigationSource: models.IrrigationCanal,
		SowingMethod:     models.SowingManual,
		SeedVariety:      models.SeedVarietyHybrid,
	}
}

func TestCreateFarmAndListByOwner(t *testing.T) {
	db := newTestDB(t)
	service := NewFarmService(db)

	owner := createTestUser(t, db, "Farmer Fran", "fran@example.com")
	other := createTestUser(t, db, "Farmer Flo", "flo@example.com")

	farm, err := service.CreateFarm(owner.ID, createFarmRequest("Valencia", decimal.NewFromInt(10), "wheat"))
	require.NoError(t, err)
	assert.Equal(t, owner.ID, farm.UserID)
	assert.Equal(t, models.SoilTypeLoam, farm.SoilType)

	_, err = service.CreateFarm(other.ID, createFarmRequest("Murcia", decimal.NewFromInt(4), "rice"))
	require.NoError(t, err)

	farms, err := service.ListUserFarms(owner.ID)
	require.NoError(t, err)
	require.Len(t, farms, 1)
	assert.Equal(t, "Valencia", farms[0].Location)
}

func TestFarmStatisticsAggregatesByCrop(t *testing.T) {
	db := newTestDB(t)
	service := NewFarmService(db)

	owner := createTestUser(t, db, "Farmer Fran", "fran@example.com")
	_, err := service.CreateFarm(owner.ID, createFarmRequest("Valencia", decimal.NewFromInt(10), "wheat"))
	require.NoError(t, err)
	_, err = service.CreateFarm(owner.ID, createFarmRequest("Murcia", decimal.NewFromInt(6), "wheat"))
	require.NoError(t, err)
	_, err = service.CreateFarm(owner.ID, createFarmRequest("Lleida", decimal.NewFromInt(3), "maize"))
	require.NoError(t, err)

	stats, err := service.Statistics()
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalFarms)
	assert.True(t, stats.TotalSize.Equal(decimal.NewFromInt(19)), "expected 19 acres, got %s", stats.TotalSize)
	assert.True(t, stats.CropDistribution["wheat"].Equal(decimal.NewFromInt(16)))
	assert.True(t, stats.CropDistribution["maize"].Equal(decimal.NewFromInt(3)))
}

func TestInvestInProject(t *testing.T) {
	db := newTestDB(t)
	service := NewFarmService(db)

	investor := createTestUser(t, db, "Investor Ivy", "ivy@example.com")
	project, err := service.CreateProject(&CreateProjectRequest{
		Name:        "Almond Grove Expansion",
		Location:    "Granada",
		FundingGoal: decimal.NewFromInt(50000),
	})
	require.NoError(t, err)

	investment, err := service.Invest(context.Background(), investor.ID, &InvestRequest{
		ProjectID: project.ID,
		Amount:    decimal.NewFromInt(2500),
	})
	require.NoError(t, err)
	assert.Equal(t, project.ID, investment.ProjectID)

	investments, err := service.ListUserInvestments(investor.ID)
	require.NoError(t, err)
	require.Len(t, investments, 1)
	assert.Equal(t, "Almond Grove Expansion", investments[0].Project.Name)
}

func TestInvestClosedProjectRejected(t *testing.T) {
	db := newTestDB(t)
	service := NewFarmService(db)

	investor := createTestUser(t, db, "Investor Ivy", "ivy@example.com")
	project, err := service.CreateProject(&CreateProjectRequest{
		Name:        "Olive Press Retrofit",
		FundingGoal: decimal.NewFromInt(20000),
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(project).UpdateColumn("is_open", false).Error)

	_, err = service.Invest(context.Background(), investor.ID, &InvestRequest{
		ProjectID: project.ID,
		Amount:    decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, ErrProjectClosed)

	var count int64
	require.NoError(t, db.Model(&models.Investment{}).Count(&count).Error)
	assert.Zero(t, count)
}
