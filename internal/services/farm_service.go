// internal/services/farm_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrimart/agrimart-backend/internal/models"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

// FarmService covers farmer plot registration and the crop-investment
// projects built on top of it.
type FarmService struct {
	db *gorm.DB
}

type CreateFarmRequest struct {
	Name             string                  `json:"name,omitempty" validate:"omitempty,max=255"`
	Location         string                  `json:"location" validate:"required,max=255"`
	Latitude         string                  `json:"latitude" validate:"required,max=50"`
	Longitude        string                  `json:"longitude" validate:"required,max=50"`
	Size             decimal.Decimal         `json:"size" validate:"required,gt=0"`
	Crop             string                  `json:"crop" validate:"required,max=100"`
	CropStage        models.CropStage        `json:"crop_stage" validate:"required,oneof=sapling_stage vegetative_growth flowering_stage fruit_setting fruit_development harvesting post_harvest_ripening"`
	SoilType         models.SoilType         `json:"soil_type" validate:"required,oneof=clay loam sandy"`
	IrrigationSource models.IrrigationSource `json:"irrigation_source" validate:"required,oneof=well canal rainfed"`
	SowingMethod     models.SowingMethod     `json:"sowing_method" validate:"required,oneof=manual mechanized hydroponic"`
	SeedVariety      models.SeedVariety      `json:"seed_variety" validate:"required,oneof=hybrid organic gmo"`
	SowingDate       *time.Time              `json:"sowing_date,omitempty"`
	Boundary         models.JSONB            `json:"boundary,omitempty"`
}

type CreateProjectRequest struct {
	Name         string          `json:"name" validate:"required,min=3,max=255"`
	Location     string          `json:"location,omitempty" validate:"omitempty,max=255"`
	Size         decimal.Decimal `json:"size,omitempty"`
	FundingGoal  decimal.Decimal `json:"funding_goal" validate:"required,gt=0"`
	AnnualReturn decimal.Decimal `json:"annual_return,omitempty"`
	GrossYield   decimal.Decimal `json:"gross_yield,omitempty"`
	NetYield     decimal.Decimal `json:"net_yield,omitempty"`
	Image        string          `json:"image,omitempty" validate:"omitempty,max=500"`
}

type InvestRequest struct {
	ProjectID uuid.UUID       `json:"project_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required,gt=0"`
}

// FarmStatistics aggregates the registered plots.
type FarmStatistics struct {
	TotalFarms       int64                      `json:"total_farms"`
	TotalSize        decimal.Decimal            `json:"total_size"`
	CropDistribution map[string]decimal.Decimal `json:"crop_distribution"`
}

func NewFarmService(db *gorm.DB) *FarmService {
	return &FarmService{db: db}
}

func (s *FarmService) CreateFarm(userID uuid.UUID, req *CreateFarmRequest) (*models.UserFarm, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	farm := &models.UserFarm{
		UserID:           userID,
		Name:             req.Name,
		Location:         req.Location,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Size:             req.Size,
		Crop:             req.Crop,
		CropStage:        req.CropStage,
		SoilType:         req.SoilType,
		IrrigationSource: req.IrrigationSource,
		SowingMethod:     req.SowingMethod,
		SeedVariety:      req.SeedVariety,
		SowingDate:       req.SowingDate,
		Boundary:         req.Boundary,
	}

	if err := s.db.Create(farm).Error; err != nil {
		return nil, fmt.Errorf("failed to create farm: %w", err)
	}

	return farm, nil
}

func (s *FarmService) ListUserFarms(userID uuid.UUID) ([]models.UserFarm, error) {
	var farms []models.UserFarm
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&farms).Error; err != nil {
		return nil, fmt.Errorf("failed to list farms: %w", err)
	}
	return farms, nil
}

func (s *FarmService) ListFarms(params utils.PaginationParams) ([]models.UserFarm, int64, error) {
	var farms []models.UserFarm
	var total int64

	query := s.db.Model(&models.UserFarm{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count farms: %w", err)
	}

	if err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Find(&farms).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list farms: %w", err)
	}

	return farms, total, nil
}

// Statistics sums plot counts and acreage, broken down by crop.
func (s *FarmService) Statistics() (*FarmStatistics, error) {
	stats := &FarmStatistics{CropDistribution: map[string]decimal.Decimal{}}

	if err := s.db.Model(&models.UserFarm{}).Count(&stats.TotalFarms).Error; err != nil {
		return nil, fmt.Errorf("failed to count farms: %w", err)
	}

	row := s.db.Model(&models.UserFarm{}).Select("COALESCE(SUM(size), 0)").Row()
	if err := row.Scan(&stats.TotalSize); err != nil {
		return nil, fmt.Errorf("failed to sum farm sizes: %w", err)
	}

	rows, err := s.db.Model(&models.UserFarm{}).
		Select("crop, COALESCE(SUM(size), 0)").Group("crop").Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to group farms by crop: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var crop string
		var size decimal.Decimal
		if err := rows.Scan(&crop, &size); err != nil {
			return nil, fmt.Errorf("failed to scan crop distribution: %w", err)
		}
		stats.CropDistribution[crop] = size
	}

	return stats, rows.Err()
}

func (s *FarmService) CreateProject(req *CreateProjectRequest) (*models.FarmProject, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	project := &models.FarmProject{
		Name:         req.Name,
		Location:     req.Location,
		Size:         req.Size,
		FundingGoal:  req.FundingGoal,
		AnnualReturn: req.AnnualReturn,
		GrossYield:   req.GrossYield,
		NetYield:     req.NetYield,
		Image:        req.Image,
		IsOpen:       true,
	}

	if err := s.db.Create(project).Error; err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

func (s *FarmService) ListProjects(params utils.PaginationParams) ([]models.FarmProject, int64, error) {
	var projects []models.FarmProject
	var total int64

	query := s.db.Model(&models.FarmProject{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	if err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Find(&projects).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

func (s *FarmService) GetProject(projectID uuid.UUID) (*models.FarmProject, error) {
	var project models.FarmProject
	if err := s.db.Preload("Investments").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &project, nil
}

// Invest records a stake in an open project. There is no wallet movement:
// investment settlement happens off-platform, the ledger here only tracks
// who holds what.
func (s *FarmService) Invest(ctx context.Context, userID uuid.UUID, req *InvestRequest) (*models.Investment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var investment *models.Investment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.FarmProject
		if err := tx.First(&project, req.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !project.IsOpen {
			return ErrProjectClosed
		}

		investment = &models.Investment{
			UserID:    userID,
			ProjectID: project.ID,
			Amount:    req.Amount,
		}
		if err := tx.Create(investment).Error; err != nil {
			return fmt.Errorf("failed to create investment: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return investment, nil
}

func (s *FarmService) ListUserInvestments(userID uuid.UUID) ([]models.Investment, error) {
	var investments []models.Investment
	if err := s.db.Preload("Project").
		Where("user_id = ?", userID).Order("created_at DESC").
		Find(&investments).Error; err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	return investments, nil
}
