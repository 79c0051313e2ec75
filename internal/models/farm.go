// internal/models/farm.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SoilType string

const (
	SoilTypeClay  SoilType = "clay"
	SoilTypeLoam  SoilType = "loam"
	SoilTypeSandy SoilType = "sandy"
)

type IrrigationSource string

const (
	IrrigationWell    IrrigationSource = "well"
	IrrigationCanal   IrrigationSource = "canal"
	IrrigationRainfed IrrigationSource = "rainfed"
)

type SowingMethod string

const (
	SowingManual     SowingMethod = "manual"
	SowingMechanized SowingMethod = "mechanized"
	SowingHydroponic SowingMethod = "hydroponic"
)

type SeedVariety string

const (
	SeedVarietyHybrid  SeedVariety = "hybrid"
	SeedVarietyOrganic SeedVariety = "organic"
	SeedVarietyGMO     SeedVariety = "gmo"
)

type CropStage string

const (
	CropStageSapling          CropStage = "sapling_stage"
	CropStageVegetative       CropStage = "vegetative_growth"
	CropStageFlowering        CropStage = "flowering_stage"
	CropStageFruitSetting     CropStage = "fruit_setting"
	CropStageFruitDevelopment CropStage = "fruit_development"
	CropStageHarvesting       CropStage = "harvesting"
	CropStagePostHarvest      CropStage = "post_harvest_ripening"
)

// UserFarm is a farmer's registered plot: where it is, how big, and what
// grows on it right now.
type UserFarm struct {
	BaseModel
	UserID           uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Name             string           `json:"name" gorm:"size:255"`
	Location         string           `json:"location" gorm:"size:255;not null"`
	Latitude         string           `json:"latitude" gorm:"size:50"`
	Longitude        string           `json:"longitude" gorm:"size:50"`
	Size             decimal.Decimal  `json:"size" gorm:"type:decimal(10,2);not null"`
	Crop             string           `json:"crop" gorm:"size:100;not null;index"`
	CropStage        CropStage        `json:"crop_stage" gorm:"type:varchar(30)"`
	SoilType         SoilType         `json:"soil_type" gorm:"type:varchar(20)"`
	IrrigationSource IrrigationSource `json:"irrigation_source" gorm:"type:varchar(20)"`
	SowingMethod     SowingMethod     `json:"sowing_method" gorm:"type:varchar(20)"`
	SeedVariety      SeedVariety      `json:"seed_variety" gorm:"type:varchar(20)"`
	SowingDate       *time.Time       `json:"sowing_date,omitempty"`
	Boundary         JSONB            `json:"boundary,omitempty" gorm:"type:jsonb"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// FarmProject is a managed crop project open to investors.
type FarmProject struct {
	BaseModel
	Name         string          `json:"name" gorm:"size:255;not null"`
	Location     string          `json:"location" gorm:"size:255"`
	Size         decimal.Decimal `json:"size" gorm:"type:decimal(10,2)"`
	FundingGoal  decimal.Decimal `json:"funding_goal" gorm:"type:decimal(12,2);not null"`
	AnnualReturn decimal.Decimal `json:"annual_return" gorm:"type:decimal(12,2)"`
	GrossYield   decimal.Decimal `json:"gross_yield" gorm:"type:decimal(12,2)"`
	NetYield     decimal.Decimal `json:"net_yield" gorm:"type:decimal(12,2)"`
	Image        string          `json:"image" gorm:"size:500"`
	IsOpen       bool            `json:"is_open" gorm:"default:true"`

	// Relationships
	Investments []Investment `json:"investments,omitempty" gorm:"foreignKey:ProjectID"`
}

// Investment records a user's stake in a farm project.
type Investment struct {
	BaseModel
	UserID    uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	ProjectID uuid.UUID       `json:"project_id" gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`

	// Relationships
	User    User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Project FarmProject `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
}
