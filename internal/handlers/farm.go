// internal/handlers/farm.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrimart/agrimart-backend/internal/i18n"
	"github.com/agrimart/agrimart-backend/internal/models"
	"github.com/agrimart/agrimart-backend/internal/services"
	"github.com/agrimart/agrimart-backend/internal/utils"
)

type FarmHandler struct {
	farmService *services.FarmService
}

func NewFarmHandler(farmService *services.FarmService) *FarmHandler {
	return &FarmHandler{farmService: farmService}
}

// POST /farms
func (h *FarmHandler) CreateFarm(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	farm, err := h.farmService.CreateFarm(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"farm":    farm,
		"message": i18n.T(lang, i18n.KeyFarmCreated),
	})
}

// GET /farms
func (h *FarmHandler) MyFarms(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	farms, err := h.farmService.ListUserFarms(userID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, farms)
}

// GET /farms/enums
func (h *FarmHandler) FarmEnums(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"soil_type":         []models.SoilType{models.SoilTypeClay, models.SoilTypeLoam, models.SoilTypeSandy},
		"irrigation_source": []models.IrrigationSource{models.IrrigationWell, models.IrrigationCanal, models.IrrigationRainfed},
		"sowing_method":     []models.SowingMethod{models.SowingManual, models.SowingMechanized, models.SowingHydroponic},
		"seed_variety":      []models.SeedVariety{models.SeedVarietyHybrid, models.SeedVarietyOrganic, models.SeedVarietyGMO},
		"crop_stage": []models.CropStage{
			models.CropStageSapling, models.CropStageVegetative, models.CropStageFlowering,
			models.CropStageFruitSetting, models.CropStageFruitDevelopment,
			models.CropStageHarvesting, models.CropStagePostHarvest,
		},
	})
}

// GET /farms/statistics
func (h *FarmHandler) Statistics(c *gin.Context) {
	stats, err := h.farmService.Statistics()
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /projects
func (h *FarmHandler) Projects(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	projects, total, err := h.farmService.ListProjects(params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	result := utils.CreatePaginationResult(projects, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /projects/:id
func (h *FarmHandler) GetProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid project ID", nil)
		return
	}

	project, err := h.farmService.GetProject(projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, project)
}

// POST /admin/projects
func (h *FarmHandler) CreateProject(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	project, err := h.farmService.CreateProject(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, project)
}

// POST /investments
func (h *FarmHandler) Invest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	investment, err := h.farmService.Invest(c.Request.Context(), userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"investment": investment,
		"message":    i18n.T(lang, i18n.KeyInvestmentCreated),
	})
}

// GET /investments
func (h *FarmHandler) MyInvestments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	investments, err := h.farmService.ListUserInvestments(userID)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, investments)
}
