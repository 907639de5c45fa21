package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "dreistrom/internal/errors"
	"dreistrom/internal/models"
	"dreistrom/internal/services"
)

// DeductionHandler exposes home office and depreciation deductions.
type DeductionHandler struct {
	deductionService services.DeductionServicer
}

// NewDeductionHandler creates a new DeductionHandler.
func NewDeductionHandler(deductionService services.DeductionServicer) *DeductionHandler {
	return &DeductionHandler{deductionService: deductionService}
}

// homeOfficeQuery binds the home office comparison parameters.
type homeOfficeQuery struct {
	Year                int             `form:"year"`
	DaysWorkedFromHome  int             `form:"days_worked_from_home" binding:"min=0,max=366"`
	OfficeArea          decimal.Decimal `form:"office_area"`
	DwellingArea        decimal.Decimal `form:"dwelling_area"`
	AnnualDwellingCosts decimal.Decimal `form:"annual_dwelling_costs"`
}

// HomeOffice compares the Tagespauschale against the Arbeitszimmer deduction
// @Summary     Home office comparison
// @Description §4 Abs. 5 Nr. 6b/6c EStG: daily flat rate versus dedicated room costs
// @Tags        deductions
// @Produce     json
// @Security    BearerAuth
// @Param       year query int false "Tax year (defaults to current)"
// @Param       days_worked_from_home query int false "Days worked from home"
// @Param       office_area query number false "Office area in square meters"
// @Param       dwelling_area query number false "Dwelling area in square meters"
// @Param       annual_dwelling_costs query number false "Annual dwelling costs in EUR"
// @Success     200 {object} calculator.HomeOfficeResult "Comparison"
// @Router      /deductions/home-office [get]
func (h *DeductionHandler) HomeOffice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query homeOfficeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}
	if query.Year == 0 {
		query.Year = time.Now().Year()
	}

	result, err := h.deductionService.HomeOffice(userID, services.HomeOfficeInput{
		Year:                query.Year,
		DaysWorkedFromHome:  query.DaysWorkedFromHome,
		OfficeArea:          query.OfficeArea,
		DwellingArea:        query.DwellingArea,
		AnnualDwellingCosts: query.AnnualDwellingCosts,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year": query.Year, "home_office": result})
}

// CreateAssetRequest is the depreciation asset payload.
type CreateAssetRequest struct {
	Stream           models.IncomeStream `json:"stream" binding:"required,income_stream"`
	Name             string              `json:"name" binding:"required,max=255"`
	AcquisitionDate  time.Time           `json:"acquisition_date" binding:"required" time_format:"2006-01-02"`
	NetCostCents     int64               `json:"net_cost_cents" binding:"required,gt=0"`
	UsefulLifeMonths int                 `json:"useful_life_months" binding:"required,gt=0"`
}

// CreateAsset registers a depreciable asset
// @Summary     Create asset
// @Description Assets at or under the GWG limit are flagged for immediate write-off
// @Tags        deductions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAssetRequest true "Asset data"
// @Success     201 {object} models.DepreciationAsset "Created asset"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /deductions/assets [post]
func (h *DeductionHandler) CreateAsset(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	asset, err := h.deductionService.CreateAsset(userID, services.AssetInput{
		Stream:           req.Stream,
		Name:             req.Name,
		AcquisitionDate:  req.AcquisitionDate,
		NetCostCents:     req.NetCostCents,
		UsefulLifeMonths: req.UsefulLifeMonths,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"asset": asset})
}

// ListAssets returns the user's depreciable assets
// @Summary     List assets
// @Tags        deductions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.DepreciationAsset "Assets"
// @Router      /deductions/assets [get]
func (h *DeductionHandler) ListAssets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	assets, err := h.deductionService.ListAssets(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

// AssetSchedule returns the linear AfA schedule of one asset
// @Summary     Asset depreciation schedule
// @Description Monthly pro-rata linear schedule; GWG assets return an empty schedule
// @Tags        deductions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Asset ID"
// @Success     200 {object} services.AssetSchedule "Schedule"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /deductions/assets/{id}/schedule [get]
func (h *DeductionHandler) AssetSchedule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	schedule, err := h.deductionService.Schedule(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// DeleteAsset deletes a depreciable asset
// @Summary     Delete asset
// @Tags        deductions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Asset ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /deductions/assets/{id} [delete]
func (h *DeductionHandler) DeleteAsset(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.deductionService.DeleteAsset(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
