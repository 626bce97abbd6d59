// Package httphandler contains the Echo HTTP handlers for both services.
package httphandler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	themeapp "github.com/themery/themery/internal/application/theme"
	"github.com/themery/themery/internal/domain/theme"
	"github.com/themery/themery/internal/domain/uuid"
	"github.com/themery/themery/internal/infrastructure/httpserver"
	"github.com/themery/themery/internal/middleware"
)

const dateParamLayout = "2006-01-02"

// CreateThemeRequest represents the request to create a theme.
type CreateThemeRequest struct {
	Name      string    `json:"name"`
	Number    int       `json:"number"`
	Letter    string    `json:"letter"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedBy string    `json:"created_by"`
}

// UpdateThemeRequest represents the request to update a theme.
type UpdateThemeRequest struct {
	Name       string    `json:"name"`
	Number     int       `json:"number"`
	Letter     string    `json:"letter"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	ModifiedBy string    `json:"modified_by"`
}

// ThemeResponse represents a theme in API responses.
type ThemeResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Number     int       `json:"number"`
	Letter     string    `json:"letter"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  string    `json:"created_at"`
	ModifiedBy string    `json:"modified_by"`
	ModifiedAt string    `json:"modified_at"`
}

// ThemeListResponse represents a list of themes in API responses.
type ThemeListResponse struct {
	Themes []ThemeResponse `json:"themes"`
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// ThemeHandler handles theme-related HTTP requests.
type ThemeHandler struct {
	createUC     *themeapp.CreateThemeUseCase
	updateUC     *themeapp.UpdateThemeUseCase
	deleteUC     *themeapp.DeleteThemeUseCase
	getUC        *themeapp.GetThemeUseCase
	findByNameUC *themeapp.FindThemesByNameUseCase
	findByDateUC *themeapp.FindThemesByDateUseCase
	listUC       *themeapp.ListThemesUseCase
}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler(
	createUC *themeapp.CreateThemeUseCase,
	updateUC *themeapp.UpdateThemeUseCase,
	deleteUC *themeapp.DeleteThemeUseCase,
	getUC *themeapp.GetThemeUseCase,
	findByNameUC *themeapp.FindThemesByNameUseCase,
	findByDateUC *themeapp.FindThemesByDateUseCase,
	listUC *themeapp.ListThemesUseCase,
) *ThemeHandler {
	return &ThemeHandler{
		createUC:     createUC,
		updateUC:     updateUC,
		deleteUC:     deleteUC,
		getUC:        getUC,
		findByNameUC: findByNameUC,
		findByDateUC: findByDateUC,
		listUC:       listUC,
	}
}

// RegisterRoutes registers theme routes with the router.
func (h *ThemeHandler) RegisterRoutes(r *httpserver.Router) {
	r.API().POST("/themes", h.Create)
	r.API().GET("/themes", h.List)
	r.API().GET("/themes/:id", h.Get)
	r.API().GET("/themes/by-name/:name", h.FindByName)
	r.API().GET("/themes/by-date/:date", h.FindByDate)
	r.API().PUT("/themes/:id", h.Update)
	r.API().DELETE("/themes/:id", h.Delete)
}

// Create handles POST /api/v1/themes.
func (h *ThemeHandler) Create(c echo.Context) error {
	var req CreateThemeRequest
	if err := c.Bind(&req); err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
	}

	result, err := h.createUC.Execute(c.Request().Context(), themeapp.CreateThemeCommand{
		Name:          req.Name,
		Number:        req.Number,
		Letter:        req.Letter,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		CreatedBy:     req.CreatedBy,
		CorrelationID: middleware.GetRequestID(c),
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondCreated(c, ToThemeResponse(result.Value))
}

// List handles GET /api/v1/themes.
func (h *ThemeHandler) List(c echo.Context) error {
	offset, limit := ParsePagination(c)

	result, err := h.listUC.Execute(c.Request().Context(), themeapp.ListThemesQuery{
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToThemeListResponse(result))
}

// Get handles GET /api/v1/themes/:id.
func (h *ThemeHandler) Get(c echo.Context) error {
	themeID, err := uuid.ParseUUID(c.Param("id"))
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_THEME_ID", "Invalid theme ID format")
	}

	result, err := h.getUC.Execute(c.Request().Context(), themeapp.GetThemeQuery{ThemeID: themeID})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToThemeResponse(result.Value))
}

// FindByName handles GET /api/v1/themes/by-name/:name.
func (h *ThemeHandler) FindByName(c echo.Context) error {
	result, err := h.findByNameUC.Execute(c.Request().Context(), themeapp.GetThemesByNameQuery{
		Name: c.Param("name"),
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToThemeListResponse(result))
}

// FindByDate handles GET /api/v1/themes/by-date/:date.
// The date parameter uses the 2006-01-02 layout.
func (h *ThemeHandler) FindByDate(c echo.Context) error {
	date, err := time.Parse(dateParamLayout, c.Param("date"))
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_DATE", "Date must use the YYYY-MM-DD format")
	}

	result, err := h.findByDateUC.Execute(c.Request().Context(), themeapp.GetThemesByDateQuery{Date: date})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToThemeListResponse(result))
}

// Update handles PUT /api/v1/themes/:id.
func (h *ThemeHandler) Update(c echo.Context) error {
	themeID, err := uuid.ParseUUID(c.Param("id"))
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_THEME_ID", "Invalid theme ID format")
	}

	var req UpdateThemeRequest
	if bindErr := c.Bind(&req); bindErr != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
	}

	result, err := h.updateUC.Execute(c.Request().Context(), themeapp.UpdateThemeCommand{
		ThemeID:       themeID,
		Name:          req.Name,
		Number:        req.Number,
		Letter:        req.Letter,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		ModifiedBy:    req.ModifiedBy,
		CorrelationID: middleware.GetRequestID(c),
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, ToThemeResponse(result.Value))
}

// Delete handles DELETE /api/v1/themes/:id.
func (h *ThemeHandler) Delete(c echo.Context) error {
	themeID, err := uuid.ParseUUID(c.Param("id"))
	if err != nil {
		return httpserver.RespondErrorWithCode(c, http.StatusBadRequest, "INVALID_THEME_ID", "Invalid theme ID format")
	}

	_, err = h.deleteUC.Execute(c.Request().Context(), themeapp.DeleteThemeCommand{
		ThemeID:       themeID,
		CorrelationID: middleware.GetRequestID(c),
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondNoContent(c)
}

// ToThemeResponse converts a domain Theme to a ThemeResponse.
func ToThemeResponse(t *theme.Theme) ThemeResponse {
	return ThemeResponse{
		ID:         t.ID(),
		Name:       t.Name(),
		Number:     t.Number(),
		Letter:     t.Letter(),
		StartDate:  t.StartDate().Format(time.RFC3339),
		EndDate:    t.EndDate().Format(time.RFC3339),
		CreatedBy:  t.CreatedBy(),
		CreatedAt:  t.CreatedAt().Format(time.RFC3339),
		ModifiedBy: t.ModifiedBy(),
		ModifiedAt: t.ModifiedAt().Format(time.RFC3339),
	}
}

// ToThemeListResponse converts a list result to a ThemeListResponse.
func ToThemeListResponse(result themeapp.ListResult) ThemeListResponse {
	themes := make([]ThemeResponse, 0, len(result.Themes))
	for _, t := range result.Themes {
		themes = append(themes, ToThemeResponse(t))
	}

	return ThemeListResponse{
		Themes: themes,
		Total:  result.TotalCount,
		Offset: result.Offset,
		Limit:  result.Limit,
	}
}

// ParsePagination extracts pagination parameters from the request.
func ParsePagination(c echo.Context) (int, int) {
	const defaultLimit = 50
	const maxLimit = 200

	offset := 0
	limit := defaultLimit

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= maxLimit {
			limit = parsed
		}
	}

	return offset, limit
}
