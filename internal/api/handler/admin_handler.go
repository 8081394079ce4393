package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
	"github.com/99minutos/storefront-accounts/internal/core/ports"
)

// AdminHandler serves the staff-only account administration routes.
type AdminHandler struct {
	service ports.AccountService
}

func NewAdminHandler(service ports.AccountService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListAccounts handles GET /v1/admin/accounts.
//
// @Summary      List accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        search     query     string  false  "Substring of username or e-mail"
// @Param        superuser  query     bool    false  "Filter by superuser flag"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Page size (default 20, max 100)"
// @Success      200        {object}  accountListResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      401        {object}  ErrorResponse
// @Failure      403        {object}  ErrorResponse
// @Router       /v1/admin/accounts [get]
func (h *AdminHandler) ListAccounts(c echo.Context) error {
	var filter domain.AccountFilter
	if err := echo.QueryParamsBinder(c).
		String("search", &filter.Search).
		Int("page", &filter.Page).
		Int("limit", &filter.Limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if raw := c.QueryParam("superuser"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "superuser must be a boolean")
		}
		filter.Superuser = &v
	}

	res, err := h.service.ListAccounts(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	items := make([]accountResponse, 0, len(res.Items))
	for _, a := range res.Items {
		items = append(items, toAccountResponse(a))
	}
	return c.JSON(http.StatusOK, accountListResponse{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	})
}

// SetActive handles PATCH /v1/admin/accounts/:id/active.
//
// @Summary      Activate or deactivate an account
// @Description  Deactivation revokes every open session of the account.
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string            true  "Account ID"
// @Param        body  body  setActiveRequest  true  "New state"
// @Success      204
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /v1/admin/accounts/{id}/active [patch]
func (h *AdminHandler) SetActive(c echo.Context) error {
	var req setActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.service.SetActive(c.Request().Context(), c.Param("id"), *req.Active); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
