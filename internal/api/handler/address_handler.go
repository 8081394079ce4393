package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront-accounts/internal/core/ports"
)

// AddressHandler serves the shipping addresses of the current session's account.
type AddressHandler struct {
	service ports.AddressService
}

func NewAddressHandler(service ports.AddressService) *AddressHandler {
	return &AddressHandler{service: service}
}

// List handles GET /v1/me/addresses.
//
// @Summary      List addresses
// @Tags         addresses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  addressListResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /v1/me/addresses [get]
func (h *AddressHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	addrs, err := h.service.ListAddresses(c.Request().Context(), sess.AccountID)
	if err != nil {
		return err
	}

	items := make([]addressResponse, 0, len(addrs))
	for _, a := range addrs {
		items = append(items, toAddressResponse(a))
	}
	return c.JSON(http.StatusOK, addressListResponse{Items: items})
}

// Create handles POST /v1/me/addresses.
//
// @Summary      Add an address
// @Tags         addresses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addressRequest  true  "Address"
// @Success      201   {object}  addressResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /v1/me/addresses [post]
func (h *AddressHandler) Create(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	addr, err := h.service.AddAddress(c.Request().Context(), sess.AccountID, toAddressInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAddressResponse(addr))
}

// Update handles PUT /v1/me/addresses/:id.
//
// @Summary      Replace an address
// @Tags         addresses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Address ID"
// @Param        body  body      addressRequest  true  "Address"
// @Success      200   {object}  addressResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /v1/me/addresses/{id} [put]
func (h *AddressHandler) Update(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	addr, err := h.service.UpdateAddress(c.Request().Context(), sess.AccountID, c.Param("id"), toAddressInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAddressResponse(addr))
}

// Delete handles DELETE /v1/me/addresses/:id.
//
// @Summary      Delete an address
// @Tags         addresses
// @Security     BearerAuth
// @Param        id   path  string  true  "Address ID"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/me/addresses/{id} [delete]
func (h *AddressHandler) Delete(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteAddress(c.Request().Context(), sess.AccountID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
