package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/micromarket/marketplace-api/internal/core/domain"
	"github.com/micromarket/marketplace-api/internal/core/ports"
)

// AdminHandler serves /api/admin. Routes are mounted behind Auth and
// RequireRole(admin); the service checks the role again.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListUsers handles GET /api/admin/users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int     false  "Page (default 1)"
// @Param        limit  query     int     false  "Page size (default 20, max 100)"
// @Param        q      query     string  false  "Search over name and email"
// @Success      200    {object}  adminUsersResponse
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var q adminListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	page, err := h.service.ListUsers(c.Request().Context(), actor, ports.ListInput{Page: q.Page, Limit: q.Limit, Query: q.Query})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminUsersResponse{
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
		Users: toUserResponses(page.Items),
	})
}

// GetUser handles GET /api/admin/users/:id.
//
// @Summary      Get a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/users/{id} [get]
func (h *AdminHandler) GetUser(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteUser handles DELETE /api/admin/users/:id. The last admin cannot be deleted.
//
// @Summary      Delete a user
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangeRole handles PATCH /api/admin/users/:id/role.
//
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      changeRoleRequest  true  "New role"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/admin/users/{id}/role [patch]
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req changeRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return err
	}

	user, err := h.service.ChangeRole(c.Request().Context(), actor, id, role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ListProducts handles GET /api/admin/products.
//
// @Summary      List all products
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int     false  "Page (default 1)"
// @Param        limit  query     int     false  "Page size (default 20, max 100)"
// @Param        q      query     string  false  "Search over title and description"
// @Success      200    {object}  adminProductsResponse
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /api/admin/products [get]
func (h *AdminHandler) ListProducts(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var q adminListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	page, err := h.service.ListProducts(c.Request().Context(), actor, ports.ListInput{Page: q.Page, Limit: q.Limit, Query: q.Query})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, adminProductsResponse{
		Total:    page.Total,
		Page:     page.Page,
		Limit:    page.Limit,
		Products: toProductResponses(page.Items),
	})
}

// UpdateProduct handles PUT /api/admin/products/:id. No ownership check.
//
// @Summary      Update any product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Product id"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/admin/products/{id} [put]
func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.service.UpdateProduct(c.Request().Context(), actor, id, toProductPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(product))
}

// DeleteProduct handles DELETE /api/admin/products/:id.
//
// @Summary      Delete any product
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "Product id"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/admin/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteProduct(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
