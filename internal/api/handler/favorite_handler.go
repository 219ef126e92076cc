package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/micromarket/marketplace-api/internal/core/ports"
)

type FavoriteHandler struct {
	service ports.FavoriteService
}

func NewFavoriteHandler(service ports.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// Add handles POST /favorites/:productId. Repeating the call is harmless.
//
// @Summary      Favorite a product
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Param        productId  path      string  true  "Product id"
// @Success      200        {object}  messageResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Failure      404        {object}  errorResponse
// @Router       /favorites/{productId} [post]
func (h *FavoriteHandler) Add(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		return err
	}

	added, err := h.service.Add(c.Request().Context(), actor, productID)
	if err != nil {
		return err
	}
	msg := "favorited"
	if !added {
		msg = "already favorited"
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

// Remove handles DELETE /favorites/:productId.
//
// @Summary      Unfavorite a product
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Param        productId  path      string  true  "Product id"
// @Success      200        {object}  messageResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Router       /favorites/{productId} [delete]
func (h *FavoriteHandler) Remove(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		return err
	}

	if _, err := h.service.Remove(c.Request().Context(), actor, productID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "unfavorited"})
}

// List handles GET /favorites.
//
// @Summary      List the caller's favorites
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  favoritesResponse
// @Failure      401  {object}  errorResponse
// @Router       /favorites [get]
func (h *FavoriteHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	items, err := h.service.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, favoritesResponse{Items: toProductResponses(items)})
}
