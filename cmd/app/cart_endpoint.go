package main

import (
	"errors"
	"net/http"
	"strconv"

	"TechMartAPI/internal/middleware"
	"TechMartAPI/internal/model"
	"TechMartAPI/internal/services"

	"github.com/labstack/echo/v4"
)

type addCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

// registerCartRoutes mounts cart endpoints. All routes require a valid token.
func registerCartRoutes(g *echo.Group, cs *services.CartService, jwtMgr *middleware.JWTManager) {
	cart := g.Group("/cart", jwtMgr.Middleware())

	cart.POST("/add", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		req := new(addCartRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		if req.ProductID <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}

		if err := cs.Add(c.Request().Context(), cl.UserID, req.ProductID, req.Quantity); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, echo.Map{"message": "product added to cart"})
	})

	cart.GET("", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		resp, err := cs.Get(c.Request().Context(), cl.UserID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load cart"})
		}
		return c.JSON(http.StatusOK, resp)
	})

	cart.PUT("/update/:id", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || productID <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}

		req := new(updateCartRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		if err := cs.Update(c.Request().Context(), cl.UserID, productID, req.Quantity); err != nil {
			if errors.Is(err, model.ErrCartItemNotFound) || errors.Is(err, model.ErrCartNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, echo.Map{"message": "cart updated"})
	})

	cart.DELETE("/remove/:id", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || productID <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}

		if err := cs.Remove(c.Request().Context(), cl.UserID, productID); err != nil {
			if errors.Is(err, model.ErrCartItemNotFound) || errors.Is(err, model.ErrCartNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not remove item"})
		}

		return c.JSON(http.StatusOK, echo.Map{"message": "item removed from cart"})
	})

	cart.DELETE("/clear", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		if err := cs.Clear(c.Request().Context(), cl.UserID); err != nil {
			if errors.Is(err, model.ErrCartNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not clear cart"})
		}

		return c.JSON(http.StatusOK, echo.Map{"message": "cart cleared"})
	})
}
