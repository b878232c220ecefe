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

type updateOrderRequest struct {
	Status string `json:"status"`
}

// registerOrderRoutes mounts order endpoints. All routes require a valid token.
func registerOrderRoutes(g *echo.Group, os *services.OrderService, jwtMgr *middleware.JWTManager) {
	orders := g.Group("/orders", jwtMgr.Middleware())

	// checkout: turns the current cart into a pending order
	orders.POST("", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		orderID, err := os.Create(c.Request().Context(), cl.UserID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		return c.JSON(http.StatusCreated, echo.Map{
			"message": "order placed",
			"orderId": orderID,
			"status":  model.OrderPendingPayment,
		})
	})

	orders.GET("", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		list, err := os.ListByUser(c.Request().Context(), cl.UserID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load orders"})
		}
		return c.JSON(http.StatusOK, list)
	})

	orders.PUT("/:id", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || orderID <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
		}

		req := new(updateOrderRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		if err := os.UpdateStatus(c.Request().Context(), cl.UserID, orderID, req.Status); err != nil {
			if errors.Is(err, model.ErrOrderNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, echo.Map{"message": "order updated"})
	})

	orders.DELETE("/:id", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || orderID <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
		}

		if err := os.Delete(c.Request().Context(), cl.UserID, orderID); err != nil {
			if errors.Is(err, model.ErrOrderNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete order"})
		}

		return c.JSON(http.StatusOK, echo.Map{"message": "order deleted"})
	})
}
