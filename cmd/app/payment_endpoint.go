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

func registerPaymentRoutes(g *echo.Group, ps *services.PaymentService, jwtMgr *middleware.JWTManager) {
	p := g.Group("/payments")

	// midtrans notification: must stay public, and must answer 200
	// or the gateway keeps retrying
	p.POST("/notification", func(c echo.Context) error {
		var payload map[string]interface{}
		if err := c.Bind(&payload); err != nil {
			return c.JSON(http.StatusOK, echo.Map{
				"status": "ignored",
				"reason": "invalid payload",
			})
		}

		if err := ps.HandleNotification(c.Request().Context(), payload); err != nil {
			return c.JSON(http.StatusOK, echo.Map{
				"status": "ignored",
				"reason": err.Error(),
			})
		}

		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	p.POST("/:orderId", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
		if err != nil || orderID <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
		}

		redirectURL, err := ps.CreateSnapPayment(c.Request().Context(), orderID, cl.UserID)
		if err != nil {
			if errors.Is(err, model.ErrOrderNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, echo.Map{"redirect_url": redirectURL})
	}, jwtMgr.Middleware())
}
