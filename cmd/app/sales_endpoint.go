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

// registerSalesRoutes mounts the sales report endpoint, admin only.
//
//	GET /sales/:productId?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
func registerSalesRoutes(g *echo.Group, ss *services.SalesService, jwtMgr *middleware.JWTManager) {
	sales := g.Group("/sales", jwtMgr.Middleware(), middleware.AdminOnly)

	sales.GET("/:productId", func(c echo.Context) error {
		productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
		if err != nil || productID <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}

		startDate := c.QueryParam("startDate")
		endDate := c.QueryParam("endDate")

		report, err := ss.GetSalesDetails(c.Request().Context(), productID, startDate, endDate)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrMissingDates),
				errors.Is(err, services.ErrBadDateFormat):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			case errors.Is(err, model.ErrProductNotFound):
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			default:
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not build sales report"})
			}
		}

		return c.JSON(http.StatusOK, report)
	})
}
