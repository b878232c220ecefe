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

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

// registerProductRoutes mounts catalog endpoints.
// Public:
//
//	GET /products      -> list
//	GET /products/:id  -> get
//
// Admin only:
//
//	POST /products
//	PUT /products/:id
//	DELETE /products/:id
func registerProductRoutes(g *echo.Group, ps *services.ProductService, jwtMgr *middleware.JWTManager) {
	g.GET("/products", func(c echo.Context) error {
		products, err := ps.List(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load products"})
		}
		return c.JSON(http.StatusOK, products)
	})

	g.GET("/products/:id", func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}

		product, err := ps.Get(c.Request().Context(), id)
		if err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		return c.JSON(http.StatusOK, product)
	})

	admin := g.Group("/products", jwtMgr.Middleware(), middleware.AdminOnly)

	admin.POST("", func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		req := new(productRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		id, err := ps.Create(c.Request().Context(), req.Name, req.Description, req.Price, req.Quantity, req.ImageURL, cl.UserID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		return c.JSON(http.StatusCreated, echo.Map{
			"message":   "product created",
			"productId": id,
		})
	})

	admin.PUT("/:id", func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}

		req := new(productRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		if err := ps.Update(c.Request().Context(), id, req.Name, req.Description, req.Price, req.Quantity, req.ImageURL); err != nil {
			if errors.Is(err, model.ErrProductNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, echo.Map{"message": "product updated"})
	})

	admin.DELETE("/:id", func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
		}

		if err := ps.Delete(c.Request().Context(), id); err != nil {
			if errors.Is(err, model.ErrProductNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete product"})
		}

		return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
	})
}
