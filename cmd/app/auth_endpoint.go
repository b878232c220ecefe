package main

import (
	"errors"
	"net/http"

	"TechMartAPI/internal/middleware"
	"TechMartAPI/internal/model"
	"TechMartAPI/internal/observability/metrics"
	"TechMartAPI/internal/services"

	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Email   string `json:"email"`
	OTPCode string `json:"otpCode"`
}

type resendOTPRequest struct {
	Email string `json:"email"`
}

func registerHandler(authSvc *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(registerRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		userID, err := authSvc.Register(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			metrics.AuthRegistrationsTotal.WithLabelValues("failure").Inc()
			switch {
			case errors.Is(err, services.ErrMissingCredentials),
				errors.Is(err, services.ErrInvalidEmail):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			case errors.Is(err, model.ErrEmailTaken):
				return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
			case errors.Is(err, services.ErrEmailDelivery):
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
			default:
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
			}
		}

		metrics.AuthRegistrationsTotal.WithLabelValues("success").Inc()
		return c.JSON(http.StatusCreated, echo.Map{
			"message":   "registration successful, please check your email for the verification code",
			"userId":    userID,
			"emailSent": true,
		})
	}
}

func verifyOTPHandler(authSvc *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(verifyOTPRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		user, token, err := authSvc.VerifyOTP(c.Request().Context(), req.Email, req.OTPCode)
		if err != nil {
			metrics.OTPVerificationsTotal.WithLabelValues("failure").Inc()
			switch {
			case errors.Is(err, services.ErrMissingOTPFields):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			case errors.Is(err, model.ErrUserNotFound):
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			case errors.Is(err, services.ErrAlreadyVerified),
				errors.Is(err, services.ErrOTPExpired),
				errors.Is(err, services.ErrOTPInvalid):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			default:
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
			}
		}

		metrics.OTPVerificationsTotal.WithLabelValues("success").Inc()
		return c.JSON(http.StatusOK, echo.Map{
			"message": "email verified successfully",
			"token":   token,
			"userId":  user.ID.Hex(),
			"role":    user.Role,
		})
	}
}

func resendOTPHandler(authSvc *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(resendOTPRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		err := authSvc.ResendOTP(c.Request().Context(), req.Email)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrMissingCredentials):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
			case errors.Is(err, model.ErrUserNotFound):
				return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
			case errors.Is(err, services.ErrAlreadyVerified):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			default:
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
			}
		}

		return c.JSON(http.StatusOK, echo.Map{
			"message":   "verification code sent successfully",
			"emailSent": true,
		})
	}
}

func loginEndpoint(authSvc *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(loginRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		user, token, err := authSvc.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			metrics.AuthLoginsTotal.WithLabelValues("failure").Inc()
			switch {
			case errors.Is(err, services.ErrMissingCredentials):
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			case errors.Is(err, services.ErrInvalidCredentials):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			case errors.Is(err, services.ErrEmailNotVerified):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			default:
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
			}
		}

		metrics.AuthLoginsTotal.WithLabelValues("success").Inc()
		return c.JSON(http.StatusOK, echo.Map{
			"message": "login successful",
			"token":   token,
			"userId":  user.ID.Hex(),
			"role":    user.Role,
		})
	}
}

// meHandler returns the authenticated user's token claims.
func meHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		cl := middleware.GetClaims(c)
		if cl == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"userId": cl.UserID,
			"role":   cl.Role,
			"exp":    cl.ExpiresAt,
		})
	}
}

func registerAuthRoutes(g *echo.Group, authSvc *services.AuthService, jwtMgr *middleware.JWTManager) {
	a := g.Group("/auth")

	a.POST("/register", registerHandler(authSvc))
	a.POST("/login", loginEndpoint(authSvc))
	a.POST("/verify-otp", verifyOTPHandler(authSvc))
	a.POST("/resend-otp", resendOTPHandler(authSvc))

	a.GET("/me", meHandler(), jwtMgr.Middleware())
}
