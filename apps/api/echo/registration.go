package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/registration"
)

type registrationApi struct {
	svc *registration.Service
}

func registerRegistrationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *registration.Service) {
	api := registrationApi{svc: svc}

	rg := g.Group("/registrations", jwt)

	// user endpoints; the service enforces account verification
	rg.POST("", api.create)
	rg.POST("/full-class-request", api.createFullClassRequest)

	// admin endpoints
	rg.GET("", api.query, adminMiddleware())
	rg.GET("/:id", api.retrieve, adminMiddleware())
	rg.PUT("/:id/status", api.updateStatus, writeAdminMiddleware())
	rg.PUT("/:id/payment", api.updatePaymentStatus, writeAdminMiddleware())
	rg.POST("/:id/payment-link", api.sendPaymentLink, writeAdminMiddleware())
	rg.POST("/:id/message", api.sendMessage, writeAdminMiddleware())
}

// Handlers

func (api *registrationApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin || claims.IsTutor {
		return errHttpForbidden
	}

	var data registration.NewRegistration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRegistration")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reg, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, reg)
}

func (api *registrationApi) createFullClassRequest(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin || claims.IsTutor {
		return errHttpForbidden
	}

	var data registration.FullClassRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FullClassRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reg, err := api.svc.CreateFullClassRequest(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, reg)
}

func (api *registrationApi) query(ctx echo.Context) error {
	filter := registration.QueryFilter{
		SessionID: core.CleanString(ctx.QueryParam("session")),
		Status:    core.CleanString(ctx.QueryParam("status"), true /* lower */),
	}
	filter.Page, _ = strconv.Atoi(ctx.QueryParam("page"))
	filter.PageSize, _ = strconv.Atoi(ctx.QueryParam("page_size"))

	ordering := new(Ordering)
	ordering.Bind(ctx)
	filter.Ordering = ordering.Orderings

	regs, total, err := api.svc.QueryAll(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying registrations")
	}
	if regs == nil {
		regs = []registration.Detail{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"count": total, "results": regs})
}

func (api *registrationApi) retrieve(ctx echo.Context) error {
	reg, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *registrationApi) updateStatus(ctx echo.Context) error {
	var data registration.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reg, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *registrationApi) updatePaymentStatus(ctx echo.Context) error {
	var data registration.UpdatePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePayment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reg, err := api.svc.UpdatePaymentStatus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *registrationApi) sendPaymentLink(ctx echo.Context) error {
	var data registration.PaymentLink
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PaymentLink")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reg, err := api.svc.SendPaymentLink(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *registrationApi) sendMessage(ctx echo.Context) error {
	var data registration.CustomMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CustomMessage")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.SendCustomMessage(ctx.Request().Context(), ctx.Param("id"), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Message sent."})
}
