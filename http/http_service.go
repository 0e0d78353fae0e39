package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/streamhub/streamhub/api"
	"github.com/streamhub/streamhub/config"
	"github.com/streamhub/streamhub/logger"
	"github.com/streamhub/streamhub/service"
	"github.com/streamhub/streamhub/streams"
)

type authTokenResponse struct {
	Token string `json:"token"`
}

type authRequest struct {
	UnlockPassword string `json:"unlockPassword"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type HttpService struct {
	api api.API
	cfg config.Config
}

func NewHttpService(svc service.Service) *HttpService {
	return &HttpService{
		api: api.NewAPI(svc, svc.GetDB(), svc.GetConfig()),
		cfg: svc.GetConfig(),
	}
}

func (httpSvc *HttpService) RegisterSharedRoutes(e *echo.Echo) error {
	e.HideBanner = true

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "no-referrer",
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			logger.HttpLogger.Info().
				Str("uri", values.URI).
				Int("status", values.Status).
				Str("remote_ip", values.RemoteIP).
				Msg("request")
			return nil
		},
	}))

	jwtSecret, err := httpSvc.cfg.GetJWTSecret()
	if err != nil {
		return err
	}

	e.POST("/api/auth", httpSvc.authHandler)

	authenticated := e.Group("/api", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(jwtSecret),
	}))
	authenticated.GET("/info", httpSvc.infoHandler)
	authenticated.GET("/version", httpSvc.versionHandler)
	authenticated.GET("/balance", httpSvc.balanceHandler)
	authenticated.PATCH("/settings", httpSvc.updateSettingsHandler)
	authenticated.GET("/streams", httpSvc.listStreamsHandler)
	authenticated.POST("/streams", httpSvc.createStreamHandler)
	authenticated.GET("/streams/:streamId", httpSvc.getStreamHandler)
	authenticated.PATCH("/streams/:streamId", httpSvc.updateStreamHandler)
	authenticated.POST("/streams/:streamId/start", httpSvc.startStreamHandler)
	authenticated.POST("/streams/:streamId/pause", httpSvc.pauseStreamHandler)
	authenticated.POST("/streams/:streamId/finish", httpSvc.finishStreamHandler)
	authenticated.POST("/streams/pause-all", httpSvc.pauseAllStreamsHandler)

	return nil
}

func (httpSvc *HttpService) authHandler(c echo.Context) error {
	var req authRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request"})
	}

	if !httpSvc.cfg.CheckUnlockPassword(req.UnlockPassword) {
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: "Invalid password"})
	}

	jwtSecret, err := httpSvc.cfg.GetJWTSecret()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, &authTokenResponse{Token: signed})
}

func (httpSvc *HttpService) infoHandler(c echo.Context) error {
	info, err := httpSvc.api.GetInfo(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}
	return c.JSON(http.StatusOK, info)
}

func (httpSvc *HttpService) versionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, httpSvc.api.GetVersion(c.Request().Context()))
}

func (httpSvc *HttpService) updateSettingsHandler(c echo.Context) error {
	var req api.UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request"})
	}

	if err := httpSvc.api.UpdateSettings(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}

func (httpSvc *HttpService) balanceHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, httpSvc.api.GetBalance())
}

func (httpSvc *HttpService) listStreamsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, httpSvc.api.ListStreams())
}

func (httpSvc *HttpService) createStreamHandler(c echo.Context) error {
	var req streams.PrepareStreamRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request"})
	}

	stream, err := httpSvc.api.CreateStream(&req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	}
	return c.JSON(http.StatusCreated, stream)
}

func (httpSvc *HttpService) getStreamHandler(c echo.Context) error {
	stream, err := httpSvc.api.GetStream(c.Param("streamId"))
	if err != nil {
		return httpSvc.streamErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, stream)
}

func (httpSvc *HttpService) updateStreamHandler(c echo.Context) error {
	var req streams.UpdateStreamRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request"})
	}

	stream, err := httpSvc.api.UpdateStream(c.Param("streamId"), &req)
	if err != nil {
		return httpSvc.streamErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, stream)
}

func (httpSvc *HttpService) startStreamHandler(c echo.Context) error {
	var req api.StartStreamRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request"})
	}

	if err := httpSvc.api.StartStream(c.Param("streamId"), req.Force); err != nil {
		return httpSvc.streamErrorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (httpSvc *HttpService) pauseStreamHandler(c echo.Context) error {
	var req api.PauseStreamRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid request"})
	}

	persist := true
	if req.Persist != nil {
		persist = *req.Persist
	}
	if err := httpSvc.api.PauseStream(c.Param("streamId"), persist); err != nil {
		return httpSvc.streamErrorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (httpSvc *HttpService) finishStreamHandler(c echo.Context) error {
	if err := httpSvc.api.FinishStream(c.Param("streamId")); err != nil {
		return httpSvc.streamErrorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (httpSvc *HttpService) pauseAllStreamsHandler(c echo.Context) error {
	httpSvc.api.PauseAllStreams()
	return c.NoContent(http.StatusNoContent)
}

func (httpSvc *HttpService) streamErrorResponse(c echo.Context, err error) error {
	if streams.IsNotFoundError(err) {
		return c.JSON(http.StatusNotFound, errorResponse{Message: err.Error()})
	}
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return err
	}
	return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
}
