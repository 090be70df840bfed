package api

import (
	"context"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"homebar/docs"
	v1 "homebar/internal/api/handler/v1"
	"homebar/internal/api/middleware"
	"homebar/internal/config"
	"homebar/internal/repository"
	"homebar/internal/repository/dao"
	"homebar/internal/service"
	"homebar/internal/ws"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	registry := ws.NewRegistry()
	hub := ws.NewHub(registry)
	wsHandler := ws.NewHandler(registry, hub)
	orderHandler := s.initOrderHandler(db, hub)
	s.MountHandlers(orderHandler, wsHandler)

	monitor := ws.NewMonitor(registry, conf.Websocket.SweepInterval(), conf.Websocket.LivenessTimeout())
	go monitor.Run(context.Background())

	return s
}

func (s *Server) initOrderHandler(db *gorm.DB, hub *ws.Hub) *v1.OrderHandler {
	orderDAO := dao.NewOrderDAO(db)
	venueDAO := dao.NewVenueDAO(db)
	orderRepo := repository.NewOrderRepository(orderDAO)
	venueRepo := repository.NewVenueRepository(venueDAO)
	svc := service.NewOrderService(orderRepo, venueRepo, hub)
	handler := v1.NewOrderHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(orderHandler *v1.OrderHandler, wsHandler *ws.Handler) {
	const basePath = "/api/v1"

	orders := s.Router.Group(basePath)
	{
		orders.POST("/orders", orderHandler.HandleCreateOrder)
		orders.PATCH("/orders/:orderID/status", orderHandler.HandleUpdateOrderStatus)
		orders.DELETE("/orders/:orderID", orderHandler.HandleCancelOrder)
		orders.GET("/venues/:venueID/orders", orderHandler.HandleGetOrders)
		orders.GET("/venues/:venueID/orders/pending", orderHandler.HandleGetPendingOrders)
		orders.GET("/venues/:venueID/orders/customer/:customerName", orderHandler.HandleGetCustomerOrder)

		orders.GET("/ws", wsHandler.HandleWebSocket)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Home Bar API"
	docs.SwaggerInfo.Description = "Order lifecycle and realtime notification service for home bars."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
