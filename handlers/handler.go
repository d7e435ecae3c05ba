package handlers

import (
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"resto-order-go/events"
	"resto-order-go/storage"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Handler serves the REST API. Build it with New; the zero value is not usable.
type Handler struct {
	store     storage.Storage
	publisher events.Publisher
	location  *time.Location
}

type Option func(*Handler)

func WithPublisher(publisher events.Publisher) Option {
	return func(h *Handler) {
		h.publisher = publisher
	}
}

// WithLocation sets the zone calendar dates in query strings are read in.
func WithLocation(location *time.Location) Option {
	return func(h *Handler) {
		h.location = location
	}
}

func New(store storage.Storage, opts ...Option) *Handler {
	registerJSONFieldNames()

	h := &Handler{
		store:     store,
		publisher: events.NopPublisher{},
		location:  time.UTC,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter wires the API routes behind the shared middleware. Extra
// middleware such as CORS runs after request ids are assigned.
func NewRouter(h *Handler, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestIDMiddleware(), gin.Logger(), RecoveryMiddleware())
	router.Use(middleware...)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "resto-order"})
	})

	h.Register(router)
	return router
}

func (h *Handler) Register(router gin.IRouter) {
	api := router.Group("/api")

	menuRoutes := api.Group("/menu")
	{
		menuRoutes.GET("", h.ListMenuItemsHandler)
		menuRoutes.GET("/:id", h.GetMenuItemHandler)
		menuRoutes.POST("", h.CreateMenuItemHandler)
		menuRoutes.PUT("/:id", h.UpdateMenuItemHandler)
		menuRoutes.DELETE("/:id", h.DeleteMenuItemHandler)
	}

	orderRoutes := api.Group("/orders")
	{
		orderRoutes.GET("", h.ListOrdersHandler)
		orderRoutes.GET("/:id", h.GetOrderHandler)
		orderRoutes.POST("", h.PlaceOrderHandler)
		orderRoutes.PUT("/:id/status", h.UpdateOrderStatusHandler)
	}

	api.GET("/transactions", h.ListTransactionsHandler)
	api.GET("/reports/summary", h.ReportSummaryHandler)
	api.POST("/auth/login", h.LoginHandler)
}

// RequestIDMiddleware reuses the caller's X-Request-ID or generates one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// RecoveryMiddleware turns a panic into the generic 500 body.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("[%s] panic serving %s %s: %v", requestID(c), c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

var registerOnce sync.Once

// registerJSONFieldNames makes validation errors name fields the way clients
// send them.
func registerJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}
