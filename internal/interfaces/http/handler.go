// @title           Investment Profitability API
// @version         1.0
// @description     Instrument lookup, live basket valuation and historic monthly-purchase profitability
// @BasePath        /api/v1

package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	appinstruments "invest-profitability/internal/application/service/instruments"
	appprofitability "invest-profitability/internal/application/service/profitability"
	domaininstruments "invest-profitability/internal/domain/entity/instruments"
	"invest-profitability/internal/domain/errs"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	instrumentsBasePath   = "/api/v1/instruments"
	pricesBasePath        = "/api/v1/prices"
	basketBasePath        = "/api/v1/basket"
	profitabilityBasePath = "/api/v1/profitability"
)

var (
	errMissingQuery    = errors.New("query param required")
	errMissingFigi     = errors.New("figi query param required")
	errMissingCurrency = errors.New("currency query param required")
	errInvalidPrice    = errors.New("price query param must be a decimal number")
)

type Handler struct {
	router        *gin.Engine
	instruments   *appinstruments.Service
	profitability *appprofitability.Service
	cache         *redis.Client
	cacheTTL      time.Duration
	logger        *logrus.Entry
}

func NewHandler(inst *appinstruments.Service, prof *appprofitability.Service, cache *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	router := gin.New()
	router.Use(gin.Recovery())

	h := &Handler{
		router:        router,
		instruments:   inst,
		profitability: prof,
		cache:         cache,
		cacheTTL:      cacheTTL,
		logger:        logger.WithField("component", "http_handler"),
	}
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	inst := h.router.Group(instrumentsBasePath)
	if h.cache != nil {
		inst.Use(h.cacheMiddleware())
	}
	{
		inst.GET("/search", h.searchInstrument)
	}

	prices := h.router.Group(pricesBasePath)
	if h.cache != nil {
		prices.Use(h.cacheMiddleware())
	}
	{
		prices.GET("/last", h.getLastPrice)
		prices.GET("/convert", h.convertPrice)
	}

	h.router.POST(basketBasePath+"/value", h.basketValue)
	h.router.POST(profitabilityBasePath, h.calculateProfitability)
}

type position struct {
	Query    string `json:"query"`
	Quantity int    `json:"quantity"`
}

type basketRequest struct {
	Positions []position `json:"positions"`
}

type profitabilityRequest struct {
	Years     int        `json:"years"`
	Positions []position `json:"positions"`
}

type instrumentResponse struct {
	domaininstruments.Instrument
	LastPrice      decimal.Decimal `json:"last_price"`
	FormattedPrice string          `json:"formatted_price"`
}

// searchInstrument finds a share or ETF by ticker, FIGI or name
// @Summary      Search instrument
// @Tags         instruments
// @Produce      json
// @Param        query  query     string  true  "Ticker, FIGI or part of the name"
// @Success      200    {object}  instrumentResponse
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /instruments/search [get]
func (h *Handler) searchInstrument(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		writeError(c, http.StatusBadRequest, errMissingQuery)
		return
	}
	ctx := c.Request.Context()

	inst, found, err := h.instruments.FindInstrument(ctx, query)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !found {
		writeError(c, http.StatusNotFound, notFound(query))
		return
	}

	price, err := h.instruments.LastPrice(ctx, inst.Figi)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, instrumentResponse{
		Instrument:     inst,
		LastPrice:      price,
		FormattedPrice: domaininstruments.FormatPrice(price, inst.Currency),
	})
}

// getLastPrice returns the latest traded price of an instrument
// @Summary      Last price
// @Tags         prices
// @Produce      json
// @Param        figi  query     string  true  "Instrument FIGI"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /prices/last [get]
func (h *Handler) getLastPrice(c *gin.Context) {
	figi := c.Query("figi")
	if figi == "" {
		writeError(c, http.StatusBadRequest, errMissingFigi)
		return
	}
	price, err := h.instruments.LastPrice(c.Request.Context(), figi)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"figi": figi, "price": price})
}

// convertPrice converts a price into the base currency at the current rate
// @Summary      Convert price
// @Tags         prices
// @Produce      json
// @Param        price     query     string  true  "Price in the given currency"
// @Param        currency  query     string  true  "Currency code"
// @Success      200       {object}  map[string]string
// @Failure      400       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /prices/convert [get]
func (h *Handler) convertPrice(c *gin.Context) {
	price, err := decimal.NewFromString(c.Query("price"))
	if err != nil {
		writeError(c, http.StatusBadRequest, errInvalidPrice)
		return
	}
	currency := c.Query("currency")
	if currency == "" {
		writeError(c, http.StatusBadRequest, errMissingCurrency)
		return
	}

	converted := price
	if !strings.EqualFold(currency, h.instruments.BaseCurrency()) {
		converted, err = h.instruments.ConvertToBase(c.Request.Context(), price, currency)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"price": price, "currency": currency, "converted": converted})
}

// basketValue prices a basket at last prices
// @Summary      Basket value
// @Tags         basket
// @Accept       json
// @Produce      json
// @Param        basket  body      basketRequest  true  "Positions"
// @Success      200     {object}  map[string]string
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /basket/value [post]
func (h *Handler) basketValue(c *gin.Context) {
	var payload basketRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	basket, err := h.resolveBasket(c, payload.Positions)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	value, err := h.instruments.BasketValue(c.Request.Context(), basket)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	base := h.instruments.BaseCurrency()
	c.JSON(http.StatusOK, gin.H{
		"value":     value,
		"currency":  base,
		"formatted": domaininstruments.FormatPrice(value, base),
	})
}

// calculateProfitability simulates monthly purchases of a basket
// @Summary      Historic profitability
// @Tags         profitability
// @Accept       json
// @Produce      json
// @Param        request  body      profitabilityRequest  true  "Years and positions"
// @Success      200      {object}  profitability.Summary
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      422      {object}  map[string]string
// @Router       /profitability [post]
func (h *Handler) calculateProfitability(c *gin.Context) {
	var payload profitabilityRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if _, err := appprofitability.PurchaseDates(payload.Years); err != nil {
		h.writeServiceError(c, err)
		return
	}
	basket, err := h.resolveBasket(c, payload.Positions)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	summary, err := h.profitability.Calculate(c.Request.Context(), basket, payload.Years)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// resolveBasket checks every quantity, then looks every position up;
// repeated instruments add up.
func (h *Handler) resolveBasket(c *gin.Context, positions []position) (domaininstruments.Basket, error) {
	for _, p := range positions {
		if p.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for %q must be positive, got %d", errs.ErrInvalidArgument, p.Query, p.Quantity)
		}
	}
	basket := make(domaininstruments.Basket, len(positions))
	for _, p := range positions {
		inst, found, err := h.instruments.FindInstrument(c.Request.Context(), p.Query)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, notFound(p.Query)
		}
		basket[inst] += p.Quantity
	}
	return basket, nil
}

func notFound(query string) error {
	return fmt.Errorf("%w: Instrument %s was not found", errs.ErrNotFound, query)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrNoTradingData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrExternalData):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	writeError(c, status, err)
}

func writeError(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// cacheMiddleware caches GET responses in Redis.
func (h *Handler) cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := h.cacheKey(c)
		ctx := c.Request.Context()

		if cached, err := h.cache.Get(ctx, key).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			c.Abort()
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: c.Writer,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = recorder

		c.Next()

		if recorder.status >= 200 && recorder.status < 300 && recorder.body.Len() > 0 {
			if err := h.cache.Set(ctx, key, recorder.body.Bytes(), h.cacheTTL).Err(); err != nil {
				h.logger.WithError(err).WithField("key", key).Warn("response cache write failed")
			}
		}
	}
}

type responseRecorder struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if len(data) > 0 {
		r.body.Write(data)
	}
	return r.ResponseWriter.Write(data)
}

func (h *Handler) cacheKey(c *gin.Context) string {
	return fmt.Sprintf("cache:%s:%s?%s", c.Request.Method, c.FullPath(), c.Request.URL.RawQuery)
}
