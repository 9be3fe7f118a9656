package http

import (
	"github.com/aseptimu/call-logger/internal/app/handlers/http/calchandlers"
	"github.com/aseptimu/call-logger/internal/app/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers interface {
	RegisterRoutes(r *gin.Engine)
}

type handlersImpl struct {
	calc     service.Calculator
	gatherer prometheus.Gatherer
	logger   *zap.SugaredLogger
}

func New(calc service.Calculator, gatherer prometheus.Gatherer, logger *zap.SugaredLogger) Handlers {
	return &handlersImpl{
		calc:     calc,
		gatherer: gatherer,
		logger:   logger,
	}
}

func (h *handlersImpl) RegisterRoutes(r *gin.Engine) {
	calc := calchandlers.NewCalcHandler(h.calc, h.logger)
	r.GET("/api/add", calc.Add)
	r.GET("/api/divide", calc.Divide)
	if h.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
}
