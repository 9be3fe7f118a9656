// Package calchandlers содержит HTTP-хендлеры арифметических операций.
package calchandlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aseptimu/call-logger/internal/app/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CalcHandler обрабатывает /api/add и /api/divide.
type CalcHandler struct {
	calc   service.Calculator
	logger *zap.SugaredLogger
}

// NewCalcHandler создаёт новый CalcHandler.
func NewCalcHandler(calc service.Calculator, logger *zap.SugaredLogger) *CalcHandler {
	return &CalcHandler{calc: calc, logger: logger}
}

type result struct {
	Result int `json:"result"`
}

// Add обрабатывает GET /api/add?a=&b=.
func (h *CalcHandler) Add(c *gin.Context) {
	a, b, ok := h.operands(c)
	if !ok {
		return
	}

	sum, err := h.calc.Add(c.Request.Context(), a, b)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, result{Result: sum})
}

// Divide обрабатывает GET /api/divide?a=&b=.
// При делении на ноль возвращает 422 Unprocessable Entity.
func (h *CalcHandler) Divide(c *gin.Context) {
	a, b, ok := h.operands(c)
	if !ok {
		return
	}

	quotient, err := h.calc.Divide(c.Request.Context(), a, b)
	switch {
	case errors.Is(err, service.ErrDivideByZero):
		h.fail(c, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, result{Result: quotient})
}

func (h *CalcHandler) operands(c *gin.Context) (int, int, bool) {
	a, errA := strconv.Atoi(c.Query("a"))
	b, errB := strconv.Atoi(c.Query("b"))
	if errA != nil || errB != nil {
		h.fail(c, http.StatusBadRequest, service.ErrBadOperand)
		return 0, 0, false
	}
	return a, b, true
}

// fail прикрепляет err к контексту, чтобы CallLogger записал исход threw(err).
func (h *CalcHandler) fail(c *gin.Context, status int, err error) {
	h.logger.Debugw("Request failed", "path", c.FullPath(), "status", status, "error", err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
