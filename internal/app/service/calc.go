// Package service содержит операции, на которых демонстрируется логирование вызовов.
package service

import "context"

// Calculator описывает арифметические операции сервиса.
type Calculator interface {
	Add(ctx context.Context, a, b int) (int, error)
	Divide(ctx context.Context, a, b int) (int, error)
}

// CalcService реализует Calculator без побочных эффектов.
type CalcService struct{}

// NewCalcService создаёт новый CalcService.
func NewCalcService() *CalcService {
	return &CalcService{}
}

// Add возвращает сумму a и b.
func (s *CalcService) Add(_ context.Context, a, b int) (int, error) {
	return a + b, nil
}

// Divide возвращает целую часть от деления a на b.
// При b == 0 возвращает ErrDivideByZero.
func (s *CalcService) Divide(_ context.Context, a, b int) (int, error) {
	if b == 0 {
		return 0, ErrDivideByZero
	}
	return a / b, nil
}
