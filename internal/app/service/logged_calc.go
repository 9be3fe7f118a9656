package service

import (
	"context"

	"github.com/aseptimu/call-logger/internal/app/callrecord"
	"github.com/aseptimu/call-logger/internal/app/interceptor"
)

const calculatorScope = "service.Calculator"

// LoggedCalculator оборачивает Calculator и логирует каждый вызов через Interceptor.
type LoggedCalculator struct {
	next Calculator
	ic   *interceptor.Interceptor
}

// NewLoggedCalculator создаёт декоратор над next.
func NewLoggedCalculator(next Calculator, ic *interceptor.Interceptor) *LoggedCalculator {
	return &LoggedCalculator{next: next, ic: ic}
}

func (c *LoggedCalculator) Add(ctx context.Context, a, b int) (int, error) {
	return interceptor.Invoke(ctx, c.ic, operation("Add"), func(ctx context.Context) (int, error) {
		return c.next.Add(ctx, a, b)
	}, a, b)
}

func (c *LoggedCalculator) Divide(ctx context.Context, a, b int) (int, error) {
	return interceptor.Invoke(ctx, c.ic, operation("Divide"), func(ctx context.Context) (int, error) {
		return c.next.Divide(ctx, a, b)
	}, a, b)
}

func operation(name string) callrecord.Operation {
	return callrecord.Operation{
		Scope:      calculatorScope,
		Name:       name,
		Visibility: callrecord.VisibilityOf(name),
	}
}
