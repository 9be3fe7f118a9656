// Package middleware содержит Gin-middleware, через которые HTTP-вызовы
// попадают в журнал вызовов.
package middleware

import (
	"context"

	"github.com/aseptimu/call-logger/internal/app/callrecord"
	"github.com/aseptimu/call-logger/internal/app/interceptor"
	"github.com/aseptimu/call-logger/internal/app/reqctx"
	"github.com/gin-gonic/gin"
)

type (
	// responseData - то, что вернул обработчик: статус и размер тела ответа.
	responseData struct {
		Status int `json:"status"`
		Size   int `json:"size"`
	}

	loggingResponseWriter struct {
		gin.ResponseWriter
		responseData *responseData
	}
)

func (l *loggingResponseWriter) Write(b []byte) (int, error) {
	size, err := l.ResponseWriter.Write(b)
	l.responseData.Size += size
	return size, err
}

func (l *loggingResponseWriter) WriteString(s string) (int, error) {
	size, err := l.ResponseWriter.WriteString(s)
	l.responseData.Size += size
	return size, err
}

// CallLogger возвращает Gin-middleware, который:
//  1. собирает параметры запроса, идентификатор вызывающего и имя обработчика
//     в reqctx.Request и кладёт его в контекст запроса;
//  2. выполняет остальную цепочку обработчиков внутри ic.Call;
//  3. считает исходом returned({status size}) либо threw(err), если обработчик
//     добавил ошибку через c.Error.
//
// Операция берётся из имени обработчика. Анонимная функция получает имя
// вида funcN и считается приватной, поэтому селектор по умолчанию её не
// записывает.
func CallLogger(ic *interceptor.Interceptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := reqctx.FromHTTP(c.Request)
		req.Caller = c.GetString(CallerKey)
		req.Target = c.ClientIP()
		req.Operation = callrecord.OperationFromFunc(c.HandlerName())

		ctx := reqctx.NewContext(c.Request.Context(), req)
		c.Request = c.Request.WithContext(ctx)

		data := &responseData{}
		lw := &loggingResponseWriter{ResponseWriter: c.Writer, responseData: data}
		c.Writer = lw

		args := make([]any, 0, len(c.Params))
		for _, p := range c.Params {
			args = append(args, p.Value)
		}

		_, _ = ic.Call(ctx, req.Operation, args, func(context.Context) (any, error) {
			c.Next()
			data.Status = lw.Status()
			if last := c.Errors.Last(); last != nil {
				return *data, last.Err
			}
			return *data, nil
		})
	}
}
