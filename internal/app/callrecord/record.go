// Package callrecord описывает один перехваченный вызов: что вызвали, с
// какими аргументами, в рамках какого запроса и чем вызов закончился.
package callrecord

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Visibility - уровень доступа операции.
type Visibility string

const (
	Public  Visibility = "public"
	Private Visibility = "private"
)

// VisibilityOf определяет видимость по правилам экспорта Go.
func VisibilityOf(name string) Visibility {
	r, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return Public
	}
	return Private
}

// ParseVisibility переводит значение из конфигурации в Visibility.
func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(s))); v {
	case Public, Private:
		return v, nil
	default:
		return "", fmt.Errorf("unknown visibility %q", s)
	}
}

// Operation определяет вызванную операцию.
type Operation struct {
	Scope      string
	Name       string
	Visibility Visibility
}

// Qualified возвращает "Scope.Name" или только Name при пустом Scope.
func (o Operation) Qualified() string {
	if o.Scope == "" {
		return o.Name
	}
	return o.Scope + "." + o.Name
}

// IsZero сообщает, что операция не задана.
func (o Operation) IsZero() bool {
	return o.Scope == "" && o.Name == ""
}

// OperationFromFunc разбирает имя функции из runtime, например
// "github.com/acme/app/handlers.(*Calc).Add-fm", в Operation со
// Scope "handlers.(*Calc)" и Name "Add".
func OperationFromFunc(fullName string) Operation {
	name := strings.TrimSuffix(fullName, "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	op := Operation{Name: name}
	if i := strings.LastIndex(name, "."); i >= 0 {
		op.Scope, op.Name = name[:i], name[i+1:]
	}
	op.Visibility = VisibilityOf(op.Name)
	return op
}

// Phase - запись сделана до вызова или после.
type Phase string

const (
	Before Phase = "before"
	After  Phase = "after"
)

// OutcomeKind - как закончился вызов.
type OutcomeKind int

const (
	Pending OutcomeKind = iota
	ReturnedKind
	ThrewKind
)

// Outcome - returned(value) либо threw(error).
type Outcome struct {
	Kind  OutcomeKind
	Value any
	Err   error
}

// Returned строит успешный исход.
func Returned(v any) Outcome {
	return Outcome{Kind: ReturnedKind, Value: v}
}

// Threw строит исход с ошибкой.
func Threw(err error) Outcome {
	return Outcome{Kind: ThrewKind, Err: err}
}

// Label - короткая форма для меток метрик.
func (o Outcome) Label() string {
	switch o.Kind {
	case ReturnedKind:
		return "returned"
	case ThrewKind:
		return "threw"
	default:
		return "pending"
	}
}

func (o Outcome) String() string {
	switch o.Kind {
	case ReturnedKind:
		return fmt.Sprintf("returned(%v)", o.Value)
	case ThrewKind:
		return fmt.Sprintf("threw(%v)", o.Err)
	default:
		return "pending"
	}
}

// CallRecord - запись одного вызова, передаваемая журналу. Каждый вызов
// владеет своей записью.
type CallRecord struct {
	ID         string
	Phase      Phase
	Operation  Operation
	Arguments  []any
	Parameters map[string]string
	Caller     string
	Target     string
	TraceID    string
	SpanID     string
	StartedAt  time.Time
	Duration   time.Duration
	Outcome    Outcome
}

// New создаёт запись вызова, начатого в момент now.
func New(id string, op Operation, args []any, now time.Time) *CallRecord {
	return &CallRecord{
		ID:         id,
		Phase:      Before,
		Operation:  op,
		Arguments:  args,
		Parameters: map[string]string{},
		StartedAt:  now,
	}
}

// Finish сохраняет исход и переводит запись в фазу after.
func (r *CallRecord) Finish(outcome Outcome, now time.Time) {
	r.Phase = After
	r.Outcome = outcome
	r.Duration = now.Sub(r.StartedAt)
}
