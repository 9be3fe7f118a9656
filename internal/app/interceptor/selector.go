package interceptor

import (
	"fmt"

	"github.com/aseptimu/call-logger/internal/app/callrecord"
	"github.com/gobwas/glob"
)

// Selector решает, какие операции попадают в журнал. Шаблоны - glob по
// Operation.Qualified() с разделителем ".": "*" совпадает с одним сегментом,
// "**" с любым их числом.
type Selector struct {
	patterns     []glob.Glob
	visibilities map[callrecord.Visibility]struct{}
}

// NewSelector компилирует шаблоны. Пустой список видимостей пропускает любую
// видимость, пустой список шаблонов - любую операцию.
func NewSelector(patterns []string, visibilities []callrecord.Visibility) (*Selector, error) {
	s := &Selector{visibilities: make(map[callrecord.Visibility]struct{}, len(visibilities))}
	for _, p := range patterns {
		g, err := glob.Compile(p, '.')
		if err != nil {
			return nil, fmt.Errorf("compile selector pattern %q: %w", p, err)
		}
		s.patterns = append(s.patterns, g)
	}
	for _, v := range visibilities {
		s.visibilities[v] = struct{}{}
	}
	return s, nil
}

// DefaultSelector отбирает все публичные операции.
func DefaultSelector() *Selector {
	s, _ := NewSelector([]string{"**"}, []callrecord.Visibility{callrecord.Public})
	return s
}

// Match сообщает, нужно ли записывать op. nil Selector отбирает всё.
func (s *Selector) Match(op callrecord.Operation) bool {
	if s == nil {
		return true
	}
	if len(s.visibilities) > 0 {
		if _, ok := s.visibilities[op.Visibility]; !ok {
			return false
		}
	}
	if len(s.patterns) == 0 {
		return true
	}
	name := op.Qualified()
	for _, g := range s.patterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}
