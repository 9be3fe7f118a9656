// Package main реализует команду «staticlint», основанную на multichecker,
// для статического анализа кода calllogd. Инструмент агрегирует анализаторы
// golang.org/x/tools и honnef.co/go/tools и выполняет их через
// golang.org/x/tools/go/analysis/multichecker.
//
// Использование:
//
//	go install ./cmd/staticlint
//	staticlint ./...
//
// Включённые анализаторы:
//   - printf, shadow, structtag, nilness, unusedresult из golang.org/x/tools;
//   - SA* правила staticcheck;
//   - S1* правила пакета simple;
//   - exitmain: собственный анализатор, запрещающий os.Exit и runtime.Goexit
//     в функции main() пакета main. Оба вызова пропускают отложенные функции,
//     и журнал вызовов не успевает сбросить буферы.
package main

import (
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
)

func main() {
	multichecker.Main(analyzers()...)
}

func analyzers() []*analysis.Analyzer {
	list := []*analysis.Analyzer{
		printf.Analyzer,
		shadow.Analyzer,
		structtag.Analyzer,
		nilness.Analyzer,
		unusedresult.Analyzer,
		ExitMainAnalyzer,
	}

	for _, la := range staticcheck.Analyzers {
		if strings.HasPrefix(la.Analyzer.Name, "SA") {
			list = append(list, la.Analyzer)
		}
	}
	for _, la := range simple.Analyzers {
		if strings.HasPrefix(la.Analyzer.Name, "S1") {
			list = append(list, la.Analyzer)
		}
	}
	return list
}
