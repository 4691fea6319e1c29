package numeric

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Safe troca valores não finitos por 0, para saídas numéricas (planilhas, JSON)
func Safe(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return v
}

// Format formata com número fixo de casas decimais. Valores não finitos viram "0".
func Format(v float64, digits int) string {
	if !finite(v) {
		return "0"
	}
	if digits < 0 {
		digits = 0
	}
	s := strconv.FormatFloat(v, 'f', digits, 64)
	if s == "-0" {
		return "0"
	}
	return s
}

// FormatRounded arredonda para o inteiro mais próximo, sem casas decimais
func FormatRounded(v float64) string {
	if !finite(v) {
		return "0"
	}
	return Format(math.Round(v), 0)
}

// FormatLocale formata no padrão pt-BR (ex.: 6480 -> "6.480"), até três casas decimais
func FormatLocale(v float64) string {
	if !finite(v) {
		return "0"
	}
	return ptBR.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// FormatPercent formata value/total*100 com uma casa decimal. Total zero vira "0%".
func FormatPercent(value, total float64) string {
	if total == 0 || !finite(total) {
		return "0%"
	}
	return Format(value/total*100, 1) + "%"
}
