// Package numeric concentra a fronteira numérica da aplicação: conversão de texto
// digitado pelo usuário em números não negativos e formatação segura para exibição.
package numeric

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseNonNegative converte texto em número real não negativo.
// Texto vazio, inválido ou não finito vira 0; negativos são limitados a 0.
func ParseNonNegative(input string) float64 {
	return Clamp(parseLenient(input))
}

// ParseNonNegativeInt converte texto em inteiro não negativo (parte inteira)
func ParseNonNegativeInt(input string) int {
	return ClampInt(ParseNonNegative(input))
}

// Clamp limita o valor ao intervalo válido (>= 0), tratando NaN e infinito como 0
func Clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ClampInt aplica Clamp e descarta a parte fracionária
func ClampInt(v float64) int {
	v = Clamp(v)
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(v))
}

// ParseLenient lê o valor numérico de um campo livre (ex.: total HH "6480" ou "N/A").
// Não numérico vira 0, sem limitar negativos.
func ParseLenient(input string) float64 {
	v := parseLenient(input)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseLenient(input string) float64 {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0
	}
	// aceita vírgula decimal ("3,7") quando não há ponto
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Value é um número vindo da borda (JSON). Aceita número, texto numérico ou null,
// e já chega ao domínio limitado a >= 0.
type Value float64

// Float64 retorna o valor como float64
func (v Value) Float64() float64 {
	return float64(v)
}

// Int retorna a parte inteira do valor
func (v Value) Int() int {
	return ClampInt(float64(v))
}

// UnmarshalJSON implementa json.Unmarshaler com fallback para 0
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("valor numérico: %w", err)
		}
		*v = Value(ParseNonNegative(s))
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		// booleanos, objetos etc. também caem no fallback
		*v = 0
		return nil
	}
	*v = Value(Clamp(f))
	return nil
}
