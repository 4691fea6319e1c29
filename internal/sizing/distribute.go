package sizing

import (
	"math"
	"sort"
)

// Distribute reparte total entre os buckets proporcionalmente aos pesos.
//
// A soma do resultado é exatamente total. Cada parcela difere da parcela exata
// (total*peso/soma) em menos de 1. Empates no resto fracionário são resolvidos
// pela ordem original dos buckets. Se a soma dos pesos for zero, todas as
// parcelas são zero.
func Distribute(total int, weights []float64) []int {
	shares := make([]int, len(weights))

	totalWeight := 0.0
	for _, w := range weights {
		totalWeight += w
	}
	if totalWeight <= 0 || total <= 0 {
		return shares
	}

	type remainder struct {
		index    int
		fraction float64
	}
	fractions := make([]remainder, len(weights))

	allocated := 0
	for i, w := range weights {
		exact := w / totalWeight * float64(total)
		floor := math.Floor(exact)
		shares[i] = int(floor)
		allocated += shares[i]
		fractions[i] = remainder{index: i, fraction: exact - floor}
	}

	sort.SliceStable(fractions, func(a, b int) bool {
		return fractions[a].fraction > fractions[b].fraction
	})

	left := total - allocated
	for i := 0; i < left && i < len(fractions); i++ {
		shares[fractions[i].index]++
	}

	return shares
}

// DistributeCells é Distribute com pesos inteiros (células por frente)
func DistributeCells(total int, cells []int) []int {
	weights := make([]float64, len(cells))
	for i, c := range cells {
		weights[i] = float64(c)
	}
	return Distribute(total, weights)
}
