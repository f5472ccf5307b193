package export

import "math"

// EstimateBytes é a heurística de tamanho final: largura × altura × bytes por pixel × frames.
func EstimateBytes(width, height, frames int, bytesPerPixel float64) float64 {
	return float64(width) * float64(height) * bytesPerPixel * float64(frames)
}

// EstimateScaledSize decide se os frames cabem no orçamento de bytes.
// Acima do orçamento, devolve as dimensões escaladas por sqrt(orçamento/estimado),
// preservando a proporção.
func EstimateScaledSize(width, height, frames int, bytesPerPixel float64, budget int64) (int, int, bool) {
	if budget <= 0 || width <= 0 || height <= 0 {
		return width, height, false
	}
	estimated := EstimateBytes(width, height, frames, bytesPerPixel)
	if estimated <= float64(budget) {
		return width, height, false
	}

	scale := math.Sqrt(float64(budget) / estimated)
	nw := max(1, int(float64(width)*scale))
	nh := max(1, int(float64(height)*scale))
	return nw, nh, true
}
