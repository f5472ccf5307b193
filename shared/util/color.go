package util

import "image/color"

// RGB é uma cor opaca de 8 bits por canal.
type RGB struct {
	R, G, B uint8
}

// NeutralGray é a cor usada quando nenhuma outra informação de cor existe.
var NeutralGray = RGB{200, 200, 200}

// Scale multiplica cada canal por f, truncando e saturando em 255.
func (c RGB) Scale(f float64) RGB {
	return RGB{scaleChannel(c.R, f), scaleChannel(c.G, f), scaleChannel(c.B, f)}
}

func scaleChannel(v uint8, f float64) uint8 {
	x := float64(v) * f
	if x >= 255 {
		return 255
	}
	if x <= 0 {
		return 0
	}
	return uint8(x)
}

// NRGBA converte para color.NRGBA opaca.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
