package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/marionette"
)

var (
	blendMultiply = ebiten.Blend{
		BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
		BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
		BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
		BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	}
	blendScreen = ebiten.Blend{
		BlendFactorSourceRGB:        ebiten.BlendFactorOne,
		BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
		BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
		BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	}
)

// EbitenBlend returns the premultiplied-alpha ebiten.Blend for a slot blend
// mode. Unknown modes draw source-over.
func EbitenBlend(b marionette.BlendMode) ebiten.Blend {
	switch b {
	case marionette.BlendAdditive:
		return ebiten.BlendLighter
	case marionette.BlendMultiply:
		return blendMultiply
	case marionette.BlendScreen:
		return blendScreen
	default:
		return ebiten.BlendSourceOver
	}
}
