// pkg/gfx/mip.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package gfx

import (
	"image"

	"github.com/chenfeng345/cocos2d-x-lite/pkg/math"

	"github.com/nfnt/resize"
)

// MipPyramid returns a full mip chain for the given image: the image
// itself followed by successively half-resolution levels down to 1x1,
// suitable for handing to Device.CreateTextureFromImages.
func MipPyramid(img image.Image) []image.Image {
	pyramid := []image.Image{img}

	nx, ny := img.Bounds().Dx(), img.Bounds().Dy()
	for nx != 1 || ny != 1 {
		nx, ny = math.Max(nx/2, 1), math.Max(ny/2, 1)
		prev := pyramid[len(pyramid)-1]
		pyramid = append(pyramid, resize.Resize(uint(nx), uint(ny), prev, resize.MitchellNetravali))
	}

	return pyramid
}
