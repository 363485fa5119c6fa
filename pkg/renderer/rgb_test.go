// pkg/renderer/rgb_test.go
// Copyright(c) 2024-2026 cocos2d-x-lite contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"testing"
)

func TestRGBABytes(t *testing.T) {
	for _, tc := range []struct {
		c    RGBA
		want [4]uint8
	}{
		{RGBA{R: 1, G: 1, B: 1, A: 1}, [4]uint8{255, 255, 255, 255}},
		{RGBA{}, [4]uint8{0, 0, 0, 0}},
		{RGBA{R: 1, B: 0.5, A: 1}, [4]uint8{255, 0, 128, 255}},
		// Out of range channels clamp rather than wrap.
		{RGBA{R: 1.5, G: -0.25, A: 2}, [4]uint8{255, 0, 0, 255}},
	} {
		if got := tc.c.Bytes(); got != tc.want {
			t.Errorf("%+v.Bytes(): got %v, expected %v", tc.c, got, tc.want)
		}
	}
}

func TestRGBFromHex(t *testing.T) {
	c := RGBFromHex(0x4080ff)
	if !near(c.R, 64.0/255) || !near(c.G, 128.0/255) || !near(c.B, 1) {
		t.Errorf("RGBFromHex: got %+v", c)
	}
	if !c.Equals(RGBFromUInt8(64, 128, 255)) {
		t.Errorf("hex and uint8 conversions disagree: %+v vs %+v", c, RGBFromUInt8(64, 128, 255))
	}
}

func TestLerpRGB(t *testing.T) {
	black := RGB{}
	white := RGB{R: 1, G: 1, B: 1}
	if got := LerpRGB(0.5, black, white); !near(got.R, 0.5) || !near(got.G, 0.5) || !near(got.B, 0.5) {
		t.Errorf("LerpRGB midpoint: got %+v", got)
	}
	if got := LerpRGB(0, black, white); !got.Equals(black) {
		t.Errorf("LerpRGB at 0: got %+v, expected black", got)
	}
	if got := LerpRGB(1, black, white); !got.Equals(white) {
		t.Errorf("LerpRGB at 1: got %+v, expected white", got)
	}
}

func TestRGBScale(t *testing.T) {
	c := RGB{R: 1, G: 0.5, B: 0.25}.Scale(0.5)
	if !near(c.R, 0.5) || !near(c.G, 0.25) || !near(c.B, 0.125) {
		t.Errorf("Scale: got %+v", c)
	}

	rgba := RGB{R: 1}.RGBA(0.5)
	if rgba != (RGBA{R: 1, A: 0.5}) {
		t.Errorf("RGBA: got %+v, expected alpha 0.5", rgba)
	}
}
