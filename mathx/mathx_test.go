package mathx_test

import (
	"testing"

	"github.com/sw965/rockets/mathx"
)

func TestConvertScale(t *testing.T) {
	tests := []struct {
		name                      string
		x, xMin, xMax, yMin, yMax float32
		want                      float32
	}{
		{name: "正常_最大値", x: 8, xMin: 0, xMax: 8, yMin: 0, yMax: 1, want: 1},
		{name: "正常_中間", x: 4, xMin: 0, xMax: 8, yMin: 0, yMax: 1, want: 0.5},
		{name: "正常_範囲変換", x: 0, xMin: -1, xMax: 1, yMin: 0, yMax: 100, want: 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mathx.ConvertScale(tc.x, tc.xMin, tc.xMax, tc.yMin, tc.yMax)
			if got != tc.want {
				t.Errorf("want: %v, got: %v", tc.want, got)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		x    float32
		want float32
	}{
		{name: "正常_範囲内", x: 0.3, want: 0.3},
		{name: "準正常_下限未満", x: -2, want: 0},
		{name: "準正常_上限超過", x: 1.5, want: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mathx.Clamp(tc.x, 0, 1)
			if got != tc.want {
				t.Errorf("want: %v, got: %v", tc.want, got)
			}
		})
	}
}

func TestNorm2(t *testing.T) {
	tests := []struct {
		name string
		x, y float32
		want float32
	}{
		{name: "正常_3-4-5", x: 3, y: 4, want: 5},
		{name: "正常_負の成分", x: -6, y: 8, want: 10},
		{name: "正常_ゼロ", x: 0, y: 0, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mathx.Norm2(tc.x, tc.y)
			if diff := mathx.Abs(got - tc.want); diff > 1e-5 {
				t.Errorf("want: %v, got: %v", tc.want, got)
			}
		})
	}
}
