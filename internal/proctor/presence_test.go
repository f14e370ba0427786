package proctor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Thresholds(t *testing.T) {
	tests := []struct {
		name   string
		ratio  float64
		expect Verdict
	}{
		{"empty frame", 0.0, VerdictNone},
		{"just below minimum", 0.01, VerdictNone},
		{"lower boundary counts as one", 0.02, VerdictOne},
		{"quarter skin", 0.25, VerdictOne},
		{"just below upper boundary", 0.49, VerdictOne},
		{"upper boundary counts as multiple", 0.5, VerdictMultiple},
		{"dense skin", 0.9, VerdictMultiple},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Classify(frameWithSkinRatio(tt.ratio)))
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	frame := frameWithSkinRatio(0.25)

	first := Classify(frame)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(frame))
	}
}

func TestClassify_InvalidFrame(t *testing.T) {
	// Dimension/buffer mismatch cannot be classified.
	assert.Equal(t, VerdictNone, Classify(Frame{Width: 10, Height: 10, Pixels: []byte{1, 2, 3}}))
	assert.Equal(t, VerdictNone, Classify(Frame{}))
}

func TestIsSkinTone(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b byte
		skin    bool
	}{
		{"warm skin tone", 150, 80, 40, true},
		{"darker skin tone", 110, 60, 35, true},
		{"black", 0, 0, 0, false},
		{"white", 255, 255, 255, false},
		{"pure blue", 0, 0, 255, false},
		{"pure green", 0, 255, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.skin, isSkinTone(tt.r, tt.g, tt.b))
		})
	}
}
