package timing

import (
	"fmt"
	"math"
)

// Position anchors an overlay on the frame.
type Position string

const (
	PositionCenter Position = "center"
	PositionLower  Position = "lower"
	PositionBottom Position = "bottom"
)

// Overlay is one text element with its visible interval. Built once from a
// Plan and translated into renderer syntax by a single adapter, so timing
// correctness and rendering syntax stay independently testable.
type Overlay struct {
	Text     string
	FontSize int
	Color    string
	Position Position
	Start    float64
	End      float64
}

// BuildOverlays lays out the full overlay set for one video:
// the question and CTA while narration and countdown run, one number per
// countdown second, and the answer during the reveal.
func BuildOverlays(question, cta, answer string, p Plan) []Overlay {
	overlays := []Overlay{
		{
			Text:     question,
			FontSize: 64,
			Color:    "white",
			Position: PositionCenter,
			Start:    0,
			End:      p.RevealStartOffset,
		},
		{
			Text:     cta,
			FontSize: 40,
			Color:    "#F8F8F8",
			Position: PositionLower,
			Start:    0,
			End:      p.RevealStartOffset,
		},
	}

	// One overlay per whole countdown second. Each number is visible for
	// one second; the display value at any instant matches CountdownDisplay.
	for i := 0; float64(i) < p.CountdownDuration; i++ {
		start := p.CountdownStartOffset + float64(i)
		end := start + 1
		if end > p.RevealStartOffset {
			end = p.RevealStartOffset
		}
		overlays = append(overlays, Overlay{
			Text:     fmt.Sprintf("%d", int(math.Ceil(p.CountdownDuration))-i),
			FontSize: 80,
			Color:    "#22D3EE",
			Position: PositionBottom,
			Start:    start,
			End:      end,
		})
	}

	overlays = append(overlays, Overlay{
		Text:     answer,
		FontSize: 72,
		Color:    "#FDE047",
		Position: PositionCenter,
		Start:    p.RevealStartOffset,
		End:      p.RevealEndOffset,
	})
	return overlays
}
