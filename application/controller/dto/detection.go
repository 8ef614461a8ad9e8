package dto

import (
	"errors"
	"time"

	"facegate.io/application/utils"
	"facegate.io/infrastructure/biometric/types"
)

type PointDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type BoundingBoxDTO struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// PushFrameDTO is one detector output frame pushed by the capture client.
// Either a dense landmark mesh or a base64 image with a face box must be
// present.
type PushFrameDTO struct {
	Landmarks []PointDTO      `json:"landmarks" validate:"omitempty,max=1000"`
	Box       *BoundingBoxDTO `json:"box"`
	Image     *string         `json:"image"`
	Depth     *float64        `json:"depth"`
}

var ErrUnusableFrame = errors.New("frame needs either landmarks or an image with a face box")

func (payload *PushFrameDTO) ToFrame() (*types.Frame, error) {
	frame := &types.Frame{
		Timestamp: time.Now(),
		Depth:     payload.Depth,
	}
	if payload.Box != nil {
		frame.Box = &types.BoundingBox{
			X:      payload.Box.X,
			Y:      payload.Box.Y,
			Width:  payload.Box.Width,
			Height: payload.Box.Height,
		}
	}
	for _, point := range payload.Landmarks {
		frame.Landmarks = append(frame.Landmarks, types.Point{X: point.X, Y: point.Y, Z: point.Z})
	}
	if payload.Image != nil {
		img, err := utils.DecodeBase64Image(*payload.Image)
		if err != nil {
			return nil, err
		}
		frame.Image = img
	}
	if len(frame.Landmarks) == 0 && (frame.Image == nil || frame.Box == nil) {
		return nil, ErrUnusableFrame
	}
	return frame, nil
}

// StartSessionDTO carries optional per-session overrides of the loop
// defaults.
type StartSessionDTO struct {
	DebounceTicks  *int `json:"debounceTicks" validate:"omitempty,gte=1,lte=10"`
	TickIntervalMS *int `json:"tickIntervalMS" validate:"omitempty,gte=100,lte=5000"`
}
