package entity

import "fmt"

// VideoMetadata is derived once from the transcoder probe and never mutated
// afterwards. The classification helpers feed the priority and time-estimate
// heuristics only.
type VideoMetadata struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Duration  float64 `json:"duration"`
	FrameRate float64 `json:"frame_rate"`
	Bitrate   int     `json:"bitrate"`
	Codec     string  `json:"codec"`
	Format    string  `json:"format"`
}

func (m VideoMetadata) Resolution() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

func (m VideoMetadata) AspectRatio() string {
	d := gcd(m.Width, m.Height)
	if d == 0 {
		return "0:0"
	}
	return fmt.Sprintf("%d:%d", m.Width/d, m.Height/d)
}

func (m VideoMetadata) IsHD() bool {
	return m.Width >= 1280 && m.Height >= 720
}

func (m VideoMetadata) IsFullHD() bool {
	return m.Width >= 1920 && m.Height >= 1080
}

func (m VideoMetadata) Is4K() bool {
	return m.Width >= 3840 && m.Height >= 2160
}

func (m VideoMetadata) SizeCategory() string {
	switch {
	case m.Is4K():
		return "4K"
	case m.IsFullHD():
		return "Full HD"
	case m.IsHD():
		return "HD"
	default:
		return "SD"
	}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
