package config

// Config is the resolved command line for one render
type Config struct {
	InputPath     string // Scene file
	OutputVideo   string
	FramesDir     string // Write PNG frames here instead of encoding
	TotalDuration float64
	Width         int
	Height        int
	FPS           int
	Workers       int
	AudioPath     string
	AudioSync     bool
	Preset        string
	VideoEncoder  string
	Quality       int
	Scorer        string // Overlay placement analyzer variant
	ShowStats     bool
	Debug         bool
	BuildVersion  string
}

// SegmentParams describe the rendered stream handed to ffmpeg filters
type SegmentParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	FadeIn        float64
	FadeOut       float64
	Tint          string
	Debug         bool
	Filter        string // Filled from Effect.GenerateFilter before encoding
}
