package system

import (
	"os/exec"
	"strings"
	"sync"
)

var (
	encodersOnce sync.Once
	encodersList string

	filtersOnce sync.Once
	filtersList string
)

func ffmpegList(flag string) string {
	out, err := exec.Command("ffmpeg", "-hide_banner", flag).CombinedOutput()
	if err != nil {
		return ""
	}
	return string(out)
}

// GetBestH264Encoder picks the first hardware encoder ffmpeg offers,
// falling back to libx264
func GetBestH264Encoder() string {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)
	encodersOnce.Do(func() { encodersList = ffmpegList("-encoders") })
	return pickEncoder(encodersList)
}

func pickEncoder(list string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(list, name) {
			return name
		}
	}
	return "libx264"
}

// DefaultQuality returns a sane quality value per encoder
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // Битрейт Q*100 кбит/с
	case "h264_nvenc":
		return 28 // Эквивалент CRF для NVENC
	default:
		return 23 // Стандартный CRF для x264
	}
}

// CheckFilterSupport reports whether the local ffmpeg build has the filter
func CheckFilterSupport(name string) bool {
	filtersOnce.Do(func() { filtersList = ffmpegList("-filters") })
	return hasFilter(filtersList, name)
}

func hasFilter(list, name string) bool {
	for _, line := range strings.Split(list, "\n") {
		fields := strings.Fields(line)
		// " T.. drawtext          V->V       Draw text on top of video frames ..."
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}
