package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/scroll2video/internal/config"
	"github.com/ivlev/scroll2video/internal/director"
	"github.com/ivlev/scroll2video/internal/effects"
	"github.com/ivlev/scroll2video/internal/engine"
	"github.com/ivlev/scroll2video/internal/scene"
	"github.com/ivlev/scroll2video/internal/system"
	"github.com/ivlev/scroll2video/internal/video"
)

// Set with -ldflags "-X main.buildVersion=..."
var buildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/audio", director.ScenesDir, "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	inputPtr := flag.String("input", "", "Путь к сцене YAML (по умолчанию: самый свежий файл в input/scenes/)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	durationPtr := flag.Float64("duration", 0, "Общая длительность видео (если 0, берется из таймлайна сцены)")
	widthPtr := flag.Int("width", 0, "Ширина (0 - из сцены)")
	heightPtr := flag.Int("height", 0, "Высота (0 - из сцены)")
	fpsPtr := flag.Int("fps", 0, "FPS (0 - из сцены)")
	workersPtr := flag.Int("workers", 0, "Потоки рендера (0 - по числу ядер и свободной памяти)")
	audioPtr := flag.String("audio", "", "Путь к аудио (по умолчанию: самый свежий файл в input/audio/)")
	audioSyncPtr := flag.Bool("audio-sync", true, "Синхронизировать длительность видео с аудио")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности и дописать benchmark.log")
	framesDirPtr := flag.String("frames-dir", "", "Сохранить кадры PNG в папку вместо кодирования видео")
	scorerPtr := flag.String("scorer", "edges", "Анализатор размещения оверлеев с anchor: auto (edges, blocks)")
	debugPtr := flag.Bool("debug", false, "Таймкод поверх видео и журнал событий оверлеев")
	generatePtr := flag.Bool("generate-scene", false, "Сгенерировать сцену вместо рендера")
	overlaysPtr := flag.String("overlays", "", "Заголовки оверлеев для -generate-scene через |")
	backdropPtr := flag.String("backdrop", "", "PDF или изображение фона для -generate-scene")
	sceneOutPtr := flag.String("scene-output", "", "Куда сохранить сгенерированную сцену")

	flag.Parse()

	width, height := *widthPtr, *heightPtr
	switch *presetPtr {
	case "16:9":
		width, height = 1280, 720
	case "9:16":
		width, height = 720, 1280
	case "4:5":
		width, height = 1080, 1350
	case "":
	default:
		log.Fatalf("[-] Неизвестный пресет: %s", *presetPtr)
	}

	if *generatePtr {
		if err := generateScene(width, height, *fpsPtr, *durationPtr, *overlaysPtr, *backdropPtr, *sceneOutPtr); err != nil {
			log.Fatalf("[-] Ошибка генерации сцены: %v", err)
		}
		return
	}

	inputPath := *inputPtr
	var s *scene.Scene
	if inputPath == "" {
		latest, err := director.FindLatestScene(director.ScenesDir)
		if err == nil {
			inputPath = latest
			fmt.Printf("[*] Выбрана сцена: %s\n", inputPath)
		} else {
			fmt.Println("[*] Сцены не найдены, используется сцена по умолчанию")
			s = scene.Default()
		}
	}
	if s == nil {
		var err error
		s, err = scene.Read(inputPath)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения сцены: %v", err)
		}
	}

	// Обработка аудио
	audioPath := *audioPtr
	if audioPath == "" {
		latest, err := system.FindLatestAudio("input/audio")
		if err == nil {
			audioPath = latest
			fmt.Printf("[*] Выбрано аудио: %s\n", audioPath)
		}
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		nameSource := inputPath
		if nameSource == "" {
			nameSource = "default"
		}
		baseName := filepath.Base(nameSource)
		ext := filepath.Ext(baseName)
		cleanName := strings.ReplaceAll(strings.TrimSuffix(baseName, ext), " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	encoderName := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}

	quality := *qualityPtr
	if quality == 0 {
		quality = system.DefaultQuality(encoderName)
	}

	if err := effects.ValidateTint(s.Effects.Tint); err != nil {
		log.Fatalf("[-] %v", err)
	}

	cfg := &config.Config{
		InputPath:     inputPath,
		OutputVideo:   finalOutput,
		FramesDir:     *framesDirPtr,
		TotalDuration: *durationPtr,
		Width:         width,
		Height:        height,
		FPS:           *fpsPtr,
		Workers:       *workersPtr,
		AudioPath:     audioPath,
		AudioSync:     *audioSyncPtr,
		Preset:        *presetPtr,
		VideoEncoder:  encoderName,
		Quality:       quality,
		Scorer:        *scorerPtr,
		ShowStats:     *statsPtr,
		Debug:         *debugPtr,
		BuildVersion:  buildVersion,
	}

	// Инициализируем зависимости
	ve := &video.FFmpegEncoder{Encoder: cfg.VideoEncoder, Quality: cfg.Quality}
	eff := &effects.DefaultEffect{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	project := engine.NewVideoProject(cfg, s, ve, eff)
	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	if cfg.FramesDir != "" {
		fmt.Printf("[+++] Успех! Кадры: %s\n", cfg.FramesDir)
		return
	}
	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
}

func generateScene(width, height, fps int, duration float64, titles, backdrop, out string) error {
	fmt.Println("[*] Режим генерации сцены...")

	if width == 0 || height == 0 {
		width, height = 1280, 720
	}
	dir := director.NewDirector(width, height)

	var overlays []scene.Overlay
	for _, t := range strings.Split(titles, "|") {
		if t = strings.TrimSpace(t); t != "" {
			overlays = append(overlays, scene.Overlay{Title: t})
		}
	}
	if len(overlays) == 0 {
		for i := 1; i <= 3; i++ {
			overlays = append(overlays, scene.Overlay{Title: fmt.Sprintf("Slide %d", i)})
		}
	}

	opts := director.Options{Overlays: overlays, Duration: duration, FPS: fps}
	if backdrop != "" {
		abs, err := filepath.Abs(backdrop)
		if err != nil {
			return err
		}
		opts.Backdrop = &scene.Backdrop{Path: abs}
	}

	s, err := dir.GenerateScene(opts)
	if err != nil {
		return err
	}

	if out == "" {
		out = director.GenerateScenePath()
	}
	if err := scene.Write(s, out); err != nil {
		return err
	}

	fmt.Printf("[+++] Успех! Сцена сохранена: %s (%.1fs, оверлеев: %d)\n", out, s.Duration(), len(s.Overlays))
	return nil
}
