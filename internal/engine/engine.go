package engine

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scroll2video/internal/analyzer"
	"github.com/ivlev/scroll2video/internal/config"
	"github.com/ivlev/scroll2video/internal/effects"
	"github.com/ivlev/scroll2video/internal/overlay"
	"github.com/ivlev/scroll2video/internal/preload"
	"github.com/ivlev/scroll2video/internal/renderer"
	"github.com/ivlev/scroll2video/internal/scene"
	"github.com/ivlev/scroll2video/internal/system"
	"github.com/ivlev/scroll2video/internal/video"
)

type VideoProject struct {
	Config  *config.Config
	Scene   *scene.Scene
	Encoder *video.FFmpegEncoder
	Effect  effects.Effect
	tempDir string
}

func NewVideoProject(cfg *config.Config, s *scene.Scene, ve *video.FFmpegEncoder, eff effects.Effect) *VideoProject {
	return &VideoProject{
		Config:  cfg,
		Scene:   s,
		Encoder: ve,
		Effect:  eff,
	}
}

// timings collects the phases of the performance report
type timings struct {
	preload time.Duration
	sim     time.Duration
	render  time.Duration
	encode  time.Duration
	mux     time.Duration
}

func (p *VideoProject) Run(ctx context.Context) error {
	startTime := time.Now()
	var tm timings

	if err := p.prepareScene(ctx); err != nil {
		return err
	}
	s := p.Scene

	var err error
	p.tempDir, err = os.MkdirTemp("", "scroll2video_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(p.tempDir)

	fmt.Println("--- [PROJECT: SCROLL FLYTHROUGH] ---")
	fmt.Printf("[*] Сцена: %s | Оверлеев: %d | Кирпичей: %d\n", p.Config.InputPath, len(s.Overlays), s.Bricks.Count)
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Длительность: %.2fs\n", s.Width, s.Height, s.FPS, s.Duration())
	fmt.Println("-----------------------------")

	// 1. Загрузка ресурсов
	preloadStart := time.Now()
	var assets preload.Assets
	workers := p.workers()
	loader := &preload.Loader{
		Stages: preload.SceneStages(s, filepath.Dir(p.Config.InputPath), &assets),
		Limit:  workers,
	}
	state, err := loader.Run(ctx, func(st preload.Status) {
		switch {
		case st.Substituted:
			fmt.Printf("[!] %s недоступен, используется замена: %v\n", st.Stage, st.Err)
		case st.Err == nil:
			fmt.Printf("[>] Загружено: %s (%.0f%%)\n", st.Stage, st.Progress*100)
		}
	})
	if err != nil {
		return fmt.Errorf("ошибка загрузки ресурсов: %w", err)
	}
	if !state.Ready() {
		return fmt.Errorf("ресурсы не готовы")
	}
	tm.preload = time.Since(preloadStart)

	scorer, err := analyzer.NewScorer(p.Config.Scorer)
	if err != nil {
		return err
	}
	r, err := renderer.New(s, assets.Assets, scorer)
	if err != nil {
		return fmt.Errorf("ошибка подготовки рендера: %w", err)
	}

	driver, err := NewDriver(s, assets.Path)
	if err != nil {
		return err
	}
	driver.OnEvent = func(frame int, e overlay.Event) {
		if p.Config.Debug {
			fmt.Printf("[>] Кадр %d: %s оверлей %d\n", frame, e.Kind, e.Index)
		}
	}

	// 2. Приемник кадров
	sink, videoPath, err := p.openSink(ctx, driver.Frames())
	if err != nil {
		return err
	}

	// 3. Рендер и кодирование
	if err := p.renderFrames(ctx, r, driver, sink, workers, &tm); err != nil {
		sink.Close()
		return err
	}

	encodeStart := time.Now()
	if err := sink.Close(); err != nil {
		return fmt.Errorf("ошибка кодирования: %w", err)
	}
	tm.encode += time.Since(encodeStart)

	// 4. Аудио
	if videoPath != "" && p.Config.AudioPath != "" {
		fmt.Println("[*] Добавление аудиодорожки...")
		muxStart := time.Now()
		if err := video.MuxAudio(ctx, videoPath, p.Config.AudioPath, p.Config.OutputVideo); err != nil {
			return fmt.Errorf("ошибка сборки финального видео: %w", err)
		}
		tm.mux = time.Since(muxStart)
	}

	if p.Config.ShowStats {
		p.report(driver.Frames(), time.Since(startTime), tm)
	}
	return nil
}

// prepareScene applies command line overrides and audio sync, then validates
func (p *VideoProject) prepareScene(ctx context.Context) error {
	s := p.Scene
	if p.Config.Width > 0 && p.Config.Height > 0 {
		s.Width, s.Height = p.Config.Width, p.Config.Height
	}
	if p.Config.FPS > 0 {
		s.FPS = p.Config.FPS
	}

	if p.Config.AudioPath != "" && p.Config.AudioSync {
		audioDur, err := system.GetAudioDuration(ctx, p.Config.AudioPath)
		if err != nil {
			log.Printf("[!] Не удалось получить длительность аудио: %v", err)
		} else {
			p.Config.TotalDuration = audioDur
		}
	}

	if p.Config.TotalDuration > 0 && p.Config.TotalDuration != s.Duration() {
		keys, err := ScaleTimeline(s.Timeline, p.Config.TotalDuration, s.FPS)
		if err != nil {
			return err
		}
		fmt.Printf("[*] Таймлайн масштабирован (x%.3f): %.2fs\n", p.Config.TotalDuration/s.Duration(), keys[len(keys)-1].Time)
		s.Timeline = keys
	}
	p.Config.TotalDuration = s.Duration()

	if err := s.Validate(); err != nil {
		return fmt.Errorf("ошибка сцены: %w", err)
	}
	return nil
}

// openSink returns the PNG directory sink or an ffmpeg stream. videoPath is
// the intermediate file when audio still has to be muxed.
func (p *VideoProject) openSink(ctx context.Context, frames int) (video.FrameSink, string, error) {
	if p.Config.FramesDir != "" {
		sink, err := video.NewPNGSink(p.Config.FramesDir)
		if err != nil {
			return nil, "", err
		}
		fmt.Printf("[*] Кадры сохраняются в %s\n", p.Config.FramesDir)
		return sink, "", nil
	}

	s := p.Scene
	params := config.SegmentParams{
		Width:    s.Width,
		Height:   s.Height,
		FPS:      s.FPS,
		Duration: float64(frames) / float64(s.FPS),
		FadeIn:   s.Effects.FadeIn,
		FadeOut:  s.Effects.FadeOut,
		Tint:     s.Effects.Tint,
		Debug:    s.Effects.Debug || p.Config.Debug,
	}
	if p.Effect != nil {
		params.Filter = p.Effect.GenerateFilter(params)
	}

	target := p.Config.OutputVideo
	videoPath := ""
	if p.Config.AudioPath != "" {
		videoPath = filepath.Join(p.tempDir, "video.mp4")
		target = videoPath
	}
	if err := os.MkdirAll(filepath.Dir(p.Config.OutputVideo), 0755); err != nil {
		return nil, "", err
	}

	stream, err := p.Encoder.Start(ctx, params, target)
	if err != nil {
		return nil, "", err
	}
	return stream, videoPath, nil
}

// workers is the configured parallelism, or one sized by cores and free
// memory for the scene's frame size
func (p *VideoProject) workers() int {
	if p.Config.Workers > 0 {
		return p.Config.Workers
	}
	return system.DefaultWorkers(p.Scene.Width * p.Scene.Height * 4)
}

// renderFrames simulates a batch in order, rasterizes it in parallel and
// writes it to the sink in order
func (p *VideoProject) renderFrames(ctx context.Context, r *renderer.Renderer, d *Driver, sink video.FrameSink, workers int, tm *timings) error {
	batch := workers * 2

	total := d.Frames()
	states := make([]renderer.FrameState, 0, batch)
	frames := make([]*image.RGBA, batch)
	step := max(1, total/20)

	for !d.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}

		simStart := time.Now()
		states = states[:0]
		for len(states) < batch && !d.Done() {
			states = append(states, d.Next())
		}
		tm.sim += time.Since(simStart)

		renderStart := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for k := range states {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				img := r.NewFrame()
				r.Render(img, states[k])
				frames[k] = img
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		tm.render += time.Since(renderStart)

		encodeStart := time.Now()
		for k, st := range states {
			if err := sink.WriteFrame(frames[k]); err != nil {
				return fmt.Errorf("кадр %d: %w", st.Index, err)
			}
			r.Release(frames[k])
			frames[k] = nil

			if n := st.Index + 1; n%step == 0 || n == total {
				fmt.Printf("[>] Ready: %d/%d\n", n, total)
			}
		}
		tm.encode += time.Since(encodeStart)
	}
	return nil
}

func (p *VideoProject) report(frames int, totalTime time.Duration, tm timings) {
	fps := float64(frames) / totalTime.Seconds()
	host := system.HostStats()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Preload: %.2fs\n"+
			"Simulation: %.2fs\n"+
			"Rendering (CPU): %.2fs\n"+
			"Encoding (GPU/CPU): %.2fs\n"+
			"Audio Mux: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Host: %d/%d CPUs | RAM %.0f/%.0f MiB free (%.1f%% used)\n"+
			"----------------------------\n",
		p.Config.BuildVersion, totalTime.Seconds(), tm.preload.Seconds(), tm.sim.Seconds(),
		tm.render.Seconds(), tm.encode.Seconds(), tm.mux.Seconds(), fps,
		host.PhysicalCPUs, host.LogicalCPUs, system.MiB(host.AvailMemory), system.MiB(host.TotalMemory), host.UsedPercent,
	)
	fmt.Print(report)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Scene: %s | Frames: %d | Total: %.2fs | Render: %.2fs | Encode: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Config.InputPath),
		frames,
		totalTime.Seconds(),
		tm.render.Seconds(),
		tm.encode.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}
