// Command rigpreview opens a scene in a window and flies it with the mouse
// wheel or arrow keys instead of the scripted timeline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ivlev/scroll2video/internal/analyzer"
	"github.com/ivlev/scroll2video/internal/director"
	"github.com/ivlev/scroll2video/internal/overlay"
	"github.com/ivlev/scroll2video/internal/preview"
	"github.com/ivlev/scroll2video/internal/scene"
)

type game struct {
	v     *preview.Viewer
	frame *image.RGBA
	hud   bool
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.hud = !g.hud
	}

	_, wy := ebiten.Wheel()
	in := preview.Input{
		Wheel: -wy,
		Home:  inpututil.IsKeyJustPressed(ebiten.KeyHome),
		End:   inpututil.IsKeyJustPressed(ebiten.KeyEnd),
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyPageDown) {
		in.Keys++
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyPageUp) {
		in.Keys--
	}

	for _, e := range g.v.Step(in, 1/float64(ebiten.TPS())) {
		if e.Kind == overlay.Enter {
			fmt.Printf("[>] Оверлей %d: %s\n", e.Index, g.v.Scene.Overlays[e.Index].Title)
		}
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.v.Draw(g.frame)
	screen.WritePixels(g.frame.Pix)
	if g.hud {
		ebitenutil.DebugPrint(screen, g.v.HUD())
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.frame.Rect.Dx(), g.frame.Rect.Dy()
}

func main() {
	inputPtr := flag.String("input", "", "Путь к сцене YAML (по умолчанию: самый свежий файл в input/scenes/)")
	scorerPtr := flag.String("scorer", "edges", "Анализатор размещения оверлеев (edges, blocks)")
	scalePtr := flag.Float64("scale", 1, "Масштаб окна")
	flag.Parse()

	inputPath := *inputPtr
	var s *scene.Scene
	if inputPath == "" {
		if latest, err := director.FindLatestScene(director.ScenesDir); err == nil {
			inputPath = latest
		}
	}
	if inputPath == "" {
		fmt.Println("[*] Сцены не найдены, используется сцена по умолчанию")
		s = scene.Default()
	} else {
		var err error
		if s, err = scene.Read(inputPath); err != nil {
			log.Fatalf("[-] Ошибка чтения сцены: %v", err)
		}
		fmt.Printf("[*] Сцена: %s\n", inputPath)
	}

	scorer, err := analyzer.NewScorer(*scorerPtr)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	v, err := preview.Load(context.Background(), s, filepath.Dir(inputPath), scorer, func(w string) {
		fmt.Printf("[!] %s\n", w)
	})
	if err != nil {
		log.Fatalf("[-] Ошибка загрузки сцены: %v", err)
	}

	w, h := v.Size()
	g := &game{v: v, frame: image.NewRGBA(image.Rect(0, 0, w, h)), hud: true}

	ebiten.SetWindowSize(int(float64(w)**scalePtr), int(float64(h)**scalePtr))
	ebiten.SetWindowTitle("scroll2video preview")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatalf("[-] %v", err)
	}
}
