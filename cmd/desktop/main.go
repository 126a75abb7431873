// Desktop frontend: windowing, framebuffer rendering, keyboard mapping and
// frame pacing for the CHIP-8 core.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/chip8"
	"gochip8/pkg/utils"
)

const (
	defaultClockHz = 500
	minClockHz     = 50
	maxClockHz     = 2000
	clockStepHz    = 50

	pixelScale = 8

	// hostFPS is the frame rate ebiten drives Update at.
	hostFPS = 60
)

// keypad maps CHIP-8 key values 0-F to host keys, matching the conventional
// left-hand layout (1234/QWER/ASDF/ZXCV).
var keypad = [16]ebiten.Key{
	ebiten.KeyX,
	ebiten.KeyDigit1,
	ebiten.KeyDigit2,
	ebiten.KeyDigit3,
	ebiten.KeyQ,
	ebiten.KeyW,
	ebiten.KeyE,
	ebiten.KeyA,
	ebiten.KeyS,
	ebiten.KeyD,
	ebiten.KeyZ,
	ebiten.KeyC,
	ebiten.KeyDigit4,
	ebiten.KeyR,
	ebiten.KeyF,
	ebiten.KeyV,
}

type Game struct {
	vm  *chip8.CPU
	rom []byte

	screenImg *ebiten.Image // reused 64x32 canvas
	showMenu  bool
	paused    bool
}

// cyclesPerFrame converts the emulated clock rate into the number of cycles
// to run per host frame.
func cyclesPerFrame(clockHz uint) int {
	n := int((clockHz + hostFPS/2) / hostFPS)
	if n < 1 {
		n = 1
	}
	return n
}

func (g *Game) handleControls() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.showMenu = !g.showMenu
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
		g.vm.SetHoldMode(g.paused)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.vm.Reset()
		// The ROM was validated at startup, a reload cannot fail.
		_ = g.vm.LoadROM(g.rom)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && g.vm.ClockHz+clockStepHz <= maxClockHz {
		g.vm.SetClockRate(g.vm.ClockHz + clockStepHz)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && g.vm.ClockHz >= minClockHz+clockStepHz {
		g.vm.SetClockRate(g.vm.ClockHz - clockStepHz)
	}
}

func (g *Game) Update() error {
	g.handleControls()

	// Latch currently held keys into the core's pressed-key array.
	for val, key := range keypad {
		g.vm.PressedKeys[val] = ebiten.IsKeyPressed(key)
	}

	for i := 0; i < cyclesPerFrame(g.vm.ClockHz); i++ {
		if err := g.vm.Tick(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(chip8.DisplayWidth, chip8.DisplayHeight)
	}
	g.screenImg.WritePixels(g.vm.Display.FramebufferRGBA())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(pixelScale, pixelScale)
	screen.DrawImage(g.screenImg, op)

	if g.showMenu {
		state := "running"
		if g.paused {
			state = "paused"
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("clock: %d Hz (%s)", g.vm.ClockHz, state), 4, 4)
		ebitenutil.DebugPrintAt(screen, "P pause  F5 restart  up/down clock  enter hide", 4, 20)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return chip8.DisplayWidth * pixelScale, chip8.DisplayHeight * pixelScale
}

func main() {
	romPath := flag.String("rom", "", "path of the CHIP-8 ROM to run")
	clockHz := flag.Uint("hz", defaultClockHz, "instruction clock rate in Hz")
	flag.Parse()

	logger := log.NewWithConfig(log.DefaultConfig())
	if *romPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	rom, fullPath, err := utils.ReadROM(*romPath)
	if err != nil {
		logger.Fatal("reading rom", log.Err(err))
	}

	vm := chip8.NewCPU(*clockHz)
	if err := vm.LoadROM(rom); err != nil {
		logger.Fatal("loading rom", log.Err(err))
	}
	logger.Info("rom loaded",
		log.String("path", fullPath),
		log.Int("bytes", len(rom)))

	ebiten.SetWindowSize(chip8.DisplayWidth*pixelScale, chip8.DisplayHeight*pixelScale)
	ebiten.SetWindowTitle("CHIP-8 Emulator")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	game := &Game{vm: vm, rom: rom}
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Fatal("emulation stopped", log.Err(err))
	}
}
