// TUI debugger: renders the framebuffer, registers and stack in gocui views
// and lets the user single-step or free-run the machine.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jroimartin/gocui"

	"gochip8/pkg/chip8"
	"gochip8/pkg/grid"
	"gochip8/pkg/utils"
)

const hostFPS = 60

type debugger struct {
	mu sync.Mutex

	vm      *chip8.CPU
	romPath string
	running bool
	fault   error
}

func main() {
	romPath := flag.String("rom", "", "path of the CHIP-8 ROM to debug")
	clockHz := flag.Uint("hz", 500, "instruction clock rate in Hz")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "usage: debugger -rom <file> [-hz <rate>]")
		os.Exit(2)
	}

	rom, fullPath, err := utils.ReadROM(*romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading rom: %v\n", err)
		os.Exit(1)
	}

	vm := chip8.NewCPU(*clockHz)
	vm.Output = os.Stderr
	if err := vm.LoadROM(rom); err != nil {
		fmt.Fprintf(os.Stderr, "loading rom: %v\n", err)
		os.Exit(1)
	}

	d := &debugger{vm: vm, romPath: fullPath}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating gui: %v\n", err)
		os.Exit(1)
	}
	defer g.Close()

	g.SetManagerFunc(layout)

	if err := d.bindKeys(g); err != nil {
		fmt.Fprintf(os.Stderr, "binding keys: %v\n", err)
		os.Exit(1)
	}

	g.Update(d.refresh)
	go d.runLoop(g)

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		fmt.Fprintf(os.Stderr, "gui loop: %v\n", err)
		os.Exit(1)
	}
}

func (d *debugger) bindKeys(g *gocui.Gui) error {
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("", 'q', gocui.ModNone, quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeySpace, gocui.ModNone, d.step); err != nil {
		return err
	}
	return g.SetKeybinding("", 'r', gocui.ModNone, d.toggleRun)
}

// runLoop drives the machine at its configured clock while free-running.
// gocui only allows view updates through Execute, so every batch of cycles
// ends with a refresh scheduled on the gui loop.
func (d *debugger) runLoop(g *gocui.Gui) {
	ticker := time.NewTicker(time.Second / hostFPS)
	defer ticker.Stop()

	for range ticker.C {
		d.mu.Lock()
		if d.running && d.fault == nil {
			perFrame := int(d.vm.ClockHz / hostFPS)
			if perFrame < 1 {
				perFrame = 1
			}
			for i := 0; i < perFrame; i++ {
				if err := d.vm.Tick(); err != nil {
					d.fault = err
					d.running = false
					break
				}
			}
		}
		d.mu.Unlock()
		g.Update(d.refresh)
	}
}

func (d *debugger) step(g *gocui.Gui, v *gocui.View) error {
	d.mu.Lock()
	if !d.running && d.fault == nil {
		if err := d.vm.Tick(); err != nil {
			d.fault = err
		}
	}
	d.mu.Unlock()
	return d.refresh(g)
}

func (d *debugger) toggleRun(g *gocui.Gui, v *gocui.View) error {
	d.mu.Lock()
	if d.fault == nil {
		d.running = !d.running
	}
	d.mu.Unlock()
	return d.refresh(g)
}

func (d *debugger) refresh(g *gocui.Gui) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if v, err := g.View("display"); err == nil {
		v.Clear()
		d.renderScreen(v)
	}
	if v, err := g.View("registers"); err == nil {
		v.Clear()
		d.vm.DumpRegisters(v)
	}
	if v, err := g.View("stack"); err == nil {
		v.Clear()
		d.vm.DumpStack(v)
	}
	if v, err := g.View("status"); err == nil {
		v.Clear()
		d.renderStatus(v)
	}
	return nil
}

func (d *debugger) renderScreen(v *gocui.View) {
	var line [chip8.DisplayWidth]byte
	for i := 0; i < chip8.DisplayWidth*chip8.DisplayHeight; i++ {
		x, y := grid.GetGridCoords(i, chip8.DisplayWidth)
		if d.vm.Display.Screen[y][x] {
			line[x] = '#'
		} else {
			line[x] = ' '
		}
		if x == chip8.DisplayWidth-1 {
			fmt.Fprintf(v, "%s\n", line[:])
		}
	}
}

func (d *debugger) renderStatus(v *gocui.View) {
	state := "stopped"
	switch {
	case d.fault != nil:
		state = "faulted"
	case d.running:
		state = "running"
	case d.vm.Waiting():
		state = "awaiting key"
	}
	fmt.Fprintf(v, "%s  clock: %d Hz  cycle: %d  state: %s\n", d.romPath, d.vm.ClockHz, d.vm.Cycle, state)
	if d.fault != nil {
		fmt.Fprintf(v, "%v\n", d.fault)
	}
	fmt.Fprintf(v, "space: step  r: run/stop  q: quit\n")
}

func layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	// left -> framebuffer
	if v, err := g.SetView("display", 0, 0, chip8.DisplayWidth+1, chip8.DisplayHeight+1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Display"
	}
	// right -> register values
	if v, err := g.SetView("registers", chip8.DisplayWidth+2, 0, maxX-1, 10); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Registers"
	}
	// right, below registers -> call stack
	if v, err := g.SetView("stack", chip8.DisplayWidth+2, 11, maxX-1, chip8.DisplayHeight+1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Stack"
	}
	// bottom -> status line and keybindings
	if v, err := g.SetView("status", 0, chip8.DisplayHeight+2, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Status"
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
