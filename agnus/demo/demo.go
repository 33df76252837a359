// Package demo is a self contained stage built from procedurally generated
// assets: bouncing balls drawn as BOBs over a restored backdrop, a
// hardware sprite steered with the player controls and a copper gradient
// behind the playfield.
package demo

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-agnus/agnus/copper"
	"github.com/valerio/go-agnus/agnus/display"
	"github.com/valerio/go-agnus/agnus/hw"
	"github.com/valerio/go-agnus/agnus/input/action"
	"github.com/valerio/go-agnus/agnus/memory"
	"github.com/valerio/go-agnus/agnus/raster"
	"github.com/valerio/go-agnus/agnus/sprite"
	"github.com/valerio/go-agnus/agnus/stage"
)

const (
	// Name of the demo stage.
	Name = "demo"

	numBalls    = 6
	floorHeight = 32
	playerSpeed = 2
	shipChannel = 0
	title       = "AGNUS"
)

// Palette of the playfield colors and the first sprite pair.
var Palette = []uint16{
	0x000, 0xf00, 0xf80, 0xff0, 0x8f0, 0x0f8, 0x08f, 0xfff,
	0x444, 0x888, 0x0ff, 0xf0f, 0x80f, 0x08f, 0x0f0, 0xccc,
	0x000, 0xfff, 0x0af, 0x05a,
}

// gradient returns the copper WAIT/MOVE pairs shading color 0 from dark to
// light blue every 8 lines.
func gradient(lines int) []copper.Instruction {
	var ins []copper.Instruction
	for y, shade := 0, 0; y < lines && copper.OriginY+y <= 0xff; y, shade = y+8, shade+1 {
		ins = append(ins,
			copper.Wait(uint8(copper.OriginY+y), 0),
			copper.Move(hw.COLOR00, uint16(min(shade, 15))),
		)
	}
	return ins
}

// Demo owns the stage and its chip RAM assets.
type Demo struct {
	alloc memory.Allocator
	ram   *memory.ChipRAM
	disp  *display.Engine
	st    *stage.Stage

	balls    *raster.TileSheet
	font     raster.Surface
	backdrop raster.Surface
	ship     *sprite.Data
	handles  []memory.Handle

	velocity map[*sprite.Bob]sprite.Vec
	player   *sprite.HWSprite
	hits     int
}

func New(alloc memory.Allocator, ram *memory.ChipRAM, disp *display.Engine) *Demo {
	d := &Demo{alloc: alloc, ram: ram, disp: disp}

	st := stage.New(Name)
	st.Program = copper.Build(gradient(disp.Viewport().Height)...)
	st.Palette = Palette
	st.OnEnter = d.enter
	st.OnExit = func(*stage.Stage) { d.Free() }
	st.Update = d.update
	d.st = st
	return d
}

func (d *Demo) Stage() *stage.Stage {
	return d.st
}

// Hits counts the frames in which the ship touched a ball.
func (d *Demo) Hits() int {
	return d.hits
}

func (d *Demo) Player() *sprite.HWSprite {
	return d.player
}

func (d *Demo) Balls() []*sprite.Bob {
	var out []*sprite.Bob
	d.st.Bobs.Each(func(b *sprite.Bob) { out = append(out, b) })
	return out
}

func (d *Demo) enter(st *stage.Stage) error {
	pf := d.disp.Playfield(0)
	spec := pf.Spec

	balls, err := makeBallSheet(d.alloc, d.ram, spec.Depth)
	if err != nil {
		return err
	}
	d.balls = balls
	d.handles = append(d.handles, balls.ImgData)

	font, h, err := makeFont(d.alloc, d.ram)
	if err != nil {
		d.Free()
		return err
	}
	d.font = font
	d.handles = append(d.handles, h)

	d.backdrop = raster.Surface{Width: spec.Width, Height: spec.Height, Depth: spec.Depth, Interleaved: spec.Interleaved}
	if h, err = allocSurface(d.alloc, &d.backdrop); err != nil {
		d.Free()
		return fmt.Errorf("backdrop: %w", err)
	}
	d.handles = append(d.handles, h)
	paintBackdrop(d.ram, d.backdrop, floorHeight)
	d.drawTitle()
	st.Backdrops = []raster.Surface{d.backdrop}

	if err := d.addBalls(st, spec.Width, spec.Height); err != nil {
		d.Free()
		return err
	}
	if err := d.addShip(st, spec.Width, spec.Height); err != nil {
		d.Free()
		return err
	}

	slog.Debug("Demo assets created", "blocks", len(d.handles), "balls", st.Bobs.Len())
	return nil
}

// drawTitle writes the title centered near the top of the backdrop, in
// the brightest color the depth allows.
func (d *Demo) drawTitle() {
	comp := d.disp.Compositor()
	comp.Own()
	defer comp.Disown()

	x := (d.backdrop.Width - len(title)*8) / 2
	for p := 0; p < d.backdrop.Depth && p < 3; p++ {
		comp.Text(d.backdrop, d.font, x, 8, title, p)
	}
}

func (d *Demo) addBalls(st *stage.Stage, w, h int) error {
	d.velocity = make(map[*sprite.Bob]sprite.Vec, numBalls)
	for i := 0; i < numBalls; i++ {
		x := 24 + i*((w-64)/numBalls)
		y := 32 + (i*37)%(h-floorHeight-64)
		frames := []int{0, 1, 2, 3}
		anim := sprite.NewAnimation(frames, 2+i%3, sprite.LoopPingPong)
		b, err := st.AddBob(sprite.NewBob(d.balls, x, y, anim))
		if err != nil {
			return fmt.Errorf("ball %d: %w", i, err)
		}
		v := sprite.Vec{X: 1 + i%3, Y: 1 + (i+1)%2}
		if i%2 == 1 {
			v.X = -v.X
		}
		d.velocity[b] = v
	}
	return nil
}

func (d *Demo) addShip(st *stage.Stage, w, h int) error {
	var sheet raster.SpriteSheet
	i := sheet.AppendSprite(tileSize, false, shipRows(0), shipRows(1))
	data, err := sprite.MakeSpriteData(d.alloc, d.ram, &sheet, i)
	if err != nil {
		return fmt.Errorf("ship: %w", err)
	}
	d.ship = data

	hs, err := sprite.NewHWSprite(data, shipChannel, (w-tileSize)/2, h-floorHeight-tileSize,
		sprite.NewAnimation([]int{0, 1}, 8, sprite.Loop))
	if err != nil {
		return err
	}
	d.player, err = st.AddSprite(hs)
	return err
}

func (d *Demo) update(f *stage.Frame) {
	spec := d.disp.Playfield(0).Spec
	maxX, maxY := spec.Width-tileSize, spec.Height-floorHeight-tileSize

	bounce := f.Input != nil && f.Input.WasActionPressed(action.PlayerFire)
	f.Stage.Bobs.Each(func(b *sprite.Bob) {
		v := d.velocity[b]
		if bounce {
			v.X, v.Y = -v.X, -v.Y
		}
		if nx := b.Bounds.X + v.X; nx < 0 || nx > maxX {
			v.X = -v.X
		}
		if ny := b.Bounds.Y + v.Y; ny < 0 || ny > maxY {
			v.Y = -v.Y
		}
		d.velocity[b] = v
		// late frames move further but never leave the playfield
		x := clamp(b.Bounds.X+v.X*f.Elapsed, 0, maxX)
		y := clamp(b.Bounds.Y+v.Y*f.Elapsed, 0, maxY)
		b.Move(x-b.Bounds.X, y-b.Bounds.Y)
	})

	if d.player == nil || f.Input == nil {
		return
	}
	var dx, dy int
	if f.Input.IsActionHeld(action.PlayerLeft) {
		dx -= playerSpeed
	}
	if f.Input.IsActionHeld(action.PlayerRight) {
		dx += playerSpeed
	}
	if f.Input.IsActionHeld(action.PlayerUp) {
		dy -= playerSpeed
	}
	if f.Input.IsActionHeld(action.PlayerDown) {
		dy += playerSpeed
	}
	p := d.player.Bounds
	dx = clamp(p.X+dx, 0, maxX) - p.X
	dy = clamp(p.Y+dy, 0, spec.Height-tileSize) - p.Y
	d.player.Move(dx, dy)

	hit := false
	f.Stage.Bobs.Each(func(b *sprite.Bob) {
		hit = hit || b.Collides(&d.player.Object)
	})
	if hit {
		d.hits++
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Free releases every asset block. It is safe to call more than once.
func (d *Demo) Free() {
	for _, h := range d.handles {
		d.alloc.FreeBlock(h)
	}
	d.handles = nil
	if d.ship != nil {
		d.ship.Free(d.alloc)
		d.ship = nil
	}
	d.balls = nil
	d.player = nil
}
