package main

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlink/gameplay"
	"github.com/milk9111/physlink/physics"
	"golang.org/x/image/colornames"
)

func drawSpace(screen *ebiten.Image, sim *gameplay.Simulation, debug bool) {
	if screen == nil || sim == nil {
		return
	}
	cp.DrawSpace(sim.Space(), &spaceDrawer{screen: screen, sim: sim, debug: debug})
}

// spaceDrawer renders cp shapes, colored by the Entity each shape is tagged
// with.
type spaceDrawer struct {
	screen *ebiten.Image
	sim    *gameplay.Simulation
	debug  bool
}

func (d *spaceDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	c := toRGBA(fill)
	vector.FillCircle(d.screen, float32(pos.X), float32(pos.Y), float32(radius), c, true)
	if d.debug {
		ax := pos.X + math.Cos(angle)*radius
		ay := pos.Y + math.Sin(angle)*radius
		vector.StrokeLine(d.screen, float32(pos.X), float32(pos.Y), float32(ax), float32(ay), 1, toRGBA(outline), true)
	}
}

func (d *spaceDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	vector.StrokeLine(d.screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, toRGBA(fill), true)
}

func (d *spaceDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	width := float32(max(radius*2, 1))
	vector.StrokeLine(d.screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, toRGBA(fill), true)
}

func (d *spaceDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count == 0 {
		return
	}
	c := toRGBA(fill)
	for i := range count {
		a, b := verts[i], verts[(i+1)%count]
		vector.StrokeLine(d.screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), float32(max(radius*2, 1)), c, true)
	}
	if d.debug {
		bb := cp.NewBBForExtents(verts[0], 0, 0)
		for _, v := range verts[:count] {
			bb = bb.Expand(v)
		}
		vector.StrokeRect(d.screen, float32(bb.L), float32(bb.B), float32(bb.R-bb.L), float32(bb.T-bb.B), 1, toRGBA(outline), false)
	}
}

func (d *spaceDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	vector.FillCircle(d.screen, float32(pos.X), float32(pos.Y), float32(size/2), toRGBA(fill), true)
}

func (d *spaceDrawer) Flags() uint {
	if d.debug {
		return cp.DRAW_SHAPES | cp.DRAW_COLLISION_POINTS
	}
	return cp.DRAW_SHAPES
}

func (d *spaceDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.1, G: 0.1, B: 0.1, A: 1}
}

var kindColors = map[physics.Kind]color.RGBA{
	physics.KindPlayer:    colornames.Dodgerblue,
	physics.KindEnemy:     colornames.Crimson,
	physics.KindGenerator: colornames.Darkred,
	physics.KindBullet:    colornames.Gold,
	physics.KindBuffBox:   colornames.Mediumpurple,
	physics.KindPlatform:  colornames.Slategray,
	physics.KindGround:    colornames.Dimgray,
	physics.KindWall:      colornames.Dimgray,
	physics.KindWeapon:    colornames.Orange,
	physics.KindChest:     colornames.Saddlebrown,
	physics.KindItem:      colornames.Limegreen,
}

func (d *spaceDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	e, ok := d.sim.ResolveShape(shape)
	if !ok {
		// untagged shapes stand out
		return cp.FColor{R: 1, G: 0, B: 1, A: 1}
	}
	c := toFColor(kindColors[e.Kind])
	if shape.Sensor() {
		c.A = 0.45
	}
	return c
}

func (d *spaceDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 0.7, G: 0.7, B: 0.7, A: 1}
}

func (d *spaceDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.1, B: 0.1, A: 1}
}

func (d *spaceDrawer) Data() interface{} {
	return nil
}

func toRGBA(c cp.FColor) color.RGBA {
	return color.RGBA{
		R: uint8(math.Round(float64(c.R*c.A) * 255)),
		G: uint8(math.Round(float64(c.G*c.A) * 255)),
		B: uint8(math.Round(float64(c.B*c.A) * 255)),
		A: uint8(math.Round(float64(c.A) * 255)),
	}
}

func toFColor(c color.RGBA) cp.FColor {
	return cp.FColor{
		R: float32(c.R) / 255,
		G: float32(c.G) / 255,
		B: float32(c.B) / 255,
		A: float32(c.A) / 255,
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	var b strings.Builder
	if p, ok := g.world.Players.Get(g.player); ok {
		fmt.Fprintf(&b, "HP %d  Score %d  Deaths %d", p.Health, p.Score, p.Deaths)
		if p.BuffFrames > 0 {
			fmt.Fprintf(&b, "  x%.1f (%ds)", p.Multiplier, p.BuffFrames/60)
		}
		if p.HasWeapon {
			b.WriteString("  [armed]")
		}
		if g.world.Grounded(g.player) {
			b.WriteString("  grounded")
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Enemies %d  Bullets %d  Items %d  Tags %d\n",
		g.world.Enemies.Len(), g.world.Bullets.Len(), g.world.Items.Len(), g.sim.Registrar().Len())
	if g.debug {
		fmt.Fprintf(&b, "step %d  raw %d  contacts %d  proximities %d  dropped %d  handlers %d  FPS %.1f\n",
			g.sim.Steps(), g.report.Raw, g.report.Contacts, g.report.Proximities, g.report.Dropped, g.report.Dispatched, ebiten.ActualFPS())
	}
	for _, line := range g.feed {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	op := &text.DrawOptions{}
	op.GeoM.Translate(12, 10)
	op.LineSpacing = 18
	op.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, b.String(), g.face, op)
}
