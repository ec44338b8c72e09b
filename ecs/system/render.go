package system

import (
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"golang.org/x/image/colornames"
)

const (
	invulnerableFlickerHz = 12.0
	hudLineHeight         = 16
	healthBarWidth        = 160
	healthBarHeight       = 10
)

// RenderSystem draws the room background, every sprite in layer order, the
// transition fade and the HUD text.
type RenderSystem struct {
	fade func() float64
	hud  []string
}

func NewRenderSystem(fade func() float64) *RenderSystem {
	return &RenderSystem{fade: fade}
}

// SetHUD replaces the lines printed in the top-left corner.
func (r *RenderSystem) SetHUD(lines ...string) {
	r.hud = append(r.hud[:0], lines...)
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	if boundsEntity, ok := ecs.First(w, component.LevelBoundsComponent.Kind()); ok {
		if b, ok := ecs.Get(w, boundsEntity, component.LevelBoundsComponent.Kind()); ok && b.Background != nil {
			screen.Fill(b.Background)
		}
	}

	var entities []ecs.Entity
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.SpriteComponent.Kind(), func(e ecs.Entity, _ *component.Transform, _ *component.Sprite) {
		entities = append(entities, e)
	})
	sort.SliceStable(entities, func(i, j int) bool {
		si, _ := ecs.Get(w, entities[i], component.SpriteComponent.Kind())
		sj, _ := ecs.Get(w, entities[j], component.SpriteComponent.Kind())
		if si.Layer != sj.Layer {
			return si.Layer < sj.Layer
		}
		return uint64(entities[i]) < uint64(entities[j])
	})

	for _, e := range entities {
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		s, _ := ecs.Get(w, e, component.SpriteComponent.Kind())
		if s.Color == nil || s.Width <= 0 || s.Height <= 0 {
			continue
		}
		if hidden(w, e) {
			continue
		}
		vector.DrawFilledRect(screen,
			float32(t.X-s.Width/2), float32(t.Y-s.Height/2),
			float32(s.Width), float32(s.Height),
			s.Color, false)
	}

	if r.fade != nil {
		if a := r.fade(); a > 0 {
			b := screen.Bounds()
			vector.DrawFilledRect(screen, 0, 0, float32(b.Dx()), float32(b.Dy()),
				color.NRGBA{A: uint8(math.Round(math.Min(a, 1) * 255))}, false)
		}
	}

	y := 8
	y = r.drawHealthBar(w, screen, y)
	for _, line := range r.hud {
		ebitenutil.DebugPrintAt(screen, line, 8, y)
		y += hudLineHeight
	}
	ecs.ForEach(w, component.NoticeComponent.Kind(), func(_ ecs.Entity, n *component.Notice) {
		ebitenutil.DebugPrintAt(screen, n.Text, 8, y)
		y += hudLineHeight
	})
}

// drawHealthBar draws the player's health at y and returns the next free row.
func (r *RenderSystem) drawHealthBar(w *ecs.World, screen *ebiten.Image, y int) int {
	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return y
	}
	h, ok := ecs.Get(w, player, component.HealthComponent.Kind())
	if !ok || h.Max <= 0 {
		return y
	}
	frac := math.Max(0, math.Min(1, float64(h.Current)/float64(h.Max)))
	vector.DrawFilledRect(screen, 8, float32(y), healthBarWidth, healthBarHeight, colornames.Darkred, false)
	vector.DrawFilledRect(screen, 8, float32(y), float32(healthBarWidth*frac), healthBarHeight, colornames.Limegreen, false)
	return y + healthBarHeight + 6
}

// hidden blinks invulnerable entities.
func hidden(w *ecs.World, e ecs.Entity) bool {
	h, ok := ecs.Get(w, e, component.HealthComponent.Kind())
	if !ok || h.Invulnerable <= 0 {
		return false
	}
	return int(h.Invulnerable*invulnerableFlickerHz)%2 == 1
}
