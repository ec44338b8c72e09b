package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/metroidvania/ability"
	"github.com/milk9111/metroidvania/common"
	"github.com/milk9111/metroidvania/ecs"
	"github.com/milk9111/metroidvania/ecs/component"
	"github.com/milk9111/metroidvania/ecs/entity"
	"github.com/milk9111/metroidvania/ecs/system"
	"github.com/milk9111/metroidvania/event"
	"github.com/milk9111/metroidvania/levels"
	"github.com/milk9111/metroidvania/prefabs"
	"github.com/milk9111/metroidvania/room"
	"github.com/milk9111/metroidvania/save"
	"github.com/milk9111/metroidvania/traversal"
	"go.uber.org/zap"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	noticeSeconds = 2.5
)

type Options struct {
	StartRoom    string
	SavePath     string
	AllAbilities bool
	Debug        bool
	Load         bool
}

type Game struct {
	log *zap.Logger
	bus *event.Bus

	world     *ecs.World
	scheduler *ecs.Scheduler
	physics   *system.PhysicsSystem
	playerCtl *system.PlayerControllerSystem
	render    *system.RenderSystem

	registry  *ability.Registry
	graph     *room.Graph
	traversal *traversal.Controller
	enemies   *entity.EnemyFactory

	playerSpec *prefabs.PlayerSpec
	player     ecs.Entity

	store    *save.FileStore
	watcher  *prefabs.Watcher
	start    string
	playTime float64
	closed   bool

	unsubscribe []func()
}

func NewGame(opts Options, log *zap.Logger) (*Game, error) {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		log:   log,
		bus:   event.NewBus(log.Named("event")),
		world: ecs.NewWorld(),
		start: opts.StartRoom,
	}

	spec, err := prefabs.LoadPlayerSpec()
	if err != nil {
		return nil, err
	}
	g.playerSpec = spec

	defs, err := prefabs.LoadAbilityDefinitions()
	if err != nil {
		return nil, err
	}
	g.registry, err = ability.NewRegistry(defs, g.bus, log)
	if err != nil {
		return nil, err
	}
	enemySpecs, err := prefabs.LoadEnemySpecs()
	if err != nil {
		return nil, err
	}
	g.enemies = entity.NewEnemyFactory(enemySpecs)

	rooms, err := levels.LoadRooms()
	if err != nil {
		return nil, err
	}
	g.graph = room.NewGraph(rooms, log)
	for _, err := range append(g.graph.ValidateConnections(), g.graph.ValidateDoors()...) {
		log.Warn("room table problem", zap.Error(err))
	}

	g.physics = system.NewPhysicsSystem(spec.Movement)
	g.player, err = entity.NewPlayer(g.world, spec, common.Vec2{})
	if err != nil {
		return nil, err
	}
	builder := entity.NewRoomBuilder(g.world, g.enemies, g.registry, g.bus, log)
	host := system.NewRoomHost(g.world, builder, g.physics, g.player, log)
	g.traversal = traversal.NewController(g.graph, g.registry, host, g.bus, spec.Traversal, log)

	transition := system.NewRoomTraversalSystem(g.traversal)
	g.playerCtl = system.NewPlayerControllerSystem(g.registry, g.bus)
	g.playerCtl.FreezeWhile(transition.Transitioning)
	g.scheduler = ecs.NewScheduler(
		system.NewInputSystem(),
		g.playerCtl,
		system.NewEnemySystem(log),
		g.physics,
		system.NewRespawnSystem(g.physics),
		system.NewPickupCollectSystem(g.registry, log),
		system.NewHazardSystem(g.bus, log, g.spawnPoint),
		system.NewTTLSystem(),
		transition,
	)
	g.render = system.NewRenderSystem(g.traversal.Alpha)

	g.store = save.NewFileStore(opts.SavePath, log)
	if opts.Load {
		if err := g.load(); err != nil {
			if !errors.Is(err, save.ErrNoSave) {
				return nil, err
			}
			log.Info("no save found, starting a new game", zap.String("path", opts.SavePath))
			opts.Load = false
		}
	}
	if !opts.Load {
		if err := g.traversal.Enter(g.startRoom()); err != nil {
			return nil, fmt.Errorf("enter %s: %w", g.startRoom(), err)
		}
	}
	// after load, which replaces the ability set
	if opts.AllAbilities {
		g.registry.UnlockAll()
	}
	g.subscribe()

	if opts.Debug {
		w, err := prefabs.NewWatcher(log, prefabs.DiskDir, filepath.Join(prefabs.DiskDir, "scripts"))
		if err != nil {
			log.Warn("prefab hot reload disabled", zap.Error(err))
		} else {
			g.watcher = w
		}
	}

	g.refreshHUD()
	return g, nil
}

func (g *Game) subscribe() {
	g.unsubscribe = append(g.unsubscribe,
		g.bus.Subscribe(event.DoorLocked, func(e event.Event) {
			if p, ok := e.Payload.(traversal.LockedPayload); ok {
				g.notice(p.Feedback)
			}
		}),
		g.bus.Subscribe(event.AbilityUnlocked, func(e event.Event) {
			if p, ok := e.Payload.(ability.UnlockedPayload); ok {
				g.notice(fmt.Sprintf("Unlocked %s: %s", p.Ability.Name, p.Ability.Description))
			}
		}),
		g.bus.Subscribe(event.RoomEntered, func(e event.Event) {
			if p, ok := e.Payload.(traversal.EnteredPayload); ok {
				g.log.Info("room entered", zap.String("room", p.RoomID), zap.String("name", p.RoomName))
			}
		}),
		g.bus.Subscribe(event.CombatDefeated, func(event.Event) {
			g.log.Info("player defeated", zap.String("room", g.traversal.CurrentRoomID()))
		}),
	)
}

func (g *Game) notice(text string) {
	if text == "" {
		return
	}
	if _, err := entity.NewNotice(g.world, text, noticeSeconds); err != nil {
		g.log.Warn("notice failed", zap.Error(err))
	}
}

func (g *Game) startRoom() string {
	if g.start != "" {
		return g.start
	}
	return save.NewRecord().CurrentRoom
}

func (g *Game) spawnPoint() (common.Vec2, bool) {
	r, ok := g.traversal.CurrentRoom()
	if !ok {
		return common.Vec2{}, false
	}
	return r.SpawnPoint, true
}

func (g *Game) Update() error {
	if g.closed {
		return ebiten.Termination
	}
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.Close()
		return ebiten.Termination
	}

	g.reloadPrefabs()

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := g.save(); err != nil {
			g.log.Error("save failed", zap.Error(err))
		} else {
			g.notice("Game saved")
		}
	}

	g.world.SetDeltaTime(1 / float64(ebiten.TPS()))
	g.scheduler.Update(g.world)
	g.playTime += g.world.DeltaTime()

	g.refreshHUD()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.render.Draw(g.world, screen)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}

func (g *Game) refreshHUD() {
	name := g.traversal.CurrentRoomID()
	if r, ok := g.traversal.CurrentRoom(); ok && r.Name != "" {
		name = r.Name
	}
	p := g.registry.Progress()
	g.render.SetHUD(
		name,
		fmt.Sprintf("Abilities %d/%d (%.0f%%): %s", p.Unlocked, p.Total, p.Percentage, strings.Join(g.registry.Unlocked(), ", ")),
	)
}

// Close saves progress and stops background work. Safe to call twice.
func (g *Game) Close() {
	if g.closed {
		return
	}
	g.closed = true

	if err := g.save(); err != nil {
		g.log.Error("save on quit failed", zap.Error(err))
	}
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			g.log.Warn("close prefab watcher", zap.Error(err))
		}
	}
	for _, unsub := range g.unsubscribe {
		unsub()
	}
}

func (g *Game) save() error {
	rec := save.NewRecord()
	rec.CurrentRoom = g.traversal.CurrentRoomID()
	if t, ok := ecs.Get(g.world, g.player, component.TransformComponent.Kind()); ok {
		rec.PlayerPosition = common.Vec2{X: t.X, Y: t.Y}
	}
	if h, ok := ecs.Get(g.world, g.player, component.HealthComponent.Kind()); ok {
		rec.PlayerHealth, rec.PlayerMaxHealth = h.Current, h.Max
	}
	st := g.registry.Export()
	rec.Abilities = st.UnlockedAbilities
	rec.CollectedItems = st.CollectedItems
	rec.ExploredRooms = g.traversal.ExploredRooms()
	rec.PlayTime = g.playTime

	rec, err := g.store.Save(rec)
	if err != nil {
		return err
	}
	g.bus.Publish(event.GameSaved, rec)
	return nil
}

// load restores progress from the store and enters the saved room.
func (g *Game) load() error {
	rec, err := g.store.Load()
	if err != nil {
		return err
	}

	g.registry.Import(ability.State{
		UnlockedAbilities: rec.Abilities,
		CollectedItems:    rec.CollectedItems,
	})
	g.traversal.MarkExplored(rec.ExploredRooms...)
	g.playTime = rec.PlayTime

	entered, err := g.traversal.Resume(rec.CurrentRoom, g.startRoom())
	if err != nil {
		return fmt.Errorf("enter saved room %s: %w", rec.CurrentRoom, err)
	}
	if r, ok := g.traversal.CurrentRoom(); ok && entered == rec.CurrentRoom && insideRoom(r, rec.PlayerPosition) {
		g.physics.Teleport(g.world, g.player, rec.PlayerPosition.X, rec.PlayerPosition.Y)
	}
	if h, ok := ecs.Get(g.world, g.player, component.HealthComponent.Kind()); ok && rec.PlayerHealth > 0 {
		h.Current = min(rec.PlayerHealth, h.Max)
	}

	g.bus.Publish(event.GameLoaded, rec)
	return nil
}

func insideRoom(r room.Room, p common.Vec2) bool {
	return p.X > 0 && p.Y > 0 && p.X < r.Width && p.Y < r.Height
}

// reloadPrefabs drains the watcher and swaps in freshly loaded tuning.
// Values already handed out are never mutated.
func (g *Game) reloadPrefabs() {
	if g.watcher == nil {
		return
	}
	changed := map[string]bool{}
	for drained := false; !drained; {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				drained = true
				break
			}
			changed[filepath.Base(name)] = true
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn("prefab watcher", zap.Error(err))
			}
		default:
			drained = true
		}
	}
	if len(changed) == 0 {
		return
	}

	start := time.Now()
	if changed[prefabs.PlayerFile] {
		spec, err := prefabs.LoadPlayerSpec()
		if err != nil {
			g.log.Warn("player tuning rejected", zap.Error(err))
		} else {
			g.playerSpec = spec
			g.physics.SetConstants(spec.Movement)
			g.traversal.SetConfig(spec.Traversal)
			if p, ok := ecs.Get(g.world, g.player, component.PlayerComponent.Kind()); ok && p.Engine != nil {
				p.Engine.SetConstants(spec.Movement)
			}
		}
	}
	for name := range changed {
		if name == prefabs.EnemiesFile || strings.HasSuffix(name, ".tengo") {
			specs, err := prefabs.LoadEnemySpecs()
			if err != nil {
				g.log.Warn("enemy specs rejected", zap.Error(err))
				break
			}
			// Takes effect the next time a room is built.
			g.enemies.SetSpecs(specs)
			break
		}
	}
	g.log.Info("prefabs reloaded", zap.Int("files", len(changed)), zap.Duration("took", time.Since(start)))
}
