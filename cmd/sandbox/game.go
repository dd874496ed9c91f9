package main

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlink/arena"
	"github.com/milk9111/physlink/config"
	"github.com/milk9111/physlink/gameplay"
	"github.com/milk9111/physlink/physics"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"
)

const feedLines = 6

type Game struct {
	cfg        config.Config
	configPath string
	debug      bool
	log        *zap.Logger

	sim     *gameplay.Simulation
	world   *gameplay.WorldView
	player  arena.Key
	watcher *config.Watcher

	face   text.Face
	report physics.StepReport
	feed   []string
}

func NewGame(cfg config.Config, configPath string, debug bool, log *zap.Logger) (*Game, error) {
	var rules *gameplay.DamageRules
	if cfg.Sandbox.DamageRules != "" {
		r, err := gameplay.LoadDamageRules(cfg.Sandbox.DamageRules)
		if err != nil {
			return nil, err
		}
		rules = r
	}

	sim := physics.New[*gameplay.WorldView](cfg.Physics, physics.WithLogger(log.Named("physics")))
	world := gameplay.NewWorld(sim, rules, cfg.Sandbox, log.Named("gameplay"))

	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	g := &Game{
		cfg:        cfg,
		configPath: configPath,
		debug:      debug,
		log:        log,
		sim:        sim,
		world:      world,
		face:       &text.GoTextFace{Source: s, Size: 14},
	}
	if err := g.populate(); err != nil {
		return nil, err
	}

	var watched []string
	if configPath != "" {
		watched = append(watched, configPath)
	}
	if cfg.Sandbox.DamageRules != "" {
		watched = append(watched, cfg.Sandbox.DamageRules)
	}
	if len(watched) > 0 {
		w, err := config.NewWatcher(watched...)
		if err != nil {
			log.Warn("hot reload disabled", zap.Error(err))
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

// populate lays out the level and everything in it.
func (g *Game) populate() error {
	width, height := float64(g.cfg.Sandbox.Width), float64(g.cfg.Sandbox.Height)
	w := g.world
	w.BuildLevel(width, height)

	player, ok := w.SpawnPlayer(cp.Vector{X: width / 2, Y: height - 80})
	if !ok {
		return fmt.Errorf("spawn player")
	}
	g.player = player

	period := g.cfg.Sandbox.SpawnPeriod
	limit := max(g.cfg.Sandbox.Enemies/2, 1)
	w.SpawnGenerator(cp.Vector{X: 80, Y: height - 60}, period, limit)
	w.SpawnGenerator(cp.Vector{X: width - 80, Y: height - 60}, period, limit)

	w.SpawnChest(cp.Vector{X: width * 0.25, Y: height - 148}, gameplay.ItemHealth)
	w.SpawnChest(cp.Vector{X: width * 0.75, Y: height - 148}, gameplay.ItemCoin)
	w.SpawnBuffBox(cp.Vector{X: width / 2, Y: height - 290}, 2, 600)
	w.SpawnWeapon(cp.Vector{X: width/2 + 200, Y: height - 20}, 2, 6)
	for i := range 5 {
		w.SpawnItem(gameplay.ItemCoin, 1, cp.Vector{X: width/2 - 200 + float64(i)*30, Y: height - 20})
	}
	return nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Update() error {
	g.reload()

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}

	dir := 0.0
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		dir--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		dir++
	}
	g.world.Move(g.player, dir)
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyW) {
		g.world.Jump(g.player)
	}
	if ebiten.IsKeyPressed(ebiten.KeyJ) || ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.world.Fire(g.player)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if p, ok := g.world.Players.Get(g.player); ok {
			g.world.RedeployPlayer(g.player, p.Spawn)
		}
	}

	g.world.Update()
	g.report = g.sim.Advance(1.0/float64(ebiten.TPS()), g.world)

	for _, ev := range g.world.DrainEvents() {
		if ev.Kind == gameplay.EventSpawn {
			continue
		}
		line := fmt.Sprintf("%s %s", ev.Kind, ev.Subject)
		if ev.Amount != 0 {
			line += fmt.Sprintf(" (%d)", ev.Amount)
		}
		g.feed = append(g.feed, line)
		g.log.Debug("gameplay event", zap.Stringer("kind", ev.Kind), zap.Stringer("subject", ev.Subject), zap.Int("amount", ev.Amount))
	}
	if n := len(g.feed); n > feedLines {
		g.feed = g.feed[n-feedLines:]
	}
	return nil
}

// reload applies config and rules changes picked up by the watcher.
func (g *Game) reload() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reloadPath(path)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.log.Warn("watch error", zap.Error(err))
		default:
			return
		}
	}
}

func (g *Game) reloadPath(path string) {
	switch {
	case g.configPath != "" && sameFile(path, g.configPath):
		cfg, err := config.Load(path)
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			g.log.Warn("config reload failed", zap.String("path", path), zap.Error(err))
			return
		}
		g.sim.Configure(cfg.Physics)
		g.cfg.Physics = cfg.Physics
		g.log.Info("physics settings reloaded", zap.String("path", path))
	case g.cfg.Sandbox.DamageRules != "" && sameFile(path, g.cfg.Sandbox.DamageRules):
		rules, err := gameplay.LoadDamageRules(path)
		if err != nil {
			g.log.Warn("rules reload failed", zap.String("path", path), zap.Error(err))
			return
		}
		g.world.SetRules(rules)
		g.log.Info("damage rules reloaded", zap.String("path", path))
	}
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func (g *Game) Draw(screen *ebiten.Image) {
	drawSpace(screen, g.sim, g.debug)
	g.drawHUD(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Sandbox.Width, g.cfg.Sandbox.Height
}
