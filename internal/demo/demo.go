// Package demo declares the console commands of the bundled sample scene:
// a player that can be healed and a spawner that manages enemies.
package demo

import (
	"sync"

	"github.com/zjrosen/devconsole/internal/command"
	"github.com/zjrosen/devconsole/internal/console"
	"github.com/zjrosen/devconsole/internal/locator"
	"github.com/zjrosen/devconsole/internal/log"
)

// SceneName is the name of the scene built by NewScene.
const SceneName = "level-1"

func init() {
	for _, err := range []error{
		command.Declare("heal", Heal),
		command.Declare("commands", ListCommands),
		command.Declare("loadExpansion", LoadExpansion),
		command.DeclareMethod("spawnEnemy", (*SpawnController).SpawnEnemy),
		command.DeclareMethod("killAll", (*SpawnController).KillAll),
		command.DeclareMethod("status", (*Player).Status),
	} {
		if err != nil {
			log.ErrorErr(log.CatDemo, "Failed to declare demo command", err)
		}
	}
}

// Player is the scene's single player.
type Player struct {
	mu        sync.Mutex
	Health    int
	MaxHealth int
}

// Status logs the player's health.
func (p *Player) Status() {
	p.mu.Lock()
	defer p.mu.Unlock()
	log.Info(log.CatDemo, "Player status", "health", p.Health, "max", p.MaxHealth)
}

func (p *Player) heal() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Health = p.MaxHealth
	return p.Health
}

// HP returns the current health.
func (p *Player) HP() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Health
}

// SpawnController owns the scene's enemies.
type SpawnController struct {
	mu      sync.Mutex
	enemies int
}

// SpawnEnemy adds one enemy.
func (s *SpawnController) SpawnEnemy() {
	s.mu.Lock()
	s.enemies++
	n := s.enemies
	s.mu.Unlock()
	log.Info(log.CatDemo, "Enemy spawned", "enemies", n)
}

// KillAll removes every enemy.
func (s *SpawnController) KillAll() {
	s.mu.Lock()
	n := s.enemies
	s.enemies = 0
	s.mu.Unlock()
	log.Info(log.CatDemo, "Enemies killed", "count", n)
}

// Enemies returns the live enemy count.
func (s *SpawnController) Enemies() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enemies
}

var (
	playerMu sync.Mutex
	player   *Player
)

// NewScene builds the sample scene and makes its player the target of heal.
func NewScene() *locator.Scene {
	p := &Player{Health: 35, MaxHealth: 100}
	playerMu.Lock()
	player = p
	playerMu.Unlock()

	scene := locator.NewScene(SceneName)
	scene.Attach(p, &SpawnController{})
	return scene
}

// Heal restores the current player to full health.
func Heal() {
	playerMu.Lock()
	p := player
	playerMu.Unlock()
	if p == nil {
		log.Warn(log.CatDemo, "No player to heal")
		return
	}
	log.Info(log.CatDemo, "Player healed", "health", p.heal())
}

// ListCommands logs every registered command name.
func ListCommands() {
	if m := console.Instance(); m != nil {
		m.LogCommands()
	}
}

var expansionOnce sync.Once

// LoadExpansion declares the expansion's commands at runtime. They become
// callable after the next rescan, which dispatching one of them triggers.
func LoadExpansion() {
	expansionOnce.Do(func() {
		if err := command.Declare("openPortal", OpenPortal); err != nil {
			log.ErrorErr(log.CatDemo, "Failed to declare expansion command", err)
			return
		}
		log.Info(log.CatDemo, "Expansion loaded", "commands", "openPortal")
	})
}

// OpenPortal is declared by LoadExpansion.
func OpenPortal() {
	log.Info(log.CatDemo, "Portal opened")
}
