package config

import "sort"

func preset(fn func(c *Config)) *Config {
	c := DefaultConfig()
	fn(c)
	return c
}

var Presets = map[string]*Config{
	"drop": preset(func(c *Config) {
		c.Duration = 3
		c.Bodies = []BodyConfig{{X: 0, Y: 200, Radius: 20, Mass: 4}}
	}),
	"newton": preset(func(c *Config) {
		c.Gravity = 0
		c.Duration = 4
		c.Bodies = []BodyConfig{
			{X: -200, Y: 0, VX: 150, Radius: 15, Mass: 3},
			{X: 0, Y: 0, Radius: 15, Mass: 3},
			{X: 40, Y: 0, Radius: 15, Mass: 3},
		}
	}),
	"heavy": preset(func(c *Config) {
		c.Gravity = 0
		c.Duration = 4
		c.Bodies = []BodyConfig{
			{X: -150, Y: 0, VX: 120, Radius: 40, Mass: 8},
			{X: 150, Y: 5, VX: -120, Radius: 8, Mass: 0.8},
		}
	}),
	"pile": preset(func(c *Config) {
		c.Duration = 5
		c.Seed = 1
		c.Spawn.Count = 25
		c.Spawn.MinSize = 20
		c.Spawn.MaxSize = 60
	}),
	"closed": preset(func(c *Config) {
		c.Gravity = 0
		c.Duration = 10
		c.Seed = 42
		c.Spawn.Count = 30
		c.Spawn.MinSize = 10
		c.Spawn.MaxSize = 40
		c.Spawn.MaxSpeed = 200
		c.Engine.GroundDamping = false
	}),
	"rain": preset(func(c *Config) {
		c.Duration = 4
		c.Seed = 3
		c.Spawn.Count = 2
		c.Spawn.MaxSize = 80
		for i := 0; i < 12; i++ {
			c.Events = append(c.Events, EventConfig{
				At:   0.25 * float64(i+1),
				Body: &BodyConfig{X: float64(i%6)*100 - 250, Y: 250, Radius: 10 + float64(i%3)*5, Mass: 2 + float64(i%3)},
			})
		}
	}),
	"exchange": preset(func(c *Config) {
		c.Gravity = 0
		c.Duration = 4
		c.Engine.Collision = "equal_mass"
		c.Bodies = []BodyConfig{
			{X: -150, Y: 0, VX: 100, Radius: 20, Mass: 1},
			{X: 150, Y: 0, VX: -50, Radius: 20, Mass: 1},
		}
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
