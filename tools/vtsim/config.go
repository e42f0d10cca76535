package main

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"vertexos/device/video/console"
	"vertexos/kernel/input"
	"vertexos/kernel/shell"
	"vertexos/kernel/task"

	"github.com/tidwall/gjson"
)

// Config holds the simulator settings. Zero-valued settings in a config file
// keep their defaults.
type Config struct {
	QueueCapacity int
	ReadyCapacity int
	Prompt        string
	LineLength    int
	Width         uint32
	Height        uint32

	// Palette overrides entries of the 16 color text mode palette.
	Palette map[uint8]color.RGBA
}

// DefaultConfig returns the settings used by the kernel on real hardware.
func DefaultConfig() Config {
	return Config{
		QueueCapacity: input.DefaultCapacity,
		ReadyCapacity: task.DefaultReadyCapacity,
		Prompt:        shell.Prompt,
		LineLength:    shell.MaxLineLen,
		Width:         80,
		Height:        25,
	}
}

// LoadConfig reads a JSON config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig overlays the settings found in data on top of DefaultConfig.
//
// Recognized keys: queue.capacity, executor.capacity, shell.prompt,
// shell.lineLength, screen.width, screen.height and screen.palette. The
// palette is an object mapping color indices to "#rrggbb" strings.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if !gjson.ValidBytes(data) {
		return cfg, fmt.Errorf("invalid JSON")
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"queue.capacity", &cfg.QueueCapacity},
		{"executor.capacity", &cfg.ReadyCapacity},
		{"shell.lineLength", &cfg.LineLength},
	}
	for _, spec := range ints {
		if v := gjson.GetBytes(data, spec.key); v.Exists() {
			if v.Type != gjson.Number || v.Int() <= 0 {
				return cfg, fmt.Errorf("%s must be a positive number", spec.key)
			}
			*spec.dst = int(v.Int())
		}
	}

	if v := gjson.GetBytes(data, "shell.prompt"); v.Exists() {
		cfg.Prompt = v.String()
	}

	dims := []struct {
		key string
		dst *uint32
	}{
		{"screen.width", &cfg.Width},
		{"screen.height", &cfg.Height},
	}
	for _, spec := range dims {
		if v := gjson.GetBytes(data, spec.key); v.Exists() {
			if v.Type != gjson.Number || v.Int() <= 0 || v.Int() > 1024 {
				return cfg, fmt.Errorf("%s must be between 1 and 1024", spec.key)
			}
			*spec.dst = uint32(v.Int())
		}
	}

	var err error
	gjson.GetBytes(data, "screen.palette").ForEach(func(key, value gjson.Result) bool {
		var (
			index uint64
			rgba  color.RGBA
		)
		if index, err = strconv.ParseUint(key.String(), 10, 8); err != nil || index > uint64(console.White) {
			err = fmt.Errorf("screen.palette: invalid color index %q", key.String())
			return false
		}
		if rgba, err = parseHexColor(value.String()); err != nil {
			err = fmt.Errorf("screen.palette.%s: %w", key.String(), err)
			return false
		}

		if cfg.Palette == nil {
			cfg.Palette = make(map[uint8]color.RGBA)
		}
		cfg.Palette[uint8(index)] = rgba
		return true
	})

	return cfg, err
}

func parseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("expected a #rrggbb color; got %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("expected a #rrggbb color; got %q", s)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
