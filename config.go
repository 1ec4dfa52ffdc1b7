package termcore

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"
)

// AvatarSize is one of the four discrete sprite-sheet size tiers.
type AvatarSize int

const (
	SizeTiny AvatarSize = iota
	SizeSmall
	SizeMedium
	SizeLarge
)

var avatarSizeNames = map[string]AvatarSize{
	"tiny":   SizeTiny,
	"small":  SizeSmall,
	"medium": SizeMedium,
	"large":  SizeLarge,
}

func (s AvatarSize) String() string {
	switch s {
	case SizeTiny:
		return "tiny"
	case SizeSmall:
		return "small"
	case SizeMedium:
		return "medium"
	case SizeLarge:
		return "large"
	default:
		return "unknown"
	}
}

// EvolutionThreshold names the interaction count and/or active time
// that promotes the avatar to Level. A level is reached once either
// condition is met, whichever comes first; a zero Interactions or
// ActiveTime leaves that condition out.
type EvolutionThreshold struct {
	Interactions int
	ActiveTime   time.Duration
	Level        int
}

// Config holds every recognized external configuration key from
// spec.md §6. Precedence when loaded via Load is: command line flags
// (applied by the caller before/after Load, not handled here) > the
// COMPANION_* environment variables > the file located by
// $COMPANION_CONFIG > these defaults.
type Config struct {
	ReduceMotion        bool
	RotationInterval    time.Duration
	TargetFrameInterval time.Duration
	AvatarDefaultSize   AvatarSize
	EvolutionThresholds []EvolutionThreshold
	MaxSnapshotMessages int
}

// DefaultConfig returns the documented defaults, including the
// resolution of the "evolution thresholds" open question: a level is
// reached by interaction count or active time, whichever comes first.
func DefaultConfig() Config {
	return Config{
		ReduceMotion:        false,
		RotationInterval:    1000 * time.Millisecond,
		TargetFrameInterval: 100 * time.Millisecond,
		AvatarDefaultSize:   SizeMedium,
		EvolutionThresholds: []EvolutionThreshold{
			{Interactions: 5, ActiveTime: 0, Level: 1},
			{Interactions: 30, ActiveTime: 10 * time.Minute, Level: 2},
			{Interactions: 100, ActiveTime: time.Hour, Level: 3},
		},
		MaxSnapshotMessages: 20,
	}
}

// Load builds a Config from defaults, overlaid by a flat key=value
// file at $COMPANION_CONFIG (if set), overlaid by COMPANION_* env
// vars. This is a deliberately small parser — a flat table, not a
// nested-document format — since nothing in this core's configuration
// surface needs nesting; see DESIGN.md for why no TOML/YAML library is
// pulled in for it. Unknown keys are logged as a warning via logger
// and otherwise ignored.
func Load(logger *LogCapture) Config {
	cfg := DefaultConfig()

	if path := os.Getenv("COMPANION_CONFIG"); path != "" {
		if kv, err := readKeyValueFile(path); err == nil {
			applyKeyValues(&cfg, kv, logger)
		} else if logger != nil {
			logger.Warn("config: could not read %s: %v", path, err)
		}
	}

	applyKeyValues(&cfg, envKeyValues(), logger)

	return cfg
}

func envKeyValues() map[string]string {
	kv := make(map[string]string)
	for _, key := range []string{
		"reduce_motion", "rotation_interval_ms", "target_frame_interval_ms",
		"avatar_default_size", "max_snapshot_messages", "evolution_thresholds",
	} {
		envName := "COMPANION_" + strings.ToUpper(key)
		if v, ok := os.LookupEnv(envName); ok {
			kv[key] = v
		}
	}
	return kv
}

func readKeyValueFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	kv := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		kv[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return kv, scanner.Err()
}

// parseEvolutionThresholds decodes the evolution_thresholds config
// value: comma-separated entries of
// "interactions:active_time_seconds:level", e.g. "5:0:1,30:600:2".
// Matches this config format's flat key=value style rather than
// introducing a nested list/table syntax for one key. Returns false,
// leaving the caller's existing thresholds untouched, if the value
// doesn't parse or decodes to zero entries.
func parseEvolutionThresholds(raw string) ([]EvolutionThreshold, bool) {
	parts := strings.Split(raw, ",")
	thresholds := make([]EvolutionThreshold, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, false
		}
		interactions, err1 := strconv.Atoi(strings.TrimSpace(fields[0]))
		seconds, err2 := strconv.Atoi(strings.TrimSpace(fields[1]))
		level, err3 := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, false
		}
		thresholds = append(thresholds, EvolutionThreshold{
			Interactions: interactions,
			ActiveTime:   time.Duration(seconds) * time.Second,
			Level:        level,
		})
	}
	if len(thresholds) == 0 {
		return nil, false
	}
	return thresholds, true
}

func applyKeyValues(cfg *Config, kv map[string]string, logger *LogCapture) {
	for key, raw := range kv {
		switch key {
		case "reduce_motion":
			if b, err := strconv.ParseBool(raw); err == nil {
				cfg.ReduceMotion = b
			}
		case "rotation_interval_ms":
			if n, err := strconv.Atoi(raw); err == nil {
				cfg.RotationInterval = time.Duration(n) * time.Millisecond
			}
		case "target_frame_interval_ms":
			if n, err := strconv.Atoi(raw); err == nil {
				cfg.TargetFrameInterval = time.Duration(n) * time.Millisecond
			}
		case "avatar_default_size":
			if size, ok := avatarSizeNames[strings.ToLower(raw)]; ok {
				cfg.AvatarDefaultSize = size
			}
		case "max_snapshot_messages":
			if n, err := strconv.Atoi(raw); err == nil {
				cfg.MaxSnapshotMessages = n
			}
		case "evolution_thresholds":
			if thresholds, ok := parseEvolutionThresholds(raw); ok {
				cfg.EvolutionThresholds = thresholds
			} else if logger != nil {
				logger.Warn("config: invalid evolution_thresholds value %q ignored", raw)
			}
		default:
			if logger != nil {
				logger.Warn("config: unrecognized key %q ignored", key)
			}
		}
	}
}
