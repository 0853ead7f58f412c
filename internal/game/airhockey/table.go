package airhockey

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table holds the geometry and tuning of a table. Seat 0 defends the low-y
// short wall; seat 1 defends the high-y short wall.
type Table struct {
	Width             float64 `yaml:"width"`
	Height            float64 `yaml:"height"`
	PuckRadius        float64 `yaml:"puck_radius"`
	PaddleRadius      float64 `yaml:"paddle_radius"`
	PuckMaxSpeed      float64 `yaml:"puck_max_speed"`
	PaddleMaxSpeed    float64 `yaml:"paddle_max_speed"`
	GoalWidthRatio    float64 `yaml:"goal_width_ratio"`
	SpawnGap          float64 `yaml:"spawn_gap"`
	WinningScore      int     `yaml:"winning_score"`
	WallRestitution   float64 `yaml:"wall_restitution"`
	PaddleRestitution float64 `yaml:"paddle_restitution"`
	Friction          float64 `yaml:"friction"`
}

// DefaultTable returns the standard 400x800 table.
func DefaultTable() Table {
	return Table{
		Width:             400,
		Height:            800,
		PuckRadius:        10,
		PaddleRadius:      30,
		PuckMaxSpeed:      800,
		PaddleMaxSpeed:    600,
		GoalWidthRatio:    0.2,
		SpawnGap:          40,
		WinningScore:      7,
		WallRestitution:   1.0,
		PaddleRestitution: 1.0,
		Friction:          0,
	}
}

// GoalWidth is the width of each goal mouth.
func (t Table) GoalWidth() float64 {
	return t.Width * t.GoalWidthRatio
}

// inMouth reports whether x lies within the goal mouth centered on a short wall.
func (t Table) inMouth(x float64) bool {
	half := t.GoalWidth() / 2
	return x >= t.Width/2-half && x <= t.Width/2+half
}

// Center is the puck spawn point.
func (t Table) Center() Vec {
	return Vec{t.Width / 2, t.Height / 2}
}

// Spawn returns the paddle spawn point for seat.
func (t Table) Spawn(seat int) Vec {
	if seat == 0 {
		return Vec{t.Width / 2, t.SpawnGap}
	}
	return Vec{t.Width / 2, t.Height - t.SpawnGap}
}

// Validate checks that every body fits on the table.
//
// Postcondition: Returns nil if valid, or an error listing every violation.
func (t Table) Validate() error {
	var errs []string
	if t.Width <= 0 || t.Height <= 0 {
		errs = append(errs, fmt.Sprintf("width and height must be positive, got %gx%g", t.Width, t.Height))
	}
	if t.PuckRadius <= 0 || t.PaddleRadius <= 0 {
		errs = append(errs, "puck_radius and paddle_radius must be positive")
	}
	if 2*t.PaddleRadius >= t.Width || 2*t.PaddleRadius >= t.Height {
		errs = append(errs, fmt.Sprintf("paddle_radius %g does not fit the table", t.PaddleRadius))
	}
	if t.PuckMaxSpeed <= 0 || t.PaddleMaxSpeed <= 0 {
		errs = append(errs, "puck_max_speed and paddle_max_speed must be positive")
	}
	if t.GoalWidthRatio <= 0 || t.GoalWidthRatio > 1 {
		errs = append(errs, fmt.Sprintf("goal_width_ratio must be in (0, 1], got %g", t.GoalWidthRatio))
	}
	if t.SpawnGap < t.PaddleRadius || t.SpawnGap > t.Height/2 {
		errs = append(errs, fmt.Sprintf("spawn_gap must be in [paddle_radius, height/2], got %g", t.SpawnGap))
	}
	if t.WinningScore < 1 {
		errs = append(errs, fmt.Sprintf("winning_score must be >= 1, got %d", t.WinningScore))
	}
	if t.WallRestitution < 0 || t.WallRestitution > 1 || t.PaddleRestitution < 0 || t.PaddleRestitution > 1 {
		errs = append(errs, "restitution values must be in [0, 1]")
	}
	if t.Friction < 0 {
		errs = append(errs, fmt.Sprintf("friction must not be negative, got %g", t.Friction))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// yamlTableFile is the top-level YAML structure for table presets.
type yamlTableFile struct {
	Table Table `yaml:"table"`
}

// LoadTableFile reads and validates a table preset.
//
// Precondition: path must point to a YAML table preset.
// Postcondition: Returns a validated Table or a non-nil error.
func LoadTableFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("reading table file %s: %w", path, err)
	}
	return LoadTableBytes(data)
}

// LoadTableBytes parses a preset from YAML. Keys absent from the preset keep
// their DefaultTable values.
//
// Postcondition: Returns a validated Table or a non-nil error.
func LoadTableBytes(data []byte) (Table, error) {
	file := yamlTableFile{Table: DefaultTable()}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Table{}, fmt.Errorf("parsing table YAML: %w", err)
	}
	if err := file.Table.Validate(); err != nil {
		return Table{}, fmt.Errorf("validating table: %w", err)
	}
	return file.Table, nil
}
