package minify

import "fmt"

type Level uint8

const (
	None Level = iota
	SingleLine
	Aggressive
)

var levelNames = [...]string{
	None:       "none",
	SingleLine: "single-line",
	Aggressive: "aggressive",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", l)
}

// ParseLevel accepts the names printed by String.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	switch s {
	case "", "off":
		return None, nil
	case "single", "singleline", "single_line":
		return SingleLine, nil
	}
	return None, fmt.Errorf("unknown minify level %q (want none, single-line or aggressive)", s)
}

// MarshalText lets levels round-trip through TOML and flags.
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
