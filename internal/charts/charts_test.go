package charts

import (
	"encoding/json"
	"testing"
)

func sample() []Point {
	return []Point{{"Mon", 1}, {"Tue", 2}, {"Wed", 3}, {"Thu", 4}, {"Fri", 5}}
}

func TestLine_Defaults(t *testing.T) {
	c := Line(sample())
	if c.Color != DefaultColor {
		t.Errorf("expected default color %s, got %s", DefaultColor, c.Color)
	}
	if c.Height != DefaultHeight {
		t.Errorf("expected default height %d, got %d", DefaultHeight, c.Height)
	}
	if !c.ShowAxis {
		t.Error("expected axes shown by default")
	}
}

func TestBar_Options(t *testing.T) {
	c := Bar(sample(), WithColor("#ff0000"), WithHeight(320), WithAxis(false), WithTitle("Sectors"))
	if c.Color != "#ff0000" || c.Height != 320 || c.ShowAxis || c.Title != "Sectors" {
		t.Errorf("options not applied: %+v", c)
	}
}

func TestPie_SegmentColorsCycle(t *testing.T) {
	colors := Pie(sample()).SegmentColors()
	if len(colors) != 5 {
		t.Fatalf("expected 5 colors, got %d", len(colors))
	}
	if colors[0] != "#0088FE" || colors[3] != "#FF8042" || colors[4] != "#0088FE" {
		t.Errorf("unexpected palette cycle: %v", colors)
	}
}

func TestChart_JSON(t *testing.T) {
	js, err := Line(sample(), WithAxis(false)).JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var decoded struct {
		Type string `json:"type"`
		Data struct {
			Labels   []string `json:"labels"`
			Datasets []struct {
				Data        []float64 `json:"data"`
				BorderColor string    `json:"borderColor"`
			} `json:"datasets"`
		} `json:"data"`
		Options struct {
			Scales struct {
				X struct {
					Display bool `json:"display"`
				} `json:"x"`
			} `json:"scales"`
		} `json:"options"`
	}
	if err := json.Unmarshal([]byte(js), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Type != "line" {
		t.Errorf("expected line, got %s", decoded.Type)
	}
	if len(decoded.Data.Labels) != 5 || decoded.Data.Labels[0] != "Mon" {
		t.Errorf("unexpected labels %v", decoded.Data.Labels)
	}
	if decoded.Data.Datasets[0].BorderColor != DefaultColor {
		t.Errorf("unexpected border color %s", decoded.Data.Datasets[0].BorderColor)
	}
	if decoded.Options.Scales.X.Display {
		t.Error("expected x axis hidden")
	}
}
