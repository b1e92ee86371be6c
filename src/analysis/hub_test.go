package analysis

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

func TestToHubFlag(t *testing.T) {
	hubs := NewHubTable(map[string]string{"X": "HUB"})

	tests := []struct {
		name        string
		carrier     string
		destination string
		want        bool
	}{
		{"flight to own hub", "X", "HUB", true},
		{"flight elsewhere", "X", "OTHER", false},
		{"carrier not in table", "Y", "HUB", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hubs.ToHubFlag(tt.carrier, tt.destination); got != tt.want {
				t.Errorf("ToHubFlag(%q, %q) = %v, want %v", tt.carrier, tt.destination, got, tt.want)
			}
		})
	}
}

func TestHubTableFromDataFrame(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"X", "Y", "X"}, series.String, "OPERA"),
		series.New([]string{"HUB", "LIM", "LATE"}, series.String, "SIGLADES"),
	)

	hubs, err := HubTableFromDataFrame(df, "OPERA", "SIGLADES")
	if err != nil {
		t.Fatalf("HubTableFromDataFrame: %v", err)
	}

	// First row per carrier wins.
	if city, ok := hubs.Hub("X"); !ok || city != "HUB" {
		t.Errorf("Hub(X) = %q, %v; want HUB, true", city, ok)
	}
	if _, ok := hubs.Hub("Z"); ok {
		t.Error("Hub(Z) should miss")
	}
}

func TestAddToHubFlag(t *testing.T) {
	hubs := NewHubTable(map[string]string{"X": "HUB"})
	df := dataframe.New(
		series.New([]string{"X", "X", "Y"}, series.String, "OPERA"),
		series.New([]string{"HUB", "OTHER", "HUB"}, series.String, "SIGLADES"),
	)

	out, err := AddToHubFlag(df, "OPERA", "SIGLADES", hubs)
	if err != nil {
		t.Fatalf("AddToHubFlag: %v", err)
	}

	got := out.Col(ToHubColumn).Records()
	want := []string{"1", "0", "0"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
