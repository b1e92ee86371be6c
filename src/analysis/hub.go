package analysis

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/javierwelch/challenge-latam/src/utils"
)

// ToHubColumn is the derived column added by AddToHubFlag.
const ToHubColumn = "to_hub"

// HubTable maps a carrier to the destination city it uses as its hub.
type HubTable struct {
	hubs map[string]string
}

// NewHubTable builds a hub table from a carrier -> hub city map.
func NewHubTable(hubs map[string]string) *HubTable {
	t := &HubTable{hubs: make(map[string]string, len(hubs))}
	for carrier, city := range hubs {
		t.hubs[carrier] = city
	}
	return t
}

// HubTableFromDataFrame builds a hub table from a frame with one row per
// carrier. The first row seen for a carrier wins.
func HubTableFromDataFrame(df dataframe.DataFrame, carrierCol, destCol string) (*HubTable, error) {
	if err := utils.RequireColumns(df, carrierCol, destCol); err != nil {
		return nil, err
	}

	carriers := df.Col(carrierCol).Records()
	cities := df.Col(destCol).Records()

	t := &HubTable{hubs: make(map[string]string, len(carriers))}
	for i, carrier := range carriers {
		if _, ok := t.hubs[carrier]; !ok {
			t.hubs[carrier] = cities[i]
		}
	}
	return t, nil
}

// Hub returns the hub city for a carrier.
func (t *HubTable) Hub(carrier string) (string, bool) {
	city, ok := t.hubs[carrier]
	return city, ok
}

// ToHubFlag reports whether a flight heads to its own carrier's hub. A
// carrier absent from the table counts as not-a-hub-flight rather than an
// error; nothing else is swallowed.
func (t *HubTable) ToHubFlag(carrier, destination string) bool {
	city, ok := t.hubs[carrier]
	if !ok {
		return false
	}
	return destination == city
}

// AddToHubFlag returns a copy of df with a 0/1 to_hub column.
func AddToHubFlag(df dataframe.DataFrame, carrierCol, destCol string, hubs *HubTable) (dataframe.DataFrame, error) {
	if err := utils.RequireColumns(df, carrierCol, destCol); err != nil {
		return df, err
	}

	carriers := df.Col(carrierCol).Records()
	dests := df.Col(destCol).Records()

	flags := make([]int, len(carriers))
	for i := range carriers {
		if hubs.ToHubFlag(carriers[i], dests[i]) {
			flags[i] = 1
		}
	}

	return df.Mutate(series.New(flags, series.Int, ToHubColumn)), nil
}
