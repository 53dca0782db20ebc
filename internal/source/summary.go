package source

import "github.com/matijazezelj/fuelnet/internal/graph"

// Summary holds aggregate counts and price figures for a network.
type Summary struct {
	Source      string         `json:"source,omitempty"`
	Stations    int            `json:"stations"`
	Connections int            `json:"connections"`
	ByArea      map[string]int `json:"by_area"`
	MinPrice    float64        `json:"min_price"`
	MaxPrice    float64        `json:"max_price"`
	MeanPrice   float64        `json:"mean_price"`
}

// Summarize computes a Summary. Stations without an area are counted
// under "unknown". Price figures are zero for an empty network.
func (n *Network) Summarize() Summary {
	return summarize(n.Graph, n.Source)
}

func summarize(g *graph.Graph, src string) Summary {
	sum := Summary{
		Source:      src,
		Stations:    g.Len(),
		Connections: g.EdgeCount(),
		ByArea:      map[string]int{},
	}

	var total float64
	for i, s := range g.Stations() {
		area := s.Area
		if area == "" {
			area = "unknown"
		}
		sum.ByArea[area]++

		total += s.Price
		if i == 0 || s.Price < sum.MinPrice {
			sum.MinPrice = s.Price
		}
		if i == 0 || s.Price > sum.MaxPrice {
			sum.MaxPrice = s.Price
		}
	}
	if sum.Stations > 0 {
		sum.MeanPrice = total / float64(sum.Stations)
	}
	return sum
}
