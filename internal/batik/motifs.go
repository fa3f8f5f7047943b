package batik

import (
	"strings"

	"github.com/gosimple/slug"
)

type Motif struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Origin   string `json:"origin"`
	Province string `json:"province"`
	Meaning  string `json:"meaning"`
}

type Catalog struct {
	ordered []Motif
	bySlug  map[string]Motif
}

func NewCatalog(motifs []Motif) *Catalog {
	c := &Catalog{bySlug: make(map[string]Motif, len(motifs))}
	for _, m := range motifs {
		m.Slug = slug.Make(m.Name)
		c.ordered = append(c.ordered, m)
		c.bySlug[m.Slug] = m
	}
	return c
}

func DefaultCatalog() *Catalog {
	return NewCatalog(seedMotifs)
}

func (c *Catalog) All() []Motif {
	out := make([]Motif, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Lookup resolves a motif by slug or by a classifier label such as
// "batik_parang" or "Batik Mega Mendung".
func (c *Catalog) Lookup(label string) (Motif, bool) {
	s := slug.Make(strings.ReplaceAll(label, "_", " "))
	if m, ok := c.bySlug[s]; ok {
		return m, true
	}
	m, ok := c.bySlug[strings.TrimPrefix(s, "batik-")]
	return m, ok
}

var seedMotifs = []Motif{
	{Name: "Parang", Origin: "Yogyakarta and Surakarta", Province: "DI Yogyakarta",
		Meaning: "Diagonal blade-like waves for unbroken struggle and strength; once reserved for the royal court."},
	{Name: "Kawung", Origin: "Yogyakarta", Province: "DI Yogyakarta",
		Meaning: "Four ovals of the aren palm fruit, symbolising purity and a just ruler."},
	{Name: "Mega Mendung", Origin: "Cirebon", Province: "Jawa Barat",
		Meaning: "Layered rain clouds for patience and a cool head, showing Chinese influence on the north coast."},
	{Name: "Truntum", Origin: "Surakarta", Province: "Jawa Tengah",
		Meaning: "Small blossoms for love that grows again; worn by parents of the bride."},
	{Name: "Sido Mukti", Origin: "Surakarta", Province: "Jawa Tengah",
		Meaning: "A wish for lasting happiness and prosperity, worn at weddings."},
	{Name: "Sekar Jagad", Origin: "Yogyakarta and Surakarta", Province: "DI Yogyakarta",
		Meaning: "A map of many flowers for the beauty of diversity."},
	{Name: "Tujuh Rupa", Origin: "Pekalongan", Province: "Jawa Tengah",
		Meaning: "Bright flora and fauna from the coastal workshops of Pekalongan."},
	{Name: "Lasem", Origin: "Lasem, Rembang", Province: "Jawa Tengah",
		Meaning: "Blood-red Chinese-Javanese patterns such as latohan and phoenix."},
	{Name: "Insang", Origin: "Pontianak", Province: "Kalimantan Barat",
		Meaning: "Fish gills of the Kapuas River for the Malay livelihood of the river."},
	{Name: "Gentongan", Origin: "Tanjung Bumi, Madura", Province: "Jawa Timur",
		Meaning: "Cloth dyed for months in earthen jars (gentong), giving deep lasting colours."},
	{Name: "Sasirangan", Origin: "Banjar", Province: "Kalimantan Selatan",
		Meaning: "Tie-and-stitch resist dyed cloth once used in healing rituals."},
	{Name: "Tambal", Origin: "Yogyakarta", Province: "DI Yogyakarta",
		Meaning: "Patchwork of motifs believed to help mend the wearer's health."},
}
