// Package province holds the catalog of Indonesia's 38 provinces used for
// discovery pages, map focus and trivia context.
package province

import (
	"github.com/gosimple/slug"
)

type Province struct {
	Slug       string   `json:"slug"`
	Name       string   `json:"name"`
	Capital    string   `json:"capital"`
	Island     string   `json:"island"`
	IslandSlug string   `json:"islandSlug"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Highlights []string `json:"highlights"`
}

type Catalog struct {
	ordered []Province
	bySlug  map[string]Province
}

func NewCatalog(provinces []Province) *Catalog {
	c := &Catalog{
		ordered: make([]Province, 0, len(provinces)),
		bySlug:  make(map[string]Province, len(provinces)),
	}
	for _, p := range provinces {
		p.Slug = slug.Make(p.Name)
		p.IslandSlug = slug.Make(p.Island)
		c.ordered = append(c.ordered, p)
		c.bySlug[p.Slug] = p
	}
	return c
}

func DefaultCatalog() *Catalog {
	return NewCatalog(seed)
}

// All returns provinces in west-to-east catalog order.
func (c *Catalog) All() []Province {
	out := make([]Province, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// ByIsland filters by island group; the argument may be a name or a slug.
func (c *Catalog) ByIsland(island string) []Province {
	want := slug.Make(island)
	out := []Province{}
	for _, p := range c.ordered {
		if p.IslandSlug == want {
			out = append(out, p)
		}
	}
	return out
}

// Lookup accepts either a slug or a display name.
func (c *Catalog) Lookup(nameOrSlug string) (Province, bool) {
	p, ok := c.bySlug[slug.Make(nameOrSlug)]
	return p, ok
}

var seed = []Province{
	{Name: "Aceh", Capital: "Banda Aceh", Island: "Sumatra", Latitude: 4.6951, Longitude: 96.7494,
		Highlights: []string{"Saman dance", "Baiturrahman Grand Mosque", "Mie Aceh"}},
	{Name: "Sumatera Utara", Capital: "Medan", Island: "Sumatra", Latitude: 2.1154, Longitude: 99.5451,
		Highlights: []string{"Lake Toba", "Batak ulos weaving", "Tor-tor dance"}},
	{Name: "Sumatera Barat", Capital: "Padang", Island: "Sumatra", Latitude: -0.7399, Longitude: 100.8000,
		Highlights: []string{"Rumah Gadang", "Rendang", "Tari Piring"}},
	{Name: "Riau", Capital: "Pekanbaru", Island: "Sumatra", Latitude: 0.2933, Longitude: 101.7068,
		Highlights: []string{"Pacu Jalur boat race", "Siak Palace", "Malay zapin dance"}},
	{Name: "Kepulauan Riau", Capital: "Tanjung Pinang", Island: "Sumatra", Latitude: 3.9457, Longitude: 108.1429,
		Highlights: []string{"Penyengat Island", "Gurindam Dua Belas", "Otak-otak"}},
	{Name: "Jambi", Capital: "Jambi", Island: "Sumatra", Latitude: -1.6101, Longitude: 103.6131,
		Highlights: []string{"Muaro Jambi temples", "Batik Jambi", "Kerinci Seblat"}},
	{Name: "Sumatera Selatan", Capital: "Palembang", Island: "Sumatra", Latitude: -3.3194, Longitude: 103.9144,
		Highlights: []string{"Pempek", "Songket Palembang", "Ampera Bridge"}},
	{Name: "Kepulauan Bangka Belitung", Capital: "Pangkal Pinang", Island: "Sumatra", Latitude: -2.7411, Longitude: 106.4406,
		Highlights: []string{"Granite beaches", "Tin mining heritage", "Martabak Bangka"}},
	{Name: "Bengkulu", Capital: "Bengkulu", Island: "Sumatra", Latitude: -3.5778, Longitude: 102.3464,
		Highlights: []string{"Fort Marlborough", "Tabot festival", "Rafflesia arnoldii"}},
	{Name: "Lampung", Capital: "Bandar Lampung", Island: "Sumatra", Latitude: -4.5586, Longitude: 105.4068,
		Highlights: []string{"Tapis cloth", "Way Kambas elephants", "Krakatau"}},
	{Name: "DKI Jakarta", Capital: "Jakarta", Island: "Java", Latitude: -6.2088, Longitude: 106.8456,
		Highlights: []string{"Kota Tua", "Ondel-ondel", "Kerak telor"}},
	{Name: "Jawa Barat", Capital: "Bandung", Island: "Java", Latitude: -7.0909, Longitude: 107.6689,
		Highlights: []string{"Angklung", "Jaipongan", "Batik Mega Mendung"}},
	{Name: "Banten", Capital: "Serang", Island: "Java", Latitude: -6.4058, Longitude: 106.0640,
		Highlights: []string{"Baduy villages", "Debus", "Ujung Kulon"}},
	{Name: "Jawa Tengah", Capital: "Semarang", Island: "Java", Latitude: -7.1510, Longitude: 110.1403,
		Highlights: []string{"Borobudur", "Prambanan", "Batik Solo and Pekalongan"}},
	{Name: "DI Yogyakarta", Capital: "Yogyakarta", Island: "Java", Latitude: -7.8753, Longitude: 110.4262,
		Highlights: []string{"Kraton Yogyakarta", "Gudeg", "Wayang kulit"}},
	{Name: "Jawa Timur", Capital: "Surabaya", Island: "Java", Latitude: -7.5361, Longitude: 112.2384,
		Highlights: []string{"Mount Bromo", "Reog Ponorogo", "Karapan sapi"}},
	{Name: "Bali", Capital: "Denpasar", Island: "Bali and Nusa Tenggara", Latitude: -8.3405, Longitude: 115.0920,
		Highlights: []string{"Kecak", "Ngaben", "Subak rice terraces"}},
	{Name: "Nusa Tenggara Barat", Capital: "Mataram", Island: "Bali and Nusa Tenggara", Latitude: -8.6529, Longitude: 117.3616,
		Highlights: []string{"Sasak villages", "Bau Nyale festival", "Mount Rinjani"}},
	{Name: "Nusa Tenggara Timur", Capital: "Kupang", Island: "Bali and Nusa Tenggara", Latitude: -8.6574, Longitude: 121.0794,
		Highlights: []string{"Komodo National Park", "Sasando", "Ikat weaving"}},
	{Name: "Kalimantan Barat", Capital: "Pontianak", Island: "Kalimantan", Latitude: -0.2788, Longitude: 111.4753,
		Highlights: []string{"Equator Monument", "Cap Go Meh Singkawang", "Dayak longhouses"}},
	{Name: "Kalimantan Tengah", Capital: "Palangka Raya", Island: "Kalimantan", Latitude: -1.6815, Longitude: 113.3824,
		Highlights: []string{"Tanjung Puting orangutans", "Tiwah ceremony", "Mandau"}},
	{Name: "Kalimantan Selatan", Capital: "Banjarbaru", Island: "Kalimantan", Latitude: -3.0926, Longitude: 115.2838,
		Highlights: []string{"Lok Baintan floating market", "Sasirangan cloth", "Soto Banjar"}},
	{Name: "Kalimantan Timur", Capital: "Samarinda", Island: "Kalimantan", Latitude: 0.5387, Longitude: 116.4194,
		Highlights: []string{"Mahakam River", "Derawan Islands", "Erau festival"}},
	{Name: "Kalimantan Utara", Capital: "Tanjung Selor", Island: "Kalimantan", Latitude: 3.0731, Longitude: 116.0414,
		Highlights: []string{"Kayan Mentarang", "Tidung culture", "Irau festival"}},
	{Name: "Sulawesi Utara", Capital: "Manado", Island: "Sulawesi", Latitude: 0.6247, Longitude: 123.9750,
		Highlights: []string{"Bunaken marine park", "Tinutuan", "Kabasaran dance"}},
	{Name: "Gorontalo", Capital: "Gorontalo", Island: "Sulawesi", Latitude: 0.6999, Longitude: 122.4467,
		Highlights: []string{"Whale sharks of Botubarani", "Karawo embroidery", "Otanaha fort"}},
	{Name: "Sulawesi Tengah", Capital: "Palu", Island: "Sulawesi", Latitude: -1.4300, Longitude: 121.4456,
		Highlights: []string{"Lore Lindu megaliths", "Togean Islands", "Kaili weaving"}},
	{Name: "Sulawesi Barat", Capital: "Mamuju", Island: "Sulawesi", Latitude: -2.8441, Longitude: 119.2321,
		Highlights: []string{"Sandeq sailing race", "Mandar silk", "Mamasa highlands"}},
	{Name: "Sulawesi Selatan", Capital: "Makassar", Island: "Sulawesi", Latitude: -3.6688, Longitude: 119.9741,
		Highlights: []string{"Toraja Tongkonan", "Pinisi boats", "Fort Rotterdam"}},
	{Name: "Sulawesi Tenggara", Capital: "Kendari", Island: "Sulawesi", Latitude: -4.1449, Longitude: 122.1746,
		Highlights: []string{"Wakatobi", "Buton fortress", "Lulo dance"}},
	{Name: "Maluku", Capital: "Ambon", Island: "Maluku", Latitude: -3.2385, Longitude: 130.1453,
		Highlights: []string{"Banda Neira spice islands", "Cakalele dance", "Papeda"}},
	{Name: "Maluku Utara", Capital: "Sofifi", Island: "Maluku", Latitude: 1.5709, Longitude: 127.8088,
		Highlights: []string{"Ternate sultanate", "Clove gardens", "Mount Gamalama"}},
	{Name: "Papua", Capital: "Jayapura", Island: "Papua", Latitude: -2.5337, Longitude: 140.7181,
		Highlights: []string{"Lake Sentani festival", "Bark painting", "Papeda"}},
	{Name: "Papua Barat", Capital: "Manokwari", Island: "Papua", Latitude: -1.3361, Longitude: 133.1747,
		Highlights: []string{"Arfak Mountains", "Teluk Cenderawasih whale sharks", "Mansinam Island"}},
	{Name: "Papua Selatan", Capital: "Merauke", Island: "Papua", Latitude: -7.4960, Longitude: 140.4018,
		Highlights: []string{"Wasur National Park", "Asmat wood carving", "Musamus termite mounds"}},
	{Name: "Papua Tengah", Capital: "Nabire", Island: "Papua", Latitude: -3.8960, Longitude: 136.3640,
		Highlights: []string{"Puncak Jaya", "Paniai lakes", "Mee culture"}},
	{Name: "Papua Pegunungan", Capital: "Wamena", Island: "Papua", Latitude: -4.0960, Longitude: 138.9470,
		Highlights: []string{"Baliem Valley festival", "Honai houses", "Dani culture"}},
	{Name: "Papua Barat Daya", Capital: "Sorong", Island: "Papua", Latitude: -0.8762, Longitude: 131.2558,
		Highlights: []string{"Raja Ampat", "Wayag karst islands", "Moi culture"}},
}
