package trivia

import (
	"hash/fnv"
)

// Question is one daily trivia item. Answer is the index into Options.
type Question struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Province    string   `json:"province,omitempty"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"-"`
	Explanation string   `json:"-"`
	Difficulty  int      `json:"difficulty"`
}

// Points awarded for answering q correctly.
func (q Question) Points() int {
	return 10 * q.Difficulty
}

// PublicQuestion is what a player sees before answering.
type PublicQuestion struct {
	ID         string   `json:"id"`
	Category   string   `json:"category"`
	Province   string   `json:"province,omitempty"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Difficulty int      `json:"difficulty"`
	Points     int      `json:"points"`
}

func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:         q.ID,
		Category:   q.Category,
		Province:   q.Province,
		Question:   q.Question,
		Options:    q.Options,
		Difficulty: q.Difficulty,
		Points:     q.Points(),
	}
}

type Bank struct {
	questions []Question
	byID      map[string]Question
}

func NewBank(questions []Question) *Bank {
	b := &Bank{
		questions: questions,
		byID:      make(map[string]Question, len(questions)),
	}
	for _, q := range questions {
		b.byID[q.ID] = q
	}
	return b
}

// DefaultBank is the built-in Indonesian culture question set.
func DefaultBank() *Bank {
	return NewBank(SeededQuestions())
}

func (b *Bank) Len() int {
	return len(b.questions)
}

func (b *Bank) ByID(id string) (Question, bool) {
	q, ok := b.byID[id]
	return q, ok
}

// Daily picks the question for a trivia day. Every player gets the same
// question on the same day.
func (b *Bank) Daily(day string) Question {
	h := fnv.New32a()
	h.Write([]byte(day))
	return b.questions[int(h.Sum32()%uint32(len(b.questions)))]
}

func SeededQuestions() []Question {
	return []Question{
		{ID: "nk-001", Category: "dance", Province: "Bali", Difficulty: 1,
			Question: "Which province is the Kecak dance from?",
			Options:  []string{"Jawa Barat", "Bali", "Sumatera Barat", "Papua"}, Answer: 1,
			Explanation: "Kecak was developed in Bali in the 1930s from the sanghyang trance ritual."},
		{ID: "nk-002", Category: "culinary", Province: "Sumatera Barat", Difficulty: 1,
			Question: "Rendang is a heritage dish of which ethnic group?",
			Options:  []string{"Javanese", "Bugis", "Minangkabau", "Dayak"}, Answer: 2,
			Explanation: "Rendang comes from the Minangkabau people of West Sumatra."},
		{ID: "nk-003", Category: "heritage", Province: "Jawa Tengah", Difficulty: 1,
			Question: "In which province is Borobudur temple located?",
			Options:  []string{"DI Yogyakarta", "Jawa Tengah", "Jawa Timur", "Banten"}, Answer: 1,
			Explanation: "Borobudur stands in Magelang Regency, Central Java."},
		{ID: "nk-004", Category: "architecture", Province: "Sumatera Barat", Difficulty: 1,
			Question: "What is the traditional house of the Minangkabau called?",
			Options:  []string{"Joglo", "Tongkonan", "Rumah Gadang", "Honai"}, Answer: 2,
			Explanation: "Rumah Gadang is known for its curved, buffalo-horn shaped roof."},
		{ID: "nk-005", Category: "architecture", Province: "Sulawesi Selatan", Difficulty: 2,
			Question: "The Tongkonan house belongs to which people?",
			Options:  []string{"Toraja", "Bugis", "Batak", "Sasak"}, Answer: 0,
			Explanation: "Tongkonan are the ancestral houses of the Toraja in South Sulawesi."},
		{ID: "nk-006", Category: "architecture", Province: "Papua Pegunungan", Difficulty: 2,
			Question: "Where is the round Honai house traditionally found?",
			Options:  []string{"Kalimantan", "Maluku", "Papua", "Nusa Tenggara Timur"}, Answer: 2,
			Explanation: "Honai are built by the highland peoples of Papua around the Baliem Valley."},
		{ID: "nk-007", Category: "music", Province: "Jawa Barat", Difficulty: 1,
			Question: "What material is the angklung made from?",
			Options:  []string{"Wood", "Bamboo", "Bronze", "Coconut shell"}, Answer: 1,
			Explanation: "The Sundanese angklung is made of bamboo tubes tuned to a note each."},
		{ID: "nk-008", Category: "batik", Difficulty: 2,
			Question: "In which year did UNESCO inscribe Indonesian batik as Intangible Cultural Heritage?",
			Options:  []string{"2003", "2009", "2012", "2015"}, Answer: 1,
			Explanation: "Batik was inscribed on 2 October 2009, now celebrated as National Batik Day."},
		{ID: "nk-009", Category: "batik", Province: "Jawa Barat", Difficulty: 2,
			Question: "The Mega Mendung batik motif comes from which city?",
			Options:  []string{"Solo", "Pekalongan", "Cirebon", "Lasem"}, Answer: 2,
			Explanation: "Mega Mendung, the cloud motif, is the signature batik of Cirebon."},
		{ID: "nk-010", Category: "nature", Province: "Nusa Tenggara Timur", Difficulty: 1,
			Question: "Komodo dragons live in the wild in which province?",
			Options:  []string{"Nusa Tenggara Barat", "Nusa Tenggara Timur", "Maluku", "Sulawesi Tengah"}, Answer: 1,
			Explanation: "Komodo National Park lies in East Nusa Tenggara."},
		{ID: "nk-011", Category: "dance", Province: "Aceh", Difficulty: 1,
			Question: "The Saman dance originates from which province?",
			Options:  []string{"Aceh", "Sumatera Utara", "Riau", "Lampung"}, Answer: 0,
			Explanation: "Saman comes from the Gayo people of Aceh."},
		{ID: "nk-012", Category: "geography", Province: "Kalimantan Timur", Difficulty: 2,
			Question: "What is the capital of Kalimantan Timur?",
			Options:  []string{"Balikpapan", "Samarinda", "Banjarmasin", "Pontianak"}, Answer: 1,
			Explanation: "Samarinda, on the Mahakam River, is the provincial capital."},
		{ID: "nk-013", Category: "culinary", Province: "Sumatera Selatan", Difficulty: 1,
			Question: "Pempek is the signature dish of which city?",
			Options:  []string{"Padang", "Medan", "Palembang", "Jambi"}, Answer: 2,
			Explanation: "Pempek fish cakes with cuko sauce come from Palembang."},
		{ID: "nk-014", Category: "performing-arts", Difficulty: 2,
			Question: "Traditional wayang kulit puppets are made from what?",
			Options:  []string{"Wood", "Paper", "Buffalo hide", "Cloth"}, Answer: 2,
			Explanation: "Wayang kulit figures are carved and painted from buffalo hide."},
		{ID: "nk-015", Category: "heritage", Difficulty: 2,
			Question: "Which traditional dagger was proclaimed a UNESCO masterpiece in 2005?",
			Options:  []string{"Kujang", "Keris", "Mandau", "Rencong"}, Answer: 1,
			Explanation: "The Indonesian keris was proclaimed in 2005 and inscribed in 2008."},
		{ID: "nk-016", Category: "heritage", Difficulty: 2,
			Question: "The mandau is the traditional blade of which people?",
			Options:  []string{"Dayak", "Bugis", "Asmat", "Batak"}, Answer: 0,
			Explanation: "The mandau is carried by Dayak peoples across Kalimantan."},
		{ID: "nk-017", Category: "nature", Province: "Sumatera Utara", Difficulty: 1,
			Question: "Lake Toba is located in which province?",
			Options:  []string{"Sumatera Barat", "Sumatera Utara", "Aceh", "Riau"}, Answer: 1,
			Explanation: "Lake Toba, a supervolcano caldera, is in North Sumatra."},
		{ID: "nk-018", Category: "heritage", Province: "Sulawesi Selatan", Difficulty: 3,
			Question: "The pinisi sailing ship is traditionally built by which people?",
			Options:  []string{"Bugis and Konjo", "Bajo", "Minahasa", "Ambonese"}, Answer: 0,
			Explanation: "Pinisi boatbuilding in Bulukumba, South Sulawesi, is a UNESCO heritage element."},
		{ID: "nk-019", Category: "dance", Province: "Sumatera Barat", Difficulty: 2,
			Question: "Tari Piring, the plate dance, comes from which province?",
			Options:  []string{"Sumatera Barat", "Bengkulu", "Jambi", "Kalimantan Selatan"}, Answer: 0,
			Explanation: "Tari Piring is a Minangkabau dance from West Sumatra."},
		{ID: "nk-020", Category: "music", Difficulty: 2,
			Question: "Gamelan gongs and metallophones are usually cast from which metal?",
			Options:  []string{"Aluminium", "Bronze", "Silver", "Iron"}, Answer: 1,
			Explanation: "Fine gamelan sets are forged from bronze, an alloy of copper and tin."},
		{ID: "nk-021", Category: "geography", Difficulty: 2,
			Question: "How many provinces does Indonesia have since the 2022 expansion in Papua?",
			Options:  []string{"34", "36", "38", "40"}, Answer: 2,
			Explanation: "Four new Papuan provinces brought the total to 38."},
		{ID: "nk-022", Category: "performing-arts", Province: "Jawa Timur", Difficulty: 2,
			Question: "The Reog masked dance comes from which regency?",
			Options:  []string{"Ponorogo", "Banyuwangi", "Kediri", "Madiun"}, Answer: 0,
			Explanation: "Reog Ponorogo features the huge tiger and peacock mask called dadak merak."},
		{ID: "nk-023", Category: "textile", Province: "Sumatera Utara", Difficulty: 2,
			Question: "Ulos is the traditional woven cloth of which people?",
			Options:  []string{"Batak", "Minangkabau", "Sasak", "Toraja"}, Answer: 0,
			Explanation: "Ulos is given at Batak life ceremonies as a symbol of blessing."},
		{ID: "nk-024", Category: "culinary", Province: "DI Yogyakarta", Difficulty: 1,
			Question: "Gudeg is the signature dish of which city?",
			Options:  []string{"Surabaya", "Yogyakarta", "Semarang", "Bandung"}, Answer: 1,
			Explanation: "Gudeg is young jackfruit slow-cooked in palm sugar and coconut milk."},
		{ID: "nk-025", Category: "nature", Province: "Jawa Timur", Difficulty: 1,
			Question: "Mount Bromo is located in which province?",
			Options:  []string{"Jawa Tengah", "Jawa Timur", "Bali", "Jawa Barat"}, Answer: 1,
			Explanation: "Bromo sits in the Bromo Tengger Semeru National Park, East Java."},
		{ID: "nk-026", Category: "music", Province: "Nusa Tenggara Timur", Difficulty: 3,
			Question: "The sasando string instrument originates from which island?",
			Options:  []string{"Rote", "Lombok", "Sumba", "Flores"}, Answer: 0,
			Explanation: "Sasando is a palm-leaf resonated tube zither from Rote Island."},
		{ID: "nk-027", Category: "ceremony", Province: "Bali", Difficulty: 1,
			Question: "What kind of ceremony is Ngaben in Bali?",
			Options:  []string{"Wedding", "Harvest", "Cremation", "Coming of age"}, Answer: 2,
			Explanation: "Ngaben is the Balinese Hindu cremation ceremony."},
		{ID: "nk-028", Category: "festival", Province: "Riau", Difficulty: 3,
			Question: "The Pacu Jalur long-boat race is held in which province?",
			Options:  []string{"Riau", "Jambi", "Kalimantan Barat", "Bengkulu"}, Answer: 0,
			Explanation: "Pacu Jalur takes place on the Kuantan River in Kuantan Singingi, Riau."},
		{ID: "nk-029", Category: "dance", Province: "Jawa Barat", Difficulty: 1,
			Question: "Jaipongan is a dance from which province?",
			Options:  []string{"Jawa Barat", "Jawa Tengah", "Banten", "DKI Jakarta"}, Answer: 0,
			Explanation: "Jaipongan was created in Karawang, West Java, in the 1970s."},
		{ID: "nk-030", Category: "batik", Difficulty: 3,
			Question: "The Kawung batik motif is based on which shape?",
			Options:  []string{"Lotus petals", "Aren palm fruit", "Clouds", "Ocean waves"}, Answer: 1,
			Explanation: "Kawung's four ovals depict the cross-section of the aren palm fruit."},
	}
}
