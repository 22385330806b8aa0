// Package types contains the request and response shapes shared by the
// service and its transports.
package types

// BirthInput is the diagnosis request.
type BirthInput struct {
	Name      string  `json:"name" yaml:"name"`
	Birthdate string  `json:"birthdate" yaml:"birthdate"` // YYYY-MM-DD
	Birthtime string  `json:"birthtime" yaml:"birthtime"` // HH:MM
	Timezone  string  `json:"timezone" yaml:"timezone"`   // +HH:MM
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Placement is one body's position in the profile.
type Placement struct {
	Sign   string  `json:"sign"`
	House  *int    `json:"house"` // null when undeterminable
	Degree float64 `json:"degree"`
}

// Kabbalah holds the name-derived numbers.
type Kabbalah struct {
	SoulNumber    int `json:"soul_number"`
	DestinyNumber int `json:"destiny_number"`
}

// Maya is the tzolkin position of the birthdate.
type Maya struct {
	Kin       int    `json:"kin"`
	Sigil     string `json:"sigil"`
	Color     string `json:"color"`
	Tone      int    `json:"tone"`
	Wavespell string `json:"wavespell"`
}

// Profile is the diagnosis result. It echoes the input fields.
type Profile struct {
	Name      string  `json:"name"`
	Birthdate string  `json:"birthdate"`
	Birthtime string  `json:"birthtime"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	SunSign         string               `json:"sun_sign"`
	MoonSign        string               `json:"moon_sign"`
	Ascendant       string               `json:"ascendant"`
	NorthNodeSign   string               `json:"north_node_sign"`
	HousePlanets    map[int][]string     `json:"house_planets"`
	ElementBalance  map[string]int       `json:"element_balance"`
	DominantElement string               `json:"dominant_element"`
	Planets         map[string]Placement `json:"planets"`

	LifePathNumber int      `json:"life_path_number"`
	EtoYear        string   `json:"eto_year"`
	Sukuyou        string   `json:"sukuyou"`
	Kabbalah       Kabbalah `json:"kabbalah"`
	Maya           Maya     `json:"maya"`
}

// BatchItem is one entry of a batch response. Exactly one field is set.
type BatchItem struct {
	Profile *Profile   `json:"profile,omitempty"`
	Error   *ItemError `json:"error,omitempty"`
}

// ItemError describes why one batch input produced no profile.
type ItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServiceStats are the diagnosis counters reported on /stats.
type ServiceStats struct {
	DiagnosesServed int64    `json:"diagnosesServed"`
	InvalidInputs   int64    `json:"invalidInputs"`
	ChartFailures   int64    `json:"chartFailures"`
	Bodies          []string `json:"bodies"`
}
