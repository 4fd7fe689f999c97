package hemodynamics

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Subject maps to the subject table.
type Subject struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Values holds the measured and derived hemodynamic fields of one study.
// A nil field was not measured.
type Values struct {
	SBP  *float64 `db:"sbp" json:"sbp,omitempty"`
	DBP  *float64 `db:"dbp" json:"dbp,omitempty"`
	MAP  *float64 `db:"map" json:"map,omitempty"`
	RA   *float64 `db:"ra" json:"ra,omitempty"`
	PAS  *float64 `db:"pas" json:"pas,omitempty"`
	PAD  *float64 `db:"pad" json:"pad,omitempty"`
	MPAP *float64 `db:"mpap" json:"mpap,omitempty"`
	PCWP *float64 `db:"pcwp" json:"pcwp,omitempty"`
	HR   *float64 `db:"hr" json:"hr,omitempty"`
	CO   *float64 `db:"co" json:"co,omitempty"`
	CI   *float64 `db:"ci" json:"ci,omitempty"`
	SV   *float64 `db:"sv" json:"sv,omitempty"`
	CPO  *float64 `db:"cpo" json:"cpo,omitempty"`
	PAPI *float64 `db:"papi" json:"papi,omitempty"`
	SVR  *float64 `db:"svr" json:"svr,omitempty"`
	PVR  *float64 `db:"pvr" json:"pvr,omitempty"`
}

// Snapshot maps to the snapshot table: one right heart catheterization
// study of a subject.
type Snapshot struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SubjectID uuid.UUID `db:"subject_id" json:"subject_id"`
	TakenAt   time.Time `db:"taken_at" json:"taken_at"`
	Values    Values    `json:"values"`
	Notes     []string  `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Group is the section a metric is listed under on a record page.
type Group string

const (
	GroupFlow       Group = "Flow & performance"
	GroupResistance Group = "Resistance"
	GroupPressures  Group = "Pressures"
)

// SectionOrder is the order of metric sections on a record page.
var SectionOrder = []Group{GroupFlow, GroupResistance, GroupPressures}

// Metric describes one catalog entry.
type Metric struct {
	Key      string
	Label    string
	Short    string
	Unit     string
	Decimals int
	Group    Group
	field    func(*Values) **float64
}

// Raw returns the stored value without rounding.
func (m Metric) Raw(s *Snapshot) *float64 {
	return *m.field(&s.Values)
}

// Value returns the stored value rounded to the metric's precision, or nil.
// Every table cell, chart point and delta reads values through here.
func (m Metric) Value(s *Snapshot) *float64 {
	v := m.Raw(s)
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	p := math.Pow(10, float64(m.Decimals))
	r := math.Round(*v*p) / p
	return &r
}

// Set stores v for this metric.
func (m Metric) Set(s *Snapshot, v *float64) {
	*m.field(&s.Values) = v
}

// Catalog lists every metric in record-page order within its group.
var Catalog = []Metric{
	{Key: "hr", Label: "Heart rate", Short: "HR", Unit: "bpm", Decimals: 0, Group: GroupFlow, field: func(v *Values) **float64 { return &v.HR }},
	{Key: "co", Label: "Cardiac output", Short: "CO", Unit: "L/min", Decimals: 2, Group: GroupFlow, field: func(v *Values) **float64 { return &v.CO }},
	{Key: "ci", Label: "Cardiac index", Short: "CI", Unit: "L/min/m²", Decimals: 1, Group: GroupFlow, field: func(v *Values) **float64 { return &v.CI }},
	{Key: "sv", Label: "Stroke volume", Short: "SV", Unit: "mL", Decimals: 0, Group: GroupFlow, field: func(v *Values) **float64 { return &v.SV }},
	{Key: "cpo", Label: "Cardiac power output", Short: "CPO", Unit: "W", Decimals: 2, Group: GroupFlow, field: func(v *Values) **float64 { return &v.CPO }},
	{Key: "papi", Label: "PA pulsatility index", Short: "PAPi", Unit: "", Decimals: 1, Group: GroupFlow, field: func(v *Values) **float64 { return &v.PAPI }},

	{Key: "svr", Label: "Systemic vascular resistance", Short: "SVR", Unit: "dyn·s·cm-5", Decimals: 0, Group: GroupResistance, field: func(v *Values) **float64 { return &v.SVR }},
	{Key: "pvr", Label: "Pulmonary vascular resistance", Short: "PVR", Unit: "WU", Decimals: 1, Group: GroupResistance, field: func(v *Values) **float64 { return &v.PVR }},

	{Key: "sbp", Label: "Systolic blood pressure", Short: "SBP", Unit: "mmHg", Decimals: 0, Group: GroupPressures, field: func(v *Values) **float64 { return &v.SBP }},
	{Key: "dbp", Label: "Diastolic blood pressure", Short: "DBP", Unit: "mmHg", Decimals: 0, Group: GroupPressures, field: func(v *Values) **float64 { return &v.DBP }},
	{Key: "map", Label: "Mean arterial pressure", Short: "MAP", Unit: "mmHg", Decimals: 0, Group: GroupPressures, field: func(v *Values) **float64 { return &v.MAP }},
	{Key: "ra", Label: "Right atrial pressure", Short: "RA", Unit: "mmHg", Decimals: 0, Group: GroupPressures, field: func(v *Values) **float64 { return &v.RA }},
	{Key: "pas", Label: "PA systolic pressure", Short: "PAS", Unit: "mmHg", Decimals: 0, Group: GroupPressures, field: func(v *Values) **float64 { return &v.PAS }},
	{Key: "pad", Label: "PA diastolic pressure", Short: "PAD", Unit: "mmHg", Decimals: 0, Group: GroupPressures, field: func(v *Values) **float64 { return &v.PAD }},
	{Key: "mpap", Label: "Mean PA pressure", Short: "mPAP", Unit: "mmHg", Decimals: 0, Group: GroupPressures, field: func(v *Values) **float64 { return &v.MPAP }},
	{Key: "pcwp", Label: "Pulmonary capillary wedge pressure", Short: "PCWP", Unit: "mmHg", Decimals: 0, Group: GroupPressures, field: func(v *Values) **float64 { return &v.PCWP }},
}

var catalogIndex = func() map[string]Metric {
	m := make(map[string]Metric, len(Catalog))
	for _, c := range Catalog {
		m[c.Key] = c
	}
	return m
}()

// MetricByKey looks up a catalog entry.
func MetricByKey(key string) (Metric, bool) {
	m, ok := catalogIndex[key]
	return m, ok
}

// MetricsIn returns the catalog entries of one group, in catalog order.
func MetricsIn(g Group) []Metric {
	var out []Metric
	for _, m := range Catalog {
		if m.Group == g {
			out = append(out, m)
		}
	}
	return out
}
