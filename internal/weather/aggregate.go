package weather

// Tally summarizes the records of a run.
type Tally struct {
	Records    int               `json:"records"`
	Dropped    int               `json:"dropped"`
	Mismatches int               `json:"mismatches"`
	Visual     map[Condition]int `json:"visual"`
	Forecast   map[Condition]int `json:"forecast"`
	// Prevailing is the most common visual condition (first in Conditions order if tied).
	Prevailing Condition `json:"prevailing"`
}

// AggregateReport counts conditions and mismatches across a report.
func AggregateReport(report Report) Tally {
	t := Tally{
		Records:    len(report.Records),
		Dropped:    len(report.Dropped),
		Visual:     make(map[Condition]int),
		Forecast:   make(map[Condition]int),
		Prevailing: ConditionUnknown,
	}

	for _, r := range report.Records {
		t.Visual[r.Visual]++
		t.Forecast[r.Forecast]++
		if r.Mismatch() {
			t.Mismatches++
		}
	}

	bestCount := 0
	for _, cond := range Conditions {
		if count := t.Visual[cond]; count > bestCount {
			bestCount = count
			t.Prevailing = cond
		}
	}

	return t
}
