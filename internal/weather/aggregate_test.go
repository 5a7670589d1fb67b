package weather

import "testing"

func TestAggregateReport(t *testing.T) {
	report := Report{
		Records: []Record{
			{Name: "a", Visual: ConditionRain, Forecast: ConditionRain},
			{Name: "b", Visual: ConditionRain, Forecast: ConditionCloudy},
			{Name: "c", Visual: ConditionFog, Forecast: ConditionUnknown},
		},
		Dropped: []Drop{{Camera: "d", Reason: "404"}},
	}

	tally := AggregateReport(report)
	if tally.Records != 3 || tally.Dropped != 1 || tally.Mismatches != 2 {
		t.Fatalf("unexpected tally: %+v", tally)
	}
	if tally.Prevailing != ConditionRain {
		t.Fatalf("expected prevailing rain, got %s", tally.Prevailing)
	}
	if tally.Forecast[ConditionUnknown] != 1 {
		t.Fatalf("expected one unknown forecast, got %d", tally.Forecast[ConditionUnknown])
	}
}

func TestAggregateEmptyReport(t *testing.T) {
	tally := AggregateReport(Report{})
	if tally.Prevailing != ConditionUnknown || tally.Records != 0 {
		t.Fatalf("unexpected tally for empty report: %+v", tally)
	}
}

func TestCameraGridTruncates(t *testing.T) {
	g := Camera{Lat: 37.999, Lon: 127.001}.Grid()
	if g.X != 127 || g.Y != 37 {
		t.Fatalf("unexpected grid point: %+v", g)
	}
	if g.Key() != "127:37" {
		t.Fatalf("unexpected key: %s", g.Key())
	}
}
