package reporting

import "testing"

func TestCompareNoPriorData(t *testing.T) {
	if _, ok := Compare(100, 0); ok {
		t.Fatalf("zero previous must report no comparison")
	}
}

func TestCompareFlatBand(t *testing.T) {
	d, ok := Compare(100, 100)
	if !ok {
		t.Fatalf("expected a comparison")
	}
	if d.Direction != DirectionFlat || d.Percent != 0 {
		t.Fatalf("expected flat with 0%%, got %+v", d)
	}

	// 0.4% movement is still inside the flat band.
	d, _ = Compare(100.4, 100)
	if d.Direction != DirectionFlat {
		t.Fatalf("expected flat for 0.4%%, got %+v", d)
	}

	// 0.5% is the first meaningful movement.
	d, _ = Compare(100.5, 100)
	if d.Direction != DirectionUp || d.Percent != 0.5 {
		t.Fatalf("expected up 0.5, got %+v", d)
	}
}

func TestCompareUpDown(t *testing.T) {
	d, _ := Compare(105, 100)
	if d.Direction != DirectionUp || d.Percent != 5.0 {
		t.Fatalf("expected up 5.0, got %+v", d)
	}

	d, _ = Compare(95, 100)
	if d.Direction != DirectionDown || d.Percent != 5.0 {
		t.Fatalf("expected down 5.0, got %+v", d)
	}
}

func TestCompareRoundsToOneDecimal(t *testing.T) {
	d, _ := Compare(103, 90) // 14.444...%
	if d.Percent != 14.4 {
		t.Fatalf("expected 14.4, got %v", d.Percent)
	}
	d, _ = Compare(85, 90) // -5.555...%
	if d.Direction != DirectionDown || d.Percent != 5.6 {
		t.Fatalf("expected down 5.6, got %+v", d)
	}
}
