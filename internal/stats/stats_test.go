package stats

import (
	"errors"
	"math"
	"testing"
)

func TestPercentChange(t *testing.T) {
	got, err := PercentChange(100, 150)
	if err != nil {
		t.Fatal(err)
	}
	if got != 50.0 {
		t.Errorf("PercentChange(100, 150) = %v, want 50.0", got)
	}

	got, err = PercentChange(4000.0, 3950.0)
	if err != nil {
		t.Fatal(err)
	}
	if got != -1.25 {
		t.Errorf("PercentChange(4000, 3950) = %v, want -1.25", got)
	}
}

func TestPercentChangeDegenerateBaseline(t *testing.T) {
	if _, err := PercentChange(0, 100); !errors.Is(err, ErrDegenerateBaseline) {
		t.Errorf("PercentChange(0, 100) err = %v, want ErrDegenerateBaseline", err)
	}
	if _, err := PercentChange(math.NaN(), 100); !errors.Is(err, ErrDegenerateBaseline) {
		t.Errorf("PercentChange(NaN, 100) err = %v, want ErrDegenerateBaseline", err)
	}
}

func TestCorrelationPerfect(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{10, 20, 30, 40, 50}

	r, err := Correlation(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(r-1.0) > 1e-12 {
		t.Errorf("Correlation = %v, want 1.0", r)
	}

	inverted := []float64{50, 40, 30, 20, 10}
	r, err = Correlation(a, inverted)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(r+1.0) > 1e-12 {
		t.Errorf("Correlation = %v, want -1.0", r)
	}
}

func TestCorrelationConstantSeries(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	constant := []float64{7, 7, 7, 7}
	if _, err := Correlation(a, constant); !errors.Is(err, ErrInsufficientVariance) {
		t.Errorf("constant series err = %v, want ErrInsufficientVariance", err)
	}
	if _, err := Correlation(constant, a); !errors.Is(err, ErrInsufficientVariance) {
		t.Errorf("constant series err = %v, want ErrInsufficientVariance", err)
	}
}

func TestCorrelationInsufficientData(t *testing.T) {
	if _, err := Correlation([]float64{1, 2, 3}, []float64{4, 5, 6}); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("three samples err = %v, want ErrInsufficientData", err)
	}
	if _, err := Correlation([]float64{1, 2, 3, 4}, []float64{1, 2, 3}); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("length mismatch err = %v, want ErrInsufficientData", err)
	}
}

func TestRatioAndMissRate(t *testing.T) {
	r, err := Ratio(50, 200)
	if err != nil || r != 0.25 {
		t.Errorf("Ratio(50, 200) = %v, %v", r, err)
	}
	if _, err := Ratio(1, 0); !errors.Is(err, ErrDegenerateBaseline) {
		t.Errorf("Ratio by zero err = %v", err)
	}

	rate, err := MissRate(25, 100)
	if err != nil || rate != 25.0 {
		t.Errorf("MissRate(25, 100) = %v, %v", rate, err)
	}
	if _, err := MissRate(25, 0); !errors.Is(err, ErrDegenerateBaseline) {
		t.Errorf("MissRate zero refs err = %v", err)
	}
}

func TestInterpretCorrelation(t *testing.T) {
	cases := map[float64]string{
		0.9:  "positive",
		0.5:  "weak",
		0.0:  "weak",
		-0.5: "weak",
		-0.9: "negative",
	}
	for r, want := range cases {
		if got := InterpretCorrelation(r); got != want {
			t.Errorf("InterpretCorrelation(%v) = %q, want %q", r, got, want)
		}
	}
}
