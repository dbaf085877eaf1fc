package policy

import "testing"

func TestWeights(t *testing.T) {
	p := Default()

	vw, lw := p.Weights(true)
	if vw != 0.3 || lw != 0.7 {
		t.Errorf("exact-term weights: got vector=%g lexical=%g, want 0.3/0.7", vw, lw)
	}
	if lw <= vw {
		t.Error("exact-term queries must weight lexical above vector")
	}

	vw, lw = p.Weights(false)
	if vw != 0.7 || lw != 0.3 {
		t.Errorf("semantic weights: got vector=%g lexical=%g, want 0.7/0.3", vw, lw)
	}
	if vw <= lw {
		t.Error("semantic queries must weight vector above lexical")
	}
}

func TestIsGenericTitle(t *testing.T) {
	p := Default()
	if !p.IsGenericTitle("Developer") {
		t.Error("expected 'Developer' to be generic (case-insensitive)")
	}
	if p.IsGenericTitle("Kubernetes") {
		t.Error("'Kubernetes' is not a generic role title")
	}
}

func TestNew_CustomTitles(t *testing.T) {
	p := New([]string{"wizard"})
	if !p.IsGenericTitle("wizard") {
		t.Error("expected custom title to be generic")
	}
	if p.IsGenericTitle("developer") {
		t.Error("custom list replaces the default list")
	}
}
