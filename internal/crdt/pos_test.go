package crdt

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Pos
		want int
	}{
		{"equal", Pos{5}, Pos{5}, 0},
		{"less digit", Pos{4}, Pos{5}, -1},
		{"greater digit", Pos{6}, Pos{5}, 1},
		{"prefix is less", Pos{5}, Pos{5, 1}, -1},
		{"longer is greater", Pos{5, 0}, Pos{5}, 1},
		{"deep divergence", Pos{5, 3, 9}, Pos{5, 4}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func between(t *testing.T, left, right, p Pos) {
	t.Helper()
	if Compare(left, p) != -1 {
		t.Errorf("expected %v < %v", left, p)
	}
	if Compare(p, right) != -1 {
		t.Errorf("expected %v < %v", p, right)
	}
}

func TestGenerateBetweenSentinels(t *testing.T) {
	p := GenerateBetween(posFirst, posLast, 7)
	between(t, posFirst, posLast, p)
	if len(p) != 1 || p[0] != 8 {
		t.Errorf("expected [8], got %v", p)
	}
}

func TestGenerateBetweenAdjacentDigits(t *testing.T) {
	p := GenerateBetween(Pos{4, 500}, Pos{4, 501}, 100)
	between(t, Pos{4, 500}, Pos{4, 501}, p)
}

func TestGenerateBetweenDeepLeft(t *testing.T) {
	left := Pos{5, 40000}
	right := Pos{6}
	p := GenerateBetween(left, right, 3)
	between(t, left, right, p)
}

func TestGenerateBetweenDeterministic(t *testing.T) {
	a := GenerateBetween(Pos{1}, Pos{9}, 3)
	b := GenerateBetween(Pos{1}, Pos{9}, 3)
	if Compare(a, b) != 0 {
		t.Errorf("expected identical positions, got %v and %v", a, b)
	}
}

func TestGenerateBetweenBiasSpread(t *testing.T) {
	a := GenerateBetween(Pos{1}, Pos{100}, 3)
	b := GenerateBetween(Pos{1}, Pos{100}, 17)
	if Compare(a, b) == 0 {
		t.Errorf("expected distinct positions for distinct biases, got %v", a)
	}
}

func TestGenerateBetweenSequentialAppends(t *testing.T) {
	left := posFirst.Clone()
	prev := left
	for i := 0; i < 200; i++ {
		p := GenerateBetween(prev, posLast, 11)
		between(t, prev, posLast, p)
		prev = p
	}
}

func TestNewPosSuffixDistinguishesReplicas(t *testing.T) {
	a := NewModel("alice")
	b := NewModel("bob")
	pa := a.newPos(posFirst, posLast)
	pb := b.newPos(posFirst, posLast)
	if Compare(pa, pb) == 0 {
		t.Errorf("expected distinct positions from distinct replicas, got %v", pa)
	}
	between(t, posFirst, posLast, pa)
	between(t, posFirst, posLast, pb)
}
