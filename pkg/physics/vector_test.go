package physics

import (
	"math"
	"testing"
)

func TestVector2D_AddSub(t *testing.T) {
	a := Vector2D{X: 1, Y: 2}
	b := Vector2D{X: 3, Y: -4}

	sum := a.Add(b)
	if sum != (Vector2D{X: 4, Y: -2}) {
		t.Errorf("Expected sum (4, -2), got %+v", sum)
	}

	diff := a.Sub(b)
	if diff != (Vector2D{X: -2, Y: 6}) {
		t.Errorf("Expected difference (-2, 6), got %+v", diff)
	}
}

func TestVector2D_Scale(t *testing.T) {
	v := Vector2D{X: 2, Y: -3}.Scale(2.5)
	if v != (Vector2D{X: 5, Y: -7.5}) {
		t.Errorf("Expected (5, -7.5), got %+v", v)
	}
}

func TestVector2D_Length(t *testing.T) {
	v := Vector2D{X: 3, Y: 4}
	if v.Length() != 5 {
		t.Errorf("Expected length 5, got %f", v.Length())
	}
	if v.LengthSquared() != 25 {
		t.Errorf("Expected squared length 25, got %f", v.LengthSquared())
	}
}

func TestVector2D_Normalize(t *testing.T) {
	v := Vector2D{X: 10, Y: 0}.Normalize()
	if v != (Vector2D{X: 1, Y: 0}) {
		t.Errorf("Expected unit vector (1, 0), got %+v", v)
	}

	diag := Vector2D{X: 1, Y: 1}.Normalize()
	if math.Abs(diag.Length()-1) > 1e-12 {
		t.Errorf("Expected unit length, got %f", diag.Length())
	}

	zero := Vector2D{}.Normalize()
	if zero != (Vector2D{}) {
		t.Errorf("Expected zero vector to normalize to zero, got %+v", zero)
	}
}
