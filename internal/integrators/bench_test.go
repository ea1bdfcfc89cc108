package integrators

import (
	"testing"

	"github.com/san-kum/relsim/internal/polymer"
)

func BenchmarkEuler(b *testing.B) {
	stepper := NewEuler()
	film := polymer.NewFilm(30)
	x := film.DefaultState()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = stepper.Step(film, x, 0, 1e-5)
	}
}

func BenchmarkRK4(b *testing.B) {
	stepper := NewRK4()
	film := polymer.NewFilm(30)
	x := film.DefaultState()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = stepper.Step(film, x, 0, 1e-5)
	}
}

func BenchmarkRosenbrock(b *testing.B) {
	stepper := NewRosenbrock()
	film := polymer.NewFilm(30)
	x := film.DefaultState()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var err error
		x, _, _, err = stepper.StepAdaptive(film, x, 0, 0.01, 1e-6, 1e-9)
		if err != nil {
			b.Fatal(err)
		}
	}
}
