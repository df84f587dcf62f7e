package router

import (
	"errors"
	"reflect"
	"testing"
)

func recordingMiddleware(name string, log *[]string) Middleware {
	return MiddlewareFunc(func(m *Match, next func() error) error {
		*log = append(*log, name)
		return next()
	})
}

func TestMiddlewareFuncHandle(t *testing.T) {
	called := false
	mw := MiddlewareFunc(func(m *Match, next func() error) error {
		called = true
		return next()
	})

	err := mw.Handle(nil, func() error { return nil })
	if err != nil {
		t.Errorf("Handle() error = %v", err)
	}
	if !called {
		t.Error("middleware was not called")
	}
}

func TestComposeEmpty(t *testing.T) {
	called := false
	final := func() error {
		called = true
		return nil
	}

	if err := Compose(nil, nil, final); err != nil {
		t.Errorf("Compose() error = %v", err)
	}
	if !called {
		t.Error("final was not called")
	}
}

func TestComposeOrder(t *testing.T) {
	var log []string
	mw := []Middleware{
		recordingMiddleware("first", &log),
		recordingMiddleware("second", &log),
	}

	err := Compose(&Match{}, mw, func() error {
		log = append(log, "final")
		return nil
	})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	want := []string{"first", "second", "final"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("order = %v, want %v", log, want)
	}
}

func TestComposeStopsOnError(t *testing.T) {
	errDenied := errors.New("denied")
	finalCalled := false

	mw := []Middleware{
		MiddlewareFunc(func(m *Match, next func() error) error {
			return errDenied
		}),
	}

	err := Compose(nil, mw, func() error {
		finalCalled = true
		return nil
	})
	if !errors.Is(err, errDenied) {
		t.Errorf("Compose() error = %v, want %v", err, errDenied)
	}
	if finalCalled {
		t.Error("final should not run after an error")
	}
}

func TestComposePassesMatch(t *testing.T) {
	want := &Match{Path: "/application"}
	var got *Match

	mw := []Middleware{
		MiddlewareFunc(func(m *Match, next func() error) error {
			got = m
			return next()
		}),
	}
	if err := Compose(want, mw, func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("middleware got %p, want %p", got, want)
	}
}

func TestChain(t *testing.T) {
	var log []string
	chained := Chain(
		recordingMiddleware("a", &log),
		recordingMiddleware("b", &log),
	)

	err := Compose(nil, []Middleware{chained, recordingMiddleware("c", &log)}, func() error {
		log = append(log, "final")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"a", "b", "c", "final"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("order = %v, want %v", log, want)
	}
}

func TestSkipAndOnly(t *testing.T) {
	isStatus := func(m *Match) bool { return m.Path == "/status" }

	tests := []struct {
		name string
		wrap func(func(*Match) bool, Middleware) Middleware
		path string
		want []string
	}{
		{"skip matching", Skip, "/status", []string{"final"}},
		{"skip other", Skip, "/other", []string{"mw", "final"}},
		{"only matching", Only, "/status", []string{"mw", "final"}},
		{"only other", Only, "/other", []string{"final"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log []string
			mw := tt.wrap(isStatus, recordingMiddleware("mw", &log))
			err := mw.Handle(&Match{Path: tt.path}, func() error {
				log = append(log, "final")
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(log, tt.want) {
				t.Errorf("log = %v, want %v", log, tt.want)
			}
		})
	}
}

func TestRouterStoresMiddlewareForCompose(t *testing.T) {
	var log []string
	r := New()
	if err := r.Use(recordingMiddleware("one", &log), recordingMiddleware("two", &log)); err != nil {
		t.Fatal(err)
	}
	if len(log) != 0 {
		t.Fatal("Use must not run middleware")
	}

	if err := Compose(nil, r.Middleware(), func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(log, []string{"one", "two"}) {
		t.Errorf("log = %v", log)
	}
}
