package command

import "fmt"

// Command is the single call shape every registered handler is adapted to.
type Command interface {
	Invoke()
}

// Func adapts a free function to Command.
type Func func()

// Invoke calls f.
func (f Func) Invoke() { f() }

// boundMethod adapts an instance and one of its methods to Command.
type boundMethod[T any] struct {
	instance T
	method   func(T)
}

func (b boundMethod[T]) Invoke() { b.method(b.instance) }

// Bind returns a Command invoking method on instance.
func Bind[T any](instance T, method func(T)) Command {
	return boundMethod[T]{instance: instance, method: method}
}

// InstanceTypeError is returned when a binder receives an object that is
// not of the declaring type.
type InstanceTypeError struct {
	Name     string
	Expected string
	Got      string
}

func (e *InstanceTypeError) Error() string {
	return fmt.Sprintf("command %q: instance is %s, want %s", e.Name, e.Got, e.Expected)
}
