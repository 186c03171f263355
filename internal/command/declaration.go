package command

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"

	"github.com/zjrosen/devconsole/internal/log"
)

// ErrEmptyName is returned when a declaration has no command name.
var ErrEmptyName = errors.New("command name is required")

// Declaration marks one function or method as a console command.
type Declaration struct {
	Name string

	// DeclaringType names the type (or package, for free functions) the
	// handler belongs to. It is informational.
	DeclaringType string

	// Owner is the receiver type for instance methods, nil for free functions.
	Owner reflect.Type

	Static bool

	bind func(instance any) (Command, error)
}

// Catalog is an ordered, append-only set of declarations.
type Catalog struct {
	mu    sync.RWMutex
	decls []Declaration
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Default is the process-wide catalog used by Declare and DeclareMethod.
var Default = NewCatalog()

// Add appends d to the catalog. Surrounding whitespace is trimmed from the
// name so it matches what the prompt submits.
func (c *Catalog) Add(d Declaration) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		log.Error(log.CatScan, "Rejected command declaration without a name", "type", d.DeclaringType)
		return fmt.Errorf("declaring %s: %w", d.DeclaringType, ErrEmptyName)
	}
	c.mu.Lock()
	c.decls = append(c.decls, d)
	c.mu.Unlock()
	return nil
}

// Len returns the number of declarations.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.decls)
}

func (c *Catalog) snapshot() []Declaration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Declaration, len(c.decls))
	copy(out, c.decls)
	return out
}

// Declare adds a free-function command to the Default catalog.
func Declare(name string, fn func()) error {
	return Default.Add(FuncDeclaration(name, fn))
}

// DeclareMethod adds an instance-method command to the Default catalog.
// The method runs on whichever live T the locator yields at bind time.
func DeclareMethod[T any](name string, method func(T)) error {
	return Default.Add(MethodDeclaration(name, method))
}

// FuncDeclaration builds a static declaration for fn.
func FuncDeclaration(name string, fn func()) Declaration {
	return Declaration{
		Name:          name,
		DeclaringType: funcPackage(fn),
		Static:        true,
		bind: func(any) (Command, error) {
			return Func(fn), nil
		},
	}
}

// MethodDeclaration builds an instance declaration for method on T.
func MethodDeclaration[T any](name string, method func(T)) Declaration {
	owner := reflect.TypeFor[T]()
	return Declaration{
		Name:          name,
		DeclaringType: owner.String(),
		Owner:         owner,
		bind: func(instance any) (Command, error) {
			typed, ok := instance.(T)
			if !ok {
				return nil, &InstanceTypeError{
					Name:     name,
					Expected: owner.String(),
					Got:      fmt.Sprintf("%T", instance),
				}
			}
			return Bind(typed, method), nil
		},
	}
}

// funcPackage returns the package path of fn, e.g. "github.com/x/y/demo".
func funcPackage(fn func()) string {
	if fn == nil {
		return "<nil>"
	}
	full := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	slash := strings.LastIndex(full, "/")
	if dot := strings.Index(full[slash+1:], "."); dot >= 0 {
		return full[:slash+1+dot]
	}
	return full
}
