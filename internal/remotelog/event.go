package remotelog

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Stack identifies which side of the system emitted an event.
type Stack string

const (
	StackBackend  Stack = "backend"
	StackFrontend Stack = "frontend"
)

// Level is the severity accepted by the remote log service.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Package names the component an event originates from. The allowed set
// depends on the stack.
type Package string

const (
	// backend only
	PackageCache      Package = "cache"
	PackageController Package = "controller"
	PackageCronJob    Package = "cron_job"
	PackageDB         Package = "db"
	PackageDomain     Package = "domain"
	PackageHandler    Package = "handler"
	PackageRepository Package = "repository"
	PackageRoute      Package = "route"
	PackageService    Package = "service"

	// frontend only
	PackageAPI       Package = "api"
	PackageComponent Package = "component"
	PackageHook      Package = "hook"
	PackagePage      Package = "page"
	PackageState     Package = "state"
	PackageStyle     Package = "style"

	// both stacks
	PackageAuth       Package = "auth"
	PackageConfig     Package = "config"
	PackageMiddleware Package = "middleware"
	PackageUtils      Package = "utils"
)

var (
	backendPackages = []Package{
		PackageCache, PackageController, PackageCronJob, PackageDB, PackageDomain,
		PackageHandler, PackageRepository, PackageRoute, PackageService,
	}
	frontendPackages = []Package{
		PackageAPI, PackageComponent, PackageHook, PackagePage, PackageState, PackageStyle,
	}
	commonPackages = []Package{
		PackageAuth, PackageConfig, PackageMiddleware, PackageUtils,
	}
)

// Event is a structured log record submitted to the remote log service.
type Event struct {
	Stack   Stack   `json:"stack" validate:"required,oneof=backend frontend"`
	Level   Level   `json:"level" validate:"required,oneof=debug info warn error fatal"`
	Package Package `json:"package" validate:"required"`
	Message string  `json:"message"`
}

// Receipt is the body returned by the remote service for an accepted event.
type Receipt struct {
	LogID   string `json:"logID"`
	Message string `json:"message"`
}

// AllowedPackages returns the packages an event of the given stack may name.
func AllowedPackages(stack Stack) []Package {
	var own []Package
	switch stack {
	case StackBackend:
		own = backendPackages
	case StackFrontend:
		own = frontendPackages
	default:
		return nil
	}
	out := make([]Package, 0, len(own)+len(commonPackages))
	out = append(out, own...)
	return append(out, commonPackages...)
}

// PackageAllowed reports whether pkg belongs to the allowed set for stack.
func PackageAllowed(stack Stack, pkg Package) bool {
	for _, p := range AllowedPackages(stack) {
		if p == pkg {
			return true
		}
	}
	return false
}

var eventValidator = newEventValidator()

func newEventValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		ev := sl.Current().Interface().(Event)
		// An unknown stack is already reported by its own oneof rule.
		if (ev.Stack != StackBackend && ev.Stack != StackFrontend) || ev.Package == "" {
			return
		}
		if !PackageAllowed(ev.Stack, ev.Package) {
			sl.ReportError(ev.Package, "package", "Package", "stack_package", string(ev.Stack))
		}
	}, Event{})
	return v
}

// InvalidFieldError describes the first field of an Event that failed validation.
type InvalidFieldError struct {
	Field string
	Value string
	Rule  string
}

func (e *InvalidFieldError) Error() string {
	switch e.Rule {
	case "stack_package":
		return "invalid package " + quote(e.Value) + " for stack"
	case "required":
		return e.Field + " is required"
	default:
		return "invalid " + e.Field + " value " + quote(e.Value)
	}
}

func quote(s string) string { return `"` + s + `"` }

// Validate checks the stack, level and package of an event.
func (ev Event) Validate() error {
	err := eventValidator.Struct(ev)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &InvalidFieldError{
		Field: fe.Field(),
		Value: toString(fe.Value()),
		Rule:  fe.Tag(),
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case Stack:
		return string(s)
	case Level:
		return string(s)
	case Package:
		return string(s)
	default:
		return ""
	}
}
