// Package props resolves configuration properties from the process
// environment, .env files and explicit key=value pairs.
//
// # Expressions
//
// A key or a stored value of the form ${name} refers to another property and
// fails with pgscan.ErrPropertyNotFound when it is missing. The form
// ${name:default} falls back to default, which is itself resolved, so
// defaults can nest:
//
//	r := props.New(map[string]string{"app.title": "${APP_NAME:Summer}"})
//	title, _ := r.Required("app.title") // "Summer" unless APP_NAME is set
//
// Only whole-value expressions are recognized; "prefix-${x}" is returned
// literally.
//
// # Typed access
//
// As, AsOr and RequiredAs convert resolved values to Go types:
//
//	timeout, err := props.AsOr(r, "scan.timeout", 30*time.Second)
//
// # Thread Safety
//
// A Resolver is immutable after New and safe for concurrent use.
package props
