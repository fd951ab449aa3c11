// Package resolver decides, per build target, which components are enabled.
//
// A Registry holds the parsed components. Resolving a model.Target walks each
// component's required interfaces in declaration order, follows the target's
// routing to the chosen provider, and records either the transitive closure
// of providers or the first reason the component cannot be built: an unrouted
// interface, a route to a missing component, an unsatisfied version
// constraint, a disabled provider, or a dependency cycle.
//
// Results are cached per target ID and are read-only:
//
//	reg, err := resolver.New(components...)
//	res, err := reg.Resolve(ctx, target)
//	for c := range res.IterEnabled() {
//		...
//	}
//
// Disablement is a state, not an error. Only references to unknown
// components, or to components of the wrong kind, produce a LookupError.
package resolver
