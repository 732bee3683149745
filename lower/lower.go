// Package lower translates a host network IR (see the nnir package) into an
// executable GoMLX program.
//
// The engine walks the network's nodes in the supplied topological order and
// dispatches each to a translator by kind: literals become constant tensors,
// inputs become placeholders, operators are built through an injected operator
// registry (see the ops package), and output nodes bind results to the
// network's declared external names. Intermediate results are tracked in a
// tensor registry keyed by (producer identity, output slot), with a one-level
// redirection table used to splice in corrective transforms (layout
// permutations) after a producer.
//
// Usage:
//
//	program, err := lower.Build(backend, ops.StandardRegistry(), network)
//	if err != nil { ... }
//	results, err := program.Run(inputTensor)
//
// A build either returns a complete program or fails with a typed error (see
// ErrorKind); there is no partial-success mode. The engine is single-threaded:
// one Builder owns its registry and binding tables for exactly one build.
package lower
