// Package domain contains the core types of the Pergola runtime: the
// transition-table Definition, the mutable WorkflowContext, inbound and
// domain events, and the hook (plugin) contract.
//
// These types are the contract between the runtime and its hosts. They
// carry no behavior beyond validation and construction.
package domain
