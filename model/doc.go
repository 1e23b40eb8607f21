// Package model defines the oracle abstraction the execution graph depends
// on: a normalized Request/Response pair, a streaming Generate contract and
// helpers for draining it (GenerateText) or requesting schema-constrained
// structured output (GenerateStructured). Vendor adapters live in the
// model/openai and model/anthropic subpackages; the core never imports a
// specific provider.
package model
