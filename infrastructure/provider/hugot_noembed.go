//go:build !embed_model

package provider

import "embed"

// embeddedModelFS is unused without the embed_model build tag; it exists so
// hugot.go's resolveModelPath compiles in both configurations. hasEmbeddedModel
// guards the only call site that reads from it.
var embeddedModelFS embed.FS

const hasEmbeddedModel = false
