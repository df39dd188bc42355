// Package enrichment provides domain types for AI-generated semantic metadata.
package enrichment

import (
	"time"
)

// Type represents the main enrichment category.
type Type string

// Enrichment type constants.
const (
	TypeArchitecture Type = "architecture"
	TypeDevelopment  Type = "development"
	TypeHistory      Type = "history"
	TypeUsage        Type = "usage"
)

// Subtype represents a specific enrichment within a type category.
type Subtype string

// Architecture subtypes.
const (
	SubtypePhysical       Subtype = "physical"
	SubtypeDatabaseSchema Subtype = "database_schema"
)

// Development subtypes.
const (
	SubtypeSnippet        Subtype = "snippet"
	SubtypeSnippetSummary Subtype = "snippet_summary"
	SubtypeExample        Subtype = "example"
	SubtypeExampleSummary Subtype = "example_summary"
	SubtypeChunk          Subtype = "chunk"
)

// History subtypes.
const (
	SubtypeCommitDescription Subtype = "commit_description"
)

// Usage subtypes.
const (
	SubtypeCookbook Subtype = "cookbook"
	SubtypeAPIDocs  Subtype = "api_docs"
	SubtypeWiki     Subtype = "wiki"
)

// EntityTypeKey represents the type of entity an enrichment is attached to.
type EntityTypeKey string

// Entity type key constants.
const (
	EntityTypeCommit     EntityTypeKey = "git_commits"
	EntityTypeSnippet    EntityTypeKey = "enrichments_v2"
	EntityTypeFile       EntityTypeKey = "git_commit_files"
	EntityTypeRepository EntityTypeKey = "git_repos"
)

// subtypesByType records which Subtype values are legal for each Type, the
// grouping the constants above already imply in comments but nothing
// previously enforced. A mismatched pair (e.g. TypeHistory paired with
// SubtypeCookbook) would otherwise sit silently in a handler's enrichment
// record until a reader noticed the `type`/`subtype` columns didn't agree.
var subtypesByType = map[Type]map[Subtype]bool{
	TypeArchitecture: {
		SubtypePhysical:       true,
		SubtypeDatabaseSchema: true,
	},
	TypeDevelopment: {
		SubtypeSnippet:        true,
		SubtypeSnippetSummary: true,
		SubtypeExample:        true,
		SubtypeExampleSummary: true,
		SubtypeChunk:          true,
	},
	TypeHistory: {
		SubtypeCommitDescription: true,
	},
	TypeUsage: {
		SubtypeCookbook: true,
		SubtypeAPIDocs:  true,
		SubtypeWiki:     true,
	},
}

// Enrichment represents AI-generated semantic metadata that can be attached to entities.
// This is an immutable value object identified by its ID once persisted.
type Enrichment struct {
	id        int64
	content   string
	typ       Type
	subtype   Subtype
	entityKey EntityTypeKey
	language  string
	createdAt time.Time
	updatedAt time.Time
}

// NewEnrichment creates an enrichment for new instances (not yet persisted).
func NewEnrichment(typ Type, subtype Subtype, entityKey EntityTypeKey, content string) Enrichment {
	now := time.Now()
	return Enrichment{
		id:        0,
		content:   content,
		typ:       typ,
		subtype:   subtype,
		entityKey: entityKey,
		language:  "",
		createdAt: now,
		updatedAt: now,
	}
}

// NewEnrichmentWithLanguage creates an enrichment with an associated language
// (used for API docs, snippet and chunk enrichments).
func NewEnrichmentWithLanguage(typ Type, subtype Subtype, entityKey EntityTypeKey, content, language string) Enrichment {
	e := NewEnrichment(typ, subtype, entityKey, content)
	e.language = language
	return e
}

// ReconstructEnrichment recreates an enrichment from persistence (for repository use).
func ReconstructEnrichment(
	id int64,
	typ Type,
	subtype Subtype,
	entityKey EntityTypeKey,
	content string,
	language string,
	createdAt time.Time,
	updatedAt time.Time,
) Enrichment {
	return Enrichment{
		id:        id,
		content:   content,
		typ:       typ,
		subtype:   subtype,
		entityKey: entityKey,
		language:  language,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the enrichment's database identifier.
func (e Enrichment) ID() int64 {
	return e.id
}

// Content returns the enrichment content (AI-generated text).
func (e Enrichment) Content() string {
	return e.content
}

// Type returns the enrichment's main type category.
func (e Enrichment) Type() Type {
	return e.typ
}

// Subtype returns the enrichment's specific subtype.
func (e Enrichment) Subtype() Subtype {
	return e.subtype
}

// EntityTypeKey returns the type of entity this enrichment is attached to.
func (e Enrichment) EntityTypeKey() EntityTypeKey {
	return e.entityKey
}

// Language returns the associated language, or an empty string when none was
// set. API docs, snippet and chunk enrichments can carry one.
func (e Enrichment) Language() string {
	return e.language
}

// CreatedAt returns when the enrichment was created.
func (e Enrichment) CreatedAt() time.Time {
	return e.createdAt
}

// UpdatedAt returns when the enrichment was last updated.
func (e Enrichment) UpdatedAt() time.Time {
	return e.updatedAt
}

// IsCommitEnrichment returns true if this enrichment is attached to commits.
func (e Enrichment) IsCommitEnrichment() bool {
	return e.entityKey == EntityTypeCommit
}

// HasValidSubtype reports whether the enrichment's subtype belongs to its
// type category. A constructor that lets the two drift apart (e.g. a
// copy-pasted handler that forgets to update one half of a New* call) is a
// programmer error this catches at the call site rather than in a query
// filter months later.
func (e Enrichment) HasValidSubtype() bool {
	allowed, ok := subtypesByType[e.typ]
	if !ok {
		return false
	}
	return allowed[e.subtype]
}

// RequiresLanguage reports whether this enrichment's subtype is expected to
// carry a Language value. Only API docs enrichments require one; snippet and
// chunk enrichments may carry one without requiring it.
func (e Enrichment) RequiresLanguage() bool {
	return e.subtype == SubtypeAPIDocs
}

// WithID returns a copy of the enrichment with the specified ID.
func (e Enrichment) WithID(id int64) Enrichment {
	e.id = id
	return e
}

// WithContent returns a copy of the enrichment with updated content.
func (e Enrichment) WithContent(content string) Enrichment {
	e.content = content
	e.updatedAt = time.Now()
	return e
}
