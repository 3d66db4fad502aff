package domain

import "fmt"

// ModelSpec describes a provider model a caller may report usage for.
type ModelSpec struct {
	ModelID   string    `json:"model_id"`
	TokenType TokenType `json:"token_type"`
}

var modelCatalog = map[string]ModelSpec{
	"default_chat":    {ModelID: "gpt-4o", TokenType: TokenTypeChat},
	"vision_chat":     {ModelID: "gpt-4o-mini", TokenType: TokenTypeChat},
	"text_embedding":  {ModelID: "text-embedding-3-large", TokenType: TokenTypeEmbedding},
	"table_embedding": {ModelID: "text-embedding-3-large", TokenType: TokenTypeEmbedding},
	"image_embedding": {ModelID: "text-embedding-3-large", TokenType: TokenTypeEmbedding},
}

// ResolveModel maps a model key to its spec.
func ResolveModel(key string) (ModelSpec, error) {
	spec, ok := modelCatalog[key]
	if !ok {
		return ModelSpec{}, fmt.Errorf("unknown model %q", key)
	}
	return spec, nil
}
