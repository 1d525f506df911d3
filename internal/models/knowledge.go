package models

// KnowledgeArticle is an entry of the built-in knowledge base
type KnowledgeArticle struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Summary  string   `json:"summary"`
	Content  string   `json:"content"` // plain text, paragraphs separated by blank lines
	Tags     []string `json:"tags"`
}
